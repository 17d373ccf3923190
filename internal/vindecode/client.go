// Package vindecode looks VINs up against the public NHTSA vPIC service and
// maps the answer onto vehicle draft fields. Results are advisory; the wizard
// applies them as a prefill the user can overwrite.
package vindecode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/dealerhubhq/dealerhub-backend/internal/wizard"
	"github.com/dealerhubhq/dealerhub-backend/pkg/config"
	pkgerrors "github.com/dealerhubhq/dealerhub-backend/pkg/errors"
)

// Decoded is the subset of vPIC output the vehicle wizard can prefill.
type Decoded struct {
	VIN      string `json:"vin"`
	Year     *int   `json:"year,omitempty"`
	Make     string `json:"make,omitempty"`
	Model    string `json:"model,omitempty"`
	BodyType string `json:"body_type,omitempty"`
	Engine   string `json:"engine,omitempty"`
	Fuel     string `json:"fuel,omitempty"`
}

type Client struct {
	httpClient *http.Client
	baseURL    string
}

func NewClient(cfg config.VINDecodeConfig) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
	}
}

// vPIC DecodeVinValues returns a single flattened result row.
type decodeResponse struct {
	Results []struct {
		ModelYear    string `json:"ModelYear"`
		Make         string `json:"Make"`
		Model        string `json:"Model"`
		BodyClass    string `json:"BodyClass"`
		EngineModel  string `json:"EngineModel"`
		FuelTypePrim string `json:"FuelTypePrimary"`
		ErrorCode    string `json:"ErrorCode"`
		ErrorText    string `json:"ErrorText"`
	} `json:"Results"`
}

// Decode resolves a VIN. A VIN failing the checksum-free format rules is a
// validation error before any network call.
func (c *Client) Decode(ctx context.Context, vin string) (*Decoded, error) {
	vin = strings.ToUpper(strings.TrimSpace(vin))
	if !wizard.ValidVIN(vin) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "VIN must be 17 characters (letters and digits, no I, O or Q)")
	}

	url := fmt.Sprintf("%s/vehicles/DecodeVinValues/%s?format=json", c.baseURL, vin)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build vin decode request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "vin decode service unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, pkgerrors.New(pkgerrors.CodeDependency,
			fmt.Sprintf("vin decode service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	var payload decodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode vin response")
	}
	if len(payload.Results) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no decode result for this VIN")
	}

	row := payload.Results[0]
	out := &Decoded{
		VIN:      vin,
		Make:     titleCase(row.Make),
		Model:    row.Model,
		BodyType: row.BodyClass,
		Engine:   row.EngineModel,
		Fuel:     strings.ToLower(row.FuelTypePrim),
	}
	if year, err := strconv.Atoi(row.ModelYear); err == nil && year > 0 {
		out.Year = &year
	}
	return out, nil
}

// Patch converts a decode result into the field patch the wizard batch
// endpoint accepts, skipping anything vPIC left blank.
func (d *Decoded) Patch() map[string]any {
	patch := map[string]any{"vin": d.VIN}
	if d.Year != nil {
		patch["year"] = *d.Year
	}
	if d.Make != "" {
		patch["make"] = d.Make
	}
	if d.Model != "" {
		patch["model"] = d.Model
	}
	if d.BodyType != "" {
		patch["body_type"] = d.BodyType
	}
	if d.Engine != "" {
		patch["engine"] = d.Engine
	}
	if d.Fuel != "" {
		patch["fuel"] = d.Fuel
	}
	return patch
}

// vPIC shouts makes in upper case; listings want "Ford", not "FORD".
func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
