package media

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealerhubhq/dealerhub-backend/pkg/config"
	pkgerrors "github.com/dealerhubhq/dealerhub-backend/pkg/errors"
)

type fakeSigner struct {
	canSign bool
	signErr error
	signed  []string
}

func (f *fakeSigner) CanSign() bool { return f.canSign }

func (f *fakeSigner) SignedUploadURL(object, contentType string, _ time.Duration) (string, error) {
	if f.signErr != nil {
		return "", f.signErr
	}
	f.signed = append(f.signed, object)
	return fmt.Sprintf("https://storage.googleapis.com/dealer-media/%s?sig=abc&ct=%s", object, contentType), nil
}

func (f *fakeSigner) ObjectURL(object string) string {
	return "https://storage.googleapis.com/dealer-media/" + object
}

func mediaConfig() config.MediaConfig {
	return config.MediaConfig{
		MaxImageMB:        10,
		MaxImagesPerDraft: 20,
		UploadURLExpiry:   15 * time.Minute,
	}
}

func fixture(t *testing.T, signer *fakeSigner) *Service {
	t.Helper()
	svc, err := NewService(signer, mediaConfig())
	require.NoError(t, err)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	counter := 0
	svc.newID = func() uuid.UUID {
		counter++
		return uuid.MustParse(fmt.Sprintf("00000000-0000-0000-0000-%012d", counter))
	}
	return svc
}

func TestPresignGrantsURLs(t *testing.T) {
	signer := &fakeSigner{canSign: true}
	svc := fixture(t, signer)

	results, err := svc.Presign("user-1", 0, []FileSpec{
		{Name: "front.jpg", ContentType: "image/jpeg", SizeBytes: 1024},
		{Name: "interior.png", ContentType: "image/png", SizeBytes: 2048},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	first := results[0]
	assert.Empty(t, first.Rejected)
	assert.Equal(t, "uploads/user-1/00000000-0000-0000-0000-000000000001.jpg", first.Object)
	assert.Contains(t, first.UploadURL, first.Object)
	assert.Equal(t, "https://storage.googleapis.com/dealer-media/"+first.Object, first.PublicURL)
	assert.Equal(t, "2026-03-01T12:15:00Z", first.ExpiresAt)

	assert.Equal(t, ".png", results[1].Object[len(results[1].Object)-4:])
}

func TestPresignRejectsPerFile(t *testing.T) {
	signer := &fakeSigner{canSign: true}
	svc := fixture(t, signer)

	results, err := svc.Presign("user-1", 0, []FileSpec{
		{Name: "movie.mp4", ContentType: "video/mp4", SizeBytes: 1024},
		{Name: "huge.jpg", ContentType: "image/jpeg", SizeBytes: 11 * 1024 * 1024},
		{Name: "ok.webp", ContentType: "image/webp", SizeBytes: 500},
	})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Contains(t, results[0].Rejected, "not allowed")
	assert.Empty(t, results[0].UploadURL)
	assert.Contains(t, results[1].Rejected, "10 MB limit")
	assert.Empty(t, results[2].Rejected)
	assert.NotEmpty(t, results[2].UploadURL)

	// only the acceptable file reached the signer
	assert.Len(t, signer.signed, 1)
}

func TestPresignRejectsEmptyBatch(t *testing.T) {
	svc := fixture(t, &fakeSigner{canSign: true})

	_, err := svc.Presign("user-1", 0, nil)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
}

func TestPresignRefusesFullDraft(t *testing.T) {
	signer := &fakeSigner{canSign: true}
	svc := fixture(t, signer)

	_, err := svc.Presign("user-1", 20, []FileSpec{{Name: "a.jpg", ContentType: "image/jpeg", SizeBytes: 100}})
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
	assert.Empty(t, signer.signed)
}

func TestPresignStopsGrantingAtDraftCap(t *testing.T) {
	signer := &fakeSigner{canSign: true}
	svc := fixture(t, signer)

	// 18 existing images leave room for two grants
	files := make([]FileSpec, 3)
	for i := range files {
		files[i] = FileSpec{Name: fmt.Sprintf("f%d.jpg", i), ContentType: "image/jpeg", SizeBytes: 100}
	}
	results, err := svc.Presign("user-1", 18, files)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.NotEmpty(t, results[0].UploadURL)
	assert.NotEmpty(t, results[1].UploadURL)
	assert.Empty(t, results[2].UploadURL)
	assert.Contains(t, results[2].Rejected, "limited to 20 images")
	assert.Len(t, signer.signed, 2)
}

func TestPresignCapOnlyCountsGrantedFiles(t *testing.T) {
	signer := &fakeSigner{canSign: true}
	svc := fixture(t, signer)

	// the disallowed file does not consume the last remaining slot
	results, err := svc.Presign("user-1", 19, []FileSpec{
		{Name: "movie.mp4", ContentType: "video/mp4", SizeBytes: 100},
		{Name: "ok.jpg", ContentType: "image/jpeg", SizeBytes: 100},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Contains(t, results[0].Rejected, "not allowed")
	assert.NotEmpty(t, results[1].UploadURL)
}

func TestNewServiceClampsConfiguredCap(t *testing.T) {
	cfg := mediaConfig()
	cfg.MaxImagesPerDraft = 100
	svc, err := NewService(&fakeSigner{canSign: true}, cfg)
	require.NoError(t, err)
	assert.Equal(t, 20, svc.cfg.MaxImagesPerDraft, "env knob cannot exceed the draft validator ceiling")

	cfg.MaxImagesPerDraft = 5
	svc, err = NewService(&fakeSigner{canSign: true}, cfg)
	require.NoError(t, err)
	assert.Equal(t, 5, svc.cfg.MaxImagesPerDraft, "tightening below the ceiling is allowed")
}

func TestPresignRequiresSigner(t *testing.T) {
	svc := fixture(t, &fakeSigner{canSign: false})

	_, err := svc.Presign("user-1", 0, []FileSpec{{Name: "a.jpg", ContentType: "image/jpeg", SizeBytes: 100}})
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeDependency, appErr.Code())
}

func TestPresignSignFailureFailsBatch(t *testing.T) {
	svc := fixture(t, &fakeSigner{canSign: true, signErr: errors.New("key rejected")})

	_, err := svc.Presign("user-1", 0, []FileSpec{{Name: "a.jpg", ContentType: "image/jpeg", SizeBytes: 100}})
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeDependency, appErr.Code())
}
