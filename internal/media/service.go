// Package media issues signed upload URLs for draft images. Files never pass
// through the API process; clients PUT directly to the bucket.
package media

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dealerhubhq/dealerhub-backend/internal/wizard"
	"github.com/dealerhubhq/dealerhub-backend/pkg/config"
	pkgerrors "github.com/dealerhubhq/dealerhub-backend/pkg/errors"
)

// extensionByContentType doubles as the upload allow-list.
var extensionByContentType = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// Signer is the slice of the storage client presigning needs.
type Signer interface {
	CanSign() bool
	SignedUploadURL(object string, contentType string, expiry time.Duration) (string, error)
	ObjectURL(object string) string
}

// FileSpec describes one file the client wants to upload.
type FileSpec struct {
	Name        string `json:"name" validate:"required"`
	ContentType string `json:"content_type" validate:"required"`
	SizeBytes   int64  `json:"size_bytes" validate:"required,gt=0"`
}

// PresignResult carries either an upload grant or the per-file rejection
// reason. A rejected file never fails the batch.
type PresignResult struct {
	Name      string `json:"name"`
	Object    string `json:"object,omitempty"`
	UploadURL string `json:"upload_url,omitempty"`
	PublicURL string `json:"public_url,omitempty"`
	ExpiresAt string `json:"expires_at,omitempty"`
	Rejected  string `json:"rejected,omitempty"`
}

type Service struct {
	signer Signer
	cfg    config.MediaConfig
	now    func() time.Time
	newID  func() uuid.UUID
}

func NewService(signer Signer, cfg config.MediaConfig) (*Service, error) {
	if signer == nil {
		return nil, fmt.Errorf("storage signer required")
	}
	// The draft validator enforces wizard.MaxImagesPerDraft as the hard
	// ceiling; the env knob may only tighten the gate below it.
	if cfg.MaxImagesPerDraft <= 0 || cfg.MaxImagesPerDraft > wizard.MaxImagesPerDraft {
		cfg.MaxImagesPerDraft = wizard.MaxImagesPerDraft
	}
	return &Service{
		signer: signer,
		cfg:    cfg,
		now:    time.Now,
		newID:  uuid.New,
	}, nil
}

// Presign grants one signed PUT URL per acceptable file. draftImages is how
// many images the owner's draft already holds; grants stop once the draft
// limit is reached. The whole batch is refused only when the draft is already
// full or signing is unavailable; individual files failing the allow-list,
// the size ceiling or the remaining draft capacity come back rejected while
// the rest proceed.
func (s *Service) Presign(userID string, draftImages int, files []FileSpec) ([]PresignResult, error) {
	if len(files) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one file is required")
	}
	if draftImages >= s.cfg.MaxImagesPerDraft {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("the draft already holds the maximum of %d images", s.cfg.MaxImagesPerDraft))
	}
	if !s.signer.CanSign() {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "upload signing is not configured")
	}

	maxBytes := s.cfg.MaxImageBytes()
	expiresAt := s.now().Add(s.cfg.UploadURLExpiry).UTC().Format(time.RFC3339)
	remaining := s.cfg.MaxImagesPerDraft - draftImages

	out := make([]PresignResult, 0, len(files))
	for _, file := range files {
		result := PresignResult{Name: file.Name}

		contentType := strings.ToLower(strings.TrimSpace(file.ContentType))
		ext, allowed := extensionByContentType[contentType]
		switch {
		case !allowed:
			result.Rejected = fmt.Sprintf("content type %q is not allowed (jpeg, png or webp)", file.ContentType)
		case file.SizeBytes <= 0:
			result.Rejected = "file size must be greater than zero"
		case file.SizeBytes > maxBytes:
			result.Rejected = fmt.Sprintf("file exceeds the %d MB limit", s.cfg.MaxImageMB)
		case remaining <= 0:
			result.Rejected = fmt.Sprintf("the draft is limited to %d images", s.cfg.MaxImagesPerDraft)
		default:
			remaining--
			object := s.objectName(userID, ext)
			url, err := s.signer.SignedUploadURL(object, contentType, s.cfg.UploadURLExpiry)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sign upload url")
			}
			result.Object = object
			result.UploadURL = url
			result.PublicURL = s.signer.ObjectURL(object)
			result.ExpiresAt = expiresAt
		}

		out = append(out, result)
	}
	return out, nil
}

// objectName scopes uploads per user so listings cannot collide or be
// guessed from another account's names.
func (s *Service) objectName(userID, ext string) string {
	return fmt.Sprintf("uploads/%s/%s%s", userID, s.newID(), ext)
}
