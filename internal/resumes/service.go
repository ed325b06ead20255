package resumes

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"ai-resume-saas/internal/extract"
	"ai-resume-saas/internal/shared/storage/object"
	"ai-resume-saas/internal/shared/telemetry"
	"ai-resume-saas/internal/shared/util"
)

// MaxUploadSize caps uploaded files.
const MaxUploadSize = 10 << 20 // 10MB

var allowedTypes = map[string]bool{
	extract.MimePDF:   true,
	extract.MimeDOCX:  true,
	extract.MimePlain: true,
}

// Service contains business logic for resume records.
type Service struct {
	Store    object.ObjectStore
	Repo     Repo
	validate *validator.Validate
	now      func() time.Time
}

// NewService constructs a Service.
func NewService(store object.ObjectStore, repo Repo) *Service {
	return &Service{Store: store, Repo: repo, validate: validator.New(), now: time.Now}
}

// Upload stores the file, extracts its text and records it for owner.
func (s *Service) Upload(ctx context.Context, owner, fileName, declaredType string, data []byte) (Record, error) {
	if owner == "" || strings.TrimSpace(fileName) == "" {
		return Record{}, ErrInvalidInput
	}
	if len(data) == 0 {
		return Record{}, ErrEmptyFile
	}
	if len(data) > MaxUploadSize {
		return Record{}, fmt.Errorf("%w: file exceeds 10MB", ErrInvalidInput)
	}

	fileType := extract.NormalizeMimeType(declaredType, fileName, data)
	if !allowedTypes[fileType] {
		return Record{}, ErrUnsupportedType
	}

	now := s.now().UTC()
	obj, err := s.Store.Put(ctx, util.UploadFolder(owner), util.StoredFileName(fileName, now), fileType, bytes.NewReader(data))
	if err != nil {
		return Record{}, fmt.Errorf("store upload: %w", err)
	}

	text, err := extract.Text(ctx, data, fileType, fileName)
	if err != nil {
		telemetry.Warn("resume.extract_failed", map[string]any{
			"identity":  owner,
			"file_type": fileType,
			"err":       err,
		})
		text = ""
	}

	rec := Record{
		UserID:        owner,
		URL:           obj.URL,
		PublicID:      obj.Key,
		OriginalName:  fileName,
		FileType:      fileType,
		Size:          int64(len(data)),
		ExtractedText: text,
		CreatedAt:     now,
	}
	if err := s.validate.Struct(rec); err != nil {
		s.discard(ctx, obj.Key, owner, err)
		return Record{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	created, err := s.Repo.Create(ctx, rec)
	if err != nil {
		s.discard(ctx, obj.Key, owner, err)
		return Record{}, err
	}
	return created, nil
}

// discard removes an object whose record was never persisted.
func (s *Service) discard(ctx context.Context, key, owner string, cause error) {
	fields := map[string]any{
		"key":      key,
		"identity": owner,
		"err":      cause,
	}
	if err := s.Store.Delete(context.WithoutCancel(ctx), key); err != nil {
		fields["delete_err"] = err
	}
	telemetry.Warn("resume.upload_orphan", fields)
}

// List returns owner's records, newest first.
func (s *Service) List(ctx context.Context, owner string) ([]Record, error) {
	if owner == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListByOwner(ctx, owner)
}

// Get returns a single owned record.
func (s *Service) Get(ctx context.Context, id, owner string) (Record, error) {
	if owner == "" || strings.TrimSpace(id) == "" {
		return Record{}, ErrNotFound
	}
	return s.Repo.FindOne(ctx, id, owner)
}

// Open returns the stored file of an owned record.
func (s *Service) Open(ctx context.Context, id, owner string) (Record, io.ReadCloser, error) {
	rec, err := s.Get(ctx, id, owner)
	if err != nil {
		return Record{}, nil, err
	}
	rc, err := s.Store.Open(ctx, rec.PublicID)
	if err != nil {
		return Record{}, nil, fmt.Errorf("open stored file: %w", err)
	}
	return rec, rc, nil
}
