package documents

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"jobportal-backend/internal/access"
	"jobportal-backend/internal/extract"
	"jobportal-backend/internal/shared/apperr"
	"jobportal-backend/internal/shared/storage/object"
	"jobportal-backend/internal/shared/telemetry"
	"jobportal-backend/internal/shared/validate"
)

const maxTextBytes = 1 << 20

var (
	ErrFileType = apperr.Validation("Only PDF, DOC and DOCX files are allowed")
	ErrNoText   = apperr.NotFound("No extracted text for this document")
)

var allowedExtensions = map[string]struct{}{
	".pdf":  {},
	".doc":  {},
	".docx": {},
}

// Service stores CV uploads and extracts their text.
type Service struct {
	Store    object.ObjectStore
	Repo     Repo
	Provider string
	Now      func() time.Time
}

func NewService(store object.ObjectStore, repo Repo, provider string) *Service {
	return &Service{Store: store, Repo: repo, Provider: provider, Now: time.Now}
}

// RegisterInput describes a file uploaded directly to the bucket through a
// presigned URL.
type RegisterInput struct {
	S3Key       string `json:"s3Key" validate:"required,max=1024"`
	FileName    string `json:"fileName" validate:"required,max=255"`
	ContentType string `json:"contentType" validate:"required,max=255"`
	SizeBytes   int64  `json:"sizeBytes" validate:"required,min=1"`
}

func checkFileName(name string) error {
	if _, ok := allowedExtensions[strings.ToLower(filepath.Ext(name))]; !ok {
		return ErrFileType
	}
	return nil
}

func requireActor(actor *access.Actor) error {
	if actor == nil || actor.ID == "" {
		return apperr.Unauthenticated("Authentication required")
	}
	return nil
}

// Upload saves the file, records it and extracts its text. Extraction
// failures leave the document without text.
func (s *Service) Upload(ctx context.Context, actor *access.Actor, fileName string, r io.Reader) (Document, error) {
	if err := requireActor(actor); err != nil {
		return Document{}, err
	}
	if err := checkFileName(fileName); err != nil {
		return Document{}, err
	}

	key, size, mimeType, err := s.Store.Save(ctx, actor.ID, fileName, r)
	if err != nil {
		if errors.Is(err, object.ErrInvalidFileName) {
			return Document{}, apperr.Validation("Invalid file name")
		}
		return Document{}, apperr.Unavailable("failed to store file", err)
	}

	doc := Document{
		ID:              uuid.NewString(),
		UserID:          actor.ID,
		FileName:        fileName,
		MimeType:        extract.NormalizeMimeType(mimeType, fileName, nil),
		SizeBytes:       size,
		StorageProvider: s.Provider,
		StorageKey:      key,
		CreatedAt:       s.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, doc); err != nil {
		return Document{}, err
	}
	return s.extract(ctx, doc), nil
}

// Register records a presigned upload. The key must lie in the actor's namespace.
func (s *Service) Register(ctx context.Context, actor *access.Actor, in RegisterInput) (Document, error) {
	if err := requireActor(actor); err != nil {
		return Document{}, err
	}
	in.S3Key = strings.TrimSpace(in.S3Key)
	in.FileName = strings.TrimSpace(in.FileName)
	if err := validate.Struct(in); err != nil {
		return Document{}, err
	}
	if err := checkFileName(in.FileName); err != nil {
		return Document{}, err
	}
	if strings.Contains(in.S3Key, "..") || !strings.Contains(in.S3Key, object.OwnerKey(actor.ID)+"/") {
		return Document{}, apperr.Forbidden("Upload key does not belong to this account")
	}

	doc := Document{
		ID:              uuid.NewString(),
		UserID:          actor.ID,
		FileName:        in.FileName,
		MimeType:        extract.NormalizeMimeType(in.ContentType, in.FileName, nil),
		SizeBytes:       in.SizeBytes,
		StorageProvider: "s3",
		StorageKey:      in.S3Key,
		CreatedAt:       s.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, doc); err != nil {
		return Document{}, err
	}
	return s.extract(ctx, doc), nil
}

func (s *Service) extract(ctx context.Context, doc Document) Document {
	if _, err := extract.ExtractText(ctx, s.Store, doc.StorageKey, doc.MimeType, doc.FileName); err != nil {
		if !errors.Is(err, extract.ErrUnsupported) {
			telemetry.Warn("documents.extract_failed", map[string]any{
				"document_id": doc.ID,
				"mime_type":   doc.MimeType,
				"error":       err,
			})
		}
		return doc
	}
	at := s.Now().UTC()
	textKey := extract.TextKey(doc.StorageKey)
	if err := s.Repo.MarkExtracted(ctx, doc.ID, textKey, at); err != nil {
		telemetry.Warn("documents.mark_extracted_failed", map[string]any{
			"document_id": doc.ID,
			"error":       err,
		})
		return doc
	}
	doc.ExtractedTextKey = textKey
	doc.ExtractedAt = &at
	return doc
}

func (s *Service) List(ctx context.Context, actor *access.Actor, limit, offset int) ([]Document, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	return s.Repo.ListByUser(ctx, actor.ID, limit, offset)
}

// Text returns a document's extracted text to its owner, companies and admins.
func (s *Service) Text(ctx context.Context, actor *access.Actor, id string) (string, error) {
	if err := requireActor(actor); err != nil {
		return "", err
	}
	doc, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if actor.ID != doc.UserID && actor.Role != access.RoleCompany && !actor.IsAdmin() {
		return "", apperr.Forbidden("You do not have access to this document")
	}
	if !doc.HasText() {
		return "", ErrNoText
	}

	body, err := s.Store.Open(ctx, doc.ExtractedTextKey)
	if errors.Is(err, object.ErrNotFound) {
		return "", ErrNoText
	}
	if err != nil {
		return "", apperr.Unavailable("failed to read extracted text", err)
	}
	defer body.Close()
	raw, err := io.ReadAll(io.LimitReader(body, maxTextBytes))
	if err != nil {
		return "", apperr.Unavailable("failed to read extracted text", err)
	}
	return string(raw), nil
}
