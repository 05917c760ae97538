// Package documents is the upload log for crew members: append-only document
// records over a byte store, plus the profile completion evaluator.
package documents

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"crewport/internal/catalog"
	"crewport/internal/storage"
	"crewport/internal/store"
	"crewport/pkg/types"

	"github.com/sirupsen/logrus"
)

const storagePrefix = "crew_documents"

// Upload is one file received at the web boundary.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

func (u Upload) empty() bool {
	return u.Filename == "" || len(u.Data) == 0
}

type Service struct {
	logger *logrus.Logger
	files  storage.FileStore
	docs   store.DocumentStore
}

func NewService(logger *logrus.Logger, files storage.FileStore, docs store.DocumentStore) *Service {
	return &Service{
		logger: logger,
		files:  files,
		docs:   docs,
	}
}

// Add stores one upload for a crew member. Bytes are written first; the
// metadata row is committed only after the byte write succeeds, so a storage
// failure never leaves an orphan row. Records are pure inserts: uploading
// the same type again appends, it never replaces.
func (s *Service) Add(ctx context.Context, crewID int64, docType types.DocumentType, up Upload) (*types.CrewDocument, error) {
	if up.empty() {
		return nil, &ValidationError{Field: string(docType), Reason: "file is missing or empty"}
	}

	category, ok := catalog.CategoryOf(docType)
	if !ok {
		return nil, &ValidationError{Field: string(docType), Reason: "unknown document type"}
	}

	contentType := up.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key, err := s.files.Put(ctx, storagePrefix+"/"+up.Filename, contentType, bytes.NewReader(up.Data))
	if err != nil {
		return nil, &StorageError{Filename: up.Filename, Err: err}
	}

	doc := &types.CrewDocument{
		CrewID:           crewID,
		DocumentType:     docType,
		DocumentCategory: category,
		Filename:         key,
		OriginalFilename: up.Filename,
		FileSizeBytes:    int64(len(up.Data)),
		MimeType:         contentType,
		UploadedAt:       time.Now().UTC(),
	}

	if err := s.docs.CreateDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to record document %s: %w", key, err)
	}

	s.logger.WithFields(logrus.Fields{
		"crew_id":       crewID,
		"document_type": docType,
		"stored_key":    key,
		"size_bytes":    doc.FileSizeBytes,
	}).Info("document stored")

	return doc, nil
}

// AddBatch applies Add per file. Empty files are skipped without failing the
// batch; storage failures are collected into the returned error while the
// remaining files continue. The returned slice holds successes only.
func (s *Service) AddBatch(ctx context.Context, crewID int64, docType types.DocumentType, uploads []Upload) ([]*types.CrewDocument, error) {
	saved := make([]*types.CrewDocument, 0, len(uploads))

	var failures []error
	for _, up := range uploads {
		if up.empty() {
			continue
		}

		doc, err := s.Add(ctx, crewID, docType, up)
		if err != nil {
			var validation *ValidationError
			if errors.As(err, &validation) {
				continue
			}

			s.logger.WithError(err).WithFields(logrus.Fields{
				"crew_id":       crewID,
				"document_type": docType,
				"filename":      up.Filename,
			}).Error("failed to store document in batch")
			failures = append(failures, err)
			continue
		}

		saved = append(saved, doc)
	}

	return saved, errors.Join(failures...)
}

func (s *Service) ByCrew(ctx context.Context, crewID int64) ([]*types.CrewDocument, error) {
	return s.docs.DocumentsByCrew(ctx, crewID)
}

func (s *Service) ByCrewAndType(ctx context.Context, crewID int64, docType types.DocumentType) ([]*types.CrewDocument, error) {
	return s.docs.DocumentsByCrewAndType(ctx, crewID, docType)
}

func (s *Service) ByCrewAndCategory(ctx context.Context, crewID int64, category types.DocumentCategory) ([]*types.CrewDocument, error) {
	return s.docs.DocumentsByCrewAndCategory(ctx, crewID, category)
}

// Open streams a stored document's bytes for download.
func (s *Service) Open(ctx context.Context, doc *types.CrewDocument) (*storage.Object, error) {
	return s.files.Get(ctx, doc.Filename)
}

// ByID fetches one document record.
func (s *Service) ByID(ctx context.Context, id int64) (*types.CrewDocument, error) {
	return s.docs.DocumentByID(ctx, id)
}
