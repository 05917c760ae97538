package documents

import (
	"context"
	"errors"
	"io"
	"testing"

	"crewport/internal/storage"
	"crewport/internal/store"
	"crewport/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() (*Service, *storage.MemoryStore, *store.MemoryDocumentStore) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	files := storage.NewMemoryStore()
	docs := store.NewMemoryDocumentStore()
	return NewService(logger, files, docs), files, docs
}

func upload(name, content string) Upload {
	return Upload{Filename: name, ContentType: "application/pdf", Data: []byte(content)}
}

func TestAddStoresBytesAndRecord(t *testing.T) {
	ctx := context.Background()
	svc, files, _ := newTestService()

	doc, err := svc.Add(ctx, 1, types.DocTypePassport, upload("passport.pdf", "scan"))
	require.NoError(t, err)

	assert.EqualValues(t, 1, doc.CrewID)
	assert.Equal(t, types.DocTypePassport, doc.DocumentType)
	assert.Equal(t, types.CategoryIdentity, doc.DocumentCategory)
	assert.Equal(t, "passport.pdf", doc.OriginalFilename)
	assert.EqualValues(t, 4, doc.FileSizeBytes)
	assert.NotEmpty(t, doc.Filename)
	assert.Equal(t, 1, files.Len())

	obj, err := svc.Open(ctx, doc)
	require.NoError(t, err)
	defer obj.Body.Close()

	data, err := io.ReadAll(obj.Body)
	require.NoError(t, err)
	assert.Equal(t, "scan", string(data))
}

func TestAddRejectsEmptyFile(t *testing.T) {
	ctx := context.Background()
	svc, files, docs := newTestService()

	_, err := svc.Add(ctx, 1, types.DocTypePassport, Upload{Filename: "passport.pdf"})

	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, 0, files.Len())

	stored, err := docs.DocumentsByCrew(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestAddRejectsUnknownType(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()

	_, err := svc.Add(ctx, 1, types.DocumentType("bogus"), upload("x.pdf", "x"))

	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestAddWritesNoRecordWhenByteWriteFails(t *testing.T) {
	ctx := context.Background()
	svc, files, docs := newTestService()
	files.PutErr = errors.New("bucket unavailable")

	_, err := svc.Add(ctx, 1, types.DocTypePassport, upload("passport.pdf", "scan"))

	var storageErr *StorageError
	require.ErrorAs(t, err, &storageErr)

	stored, err := docs.DocumentsByCrew(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, stored, "metadata row must not exist after a byte-write failure")
}

func TestAddBatchSkipsEmptyFiles(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()

	saved, err := svc.AddBatch(ctx, 1, types.DocTypeSTCW, []Upload{
		upload("stcw.pdf", "cert"),
		{Filename: "empty.pdf"},
	})

	require.NoError(t, err, "an empty file must not fail the batch")
	require.Len(t, saved, 1)
	assert.Equal(t, "stcw.pdf", saved[0].OriginalFilename)
}

func TestAddBatchContinuesPastStorageFailures(t *testing.T) {
	ctx := context.Background()
	svc, files, docs := newTestService()

	// First file fails at the byte store, second succeeds.
	files.PutErr = errors.New("bucket unavailable")
	saved, err := svc.AddBatch(ctx, 1, types.DocTypeCDC, []Upload{upload("cdc-1.pdf", "a")})
	require.Error(t, err)
	assert.Empty(t, saved)

	files.PutErr = nil
	saved, err = svc.AddBatch(ctx, 1, types.DocTypeCDC, []Upload{upload("cdc-2.pdf", "b")})
	require.NoError(t, err)
	require.Len(t, saved, 1)

	stored, err := docs.DocumentsByCrewAndType(ctx, 1, types.DocTypeCDC)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestDuplicateTypeAppendsNewestFirst(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()

	first, err := svc.Add(ctx, 1, types.DocTypePassport, upload("passport-old.pdf", "v1"))
	require.NoError(t, err)

	second, err := svc.Add(ctx, 1, types.DocTypePassport, upload("passport-new.pdf", "v2"))
	require.NoError(t, err)

	listed, err := svc.ByCrewAndType(ctx, 1, types.DocTypePassport)
	require.NoError(t, err)
	require.Len(t, listed, 2)

	assert.Equal(t, second.ID, listed[0].ID, "most recent upload first")
	assert.Equal(t, first.ID, listed[1].ID)
}
