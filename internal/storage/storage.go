// Package storage persists raw uploaded bytes. Every Put returns a distinct
// stored key, even for identical suggested names, so document writes are
// always pure inserts.
package storage

import (
	"context"
	"io"
	"path"
	"regexp"
	"strings"

	"crewport/internal/utils"
)

// Object is a readable stored file plus the metadata a download response
// needs.
type Object struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
}

type FileStore interface {
	// Put writes body under a collision-free key derived from suggestedName
	// and returns that key.
	Put(ctx context.Context, suggestedName, contentType string, body io.Reader) (string, error)

	// Get retrieves a previously stored object by key.
	Get(ctx context.Context, key string) (*Object, error)
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// uniqueKey builds a stored key from a suggested name: the directory part is
// kept, the file name is sanitized, and a random suffix guarantees
// distinctness across calls.
func uniqueKey(suggestedName string) string {
	dir, file := path.Split(path.Clean(suggestedName))

	file = unsafeChars.ReplaceAllString(file, "_")
	ext := path.Ext(file)
	stem := strings.TrimSuffix(file, ext)
	if stem == "" {
		stem = "file"
	}

	return dir + stem + "_" + utils.NanoIDSize(8) + ext
}
