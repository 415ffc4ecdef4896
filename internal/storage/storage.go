// Package storage abstracts the external media host. The server only ever
// needs two verbs: put an object and get back a public URL, and delete an
// object by the key that put returned.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrUploadFailed wraps any storage-backend failure surfaced to a caller.
var ErrUploadFailed = errors.New("storage upload failed")

// ObjectStore stores guest media with an external host.
//
// Put streams body under key and returns the public URL of the stored
// object. The body must be seekable so transient failures can be retried
// from the start. Delete removes the object; it is used best-effort during
// project deletion.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body io.ReadSeeker, size int64) (string, error)
	Delete(ctx context.Context, key string) error
}

// NewObjectKey builds a unique storage key for one uploaded file, scoped
// under its project and keeping the original extension so the host serves
// a sensible content type.
func NewObjectKey(projectID, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return fmt.Sprintf("projects/%s/%s%s", projectID, uuid.New(), ext)
}
