// Package assets stores the images owned by catalog records.
//
// Assets are addressed by an opaque reference string. A reference is handed
// to clients as-is (a path under /uploads for the disk store, a URL for the
// object store) and is the only thing a record keeps.
package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// ErrAssetWrite is returned when an asset could not be persisted.
var ErrAssetWrite = errors.New("asset write failed")

// Store persists and removes assets.
//
// Delete must treat a missing asset as already deleted and return nil.
type Store interface {
	Store(ctx context.Context, field string, r io.Reader, originalName string) (string, error)
	Delete(ctx context.Context, ref string) error
}

// Upload is a file received from a client, not yet persisted.
type Upload struct {
	Field    string
	Filename string
	Body     io.Reader
}

// GenerateAssetName builds a stored file name from the form field, a
// timestamp and a random component, keeping the original extension.
func GenerateAssetName(field, ext string, now time.Time, random uint32) string {
	return fmt.Sprintf("%s-%d-%d%s", field, now.UnixMilli(), random%1_000_000_000, ext)
}

// NewAssetName returns a fresh name for an upload of originalName.
func NewAssetName(field, originalName string) string {
	return GenerateAssetName(field, filepath.Ext(originalName), time.Now(), uuid.New().ID())
}
