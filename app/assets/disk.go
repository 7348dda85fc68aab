package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// DiskStore keeps assets as files in a single directory served under URLPrefix.
// The directory is provisioned at startup.
type DiskStore struct {
	dir       string
	urlPrefix string
	logger    *log.Logger
}

const DefaultURLPrefix = "/uploads"

func NewDiskStore(dir string, logger *log.Logger) *DiskStore {
	if logger == nil {
		logger = log.Default()
	}
	return &DiskStore{
		dir:       dir,
		urlPrefix: DefaultURLPrefix,
		logger:    logger,
	}
}

// Dir is the directory the store writes to.
func (s *DiskStore) Dir() string {
	return s.dir
}

func (s *DiskStore) Store(ctx context.Context, field string, r io.Reader, originalName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrAssetWrite, err)
	}

	name := NewAssetName(field, originalName)
	target := filepath.Join(s.dir, name)

	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrAssetWrite, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(target)
		return "", fmt.Errorf("%w: %w", ErrAssetWrite, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(target)
		return "", fmt.Errorf("%w: %w", ErrAssetWrite, err)
	}

	return path.Join(s.urlPrefix, name), nil
}

func (s *DiskStore) Delete(_ context.Context, ref string) error {
	target, err := s.resolve(ref)
	if err != nil {
		return err
	}

	if err := os.Remove(target); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Printf("asset %s already gone", ref)
			return nil
		}
		return fmt.Errorf("delete asset %s: %w", ref, err)
	}
	s.logger.Printf("deleted asset %s", ref)
	return nil
}

// Exists reports whether the file behind ref is present.
func (s *DiskStore) Exists(_ context.Context, ref string) (bool, error) {
	target, err := s.resolve(ref)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(target); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *DiskStore) resolve(ref string) (string, error) {
	name, ok := strings.CutPrefix(ref, s.urlPrefix+"/")
	if !ok || name == "" || name != filepath.Base(name) {
		return "", fmt.Errorf("asset reference %q is not under %s", ref, s.urlPrefix)
	}
	return filepath.Join(s.dir, name), nil
}
