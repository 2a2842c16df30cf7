package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
)

const (
	DocumentsArea = "documents"
	ResultsArea   = "results"
)

// FileStorage stores uploaded files under relative paths.
type FileStorage interface {
	Save(ctx context.Context, relPath string, src io.Reader) (int64, error)
	Path(relPath string) (string, error)
	Remove(relPath string) error
}

// DiskStorage keeps files below a root directory on local disk.
type DiskStorage struct {
	root string
}

func NewDiskStorage(root string) (*DiskStorage, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve upload root: %w", err)
	}
	for _, area := range []string{DocumentsArea, ResultsArea} {
		if err := os.MkdirAll(filepath.Join(abs, area), 0o755); err != nil {
			return nil, fmt.Errorf("create %s directory: %w", area, err)
		}
	}
	return &DiskStorage{root: abs}, nil
}

func (s *DiskStorage) Root() string { return s.root }

func (s *DiskStorage) resolve(relPath string) (string, error) {
	clean := filepath.Clean("/" + filepath.ToSlash(relPath))
	full := filepath.Join(s.root, clean)
	if !strings.HasPrefix(full, s.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("path %q escapes storage root", relPath)
	}
	return full, nil
}

func (s *DiskStorage) Save(ctx context.Context, relPath string, src io.Reader) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	full, err := s.resolve(relPath)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return 0, err
	}

	dst, err := os.OpenFile(full, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return 0, err
	}
	n, copyErr := io.Copy(dst, src)
	closeErr := dst.Close()
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(full)
		return 0, errors.Join(copyErr, closeErr)
	}
	return n, nil
}

// Path returns the absolute path of an existing file.
func (s *DiskStorage) Path(relPath string) (string, error) {
	full, err := s.resolve(relPath)
	if err != nil {
		return "", ErrNotFound
	}
	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		return "", ErrNotFound
	}
	return full, nil
}

func (s *DiskStorage) Remove(relPath string) error {
	full, err := s.resolve(relPath)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// storeUpload copies an uploaded file into storage at relPath.
func storeUpload(ctx context.Context, files FileStorage, relPath string, f UploadedFile) (int64, error) {
	rc, err := f.Open()
	if err != nil {
		return 0, storageError("open upload", err)
	}
	defer rc.Close()

	n, err := files.Save(ctx, relPath, rc)
	if err != nil {
		log.Printf("[storage] failed to write %s: %v", relPath, err)
		return 0, storageError("write upload", err)
	}
	return n, nil
}

func removeFiles(files FileStorage, paths []string) {
	for _, p := range paths {
		if err := files.Remove(p); err != nil {
			log.Printf("[storage] failed to remove %s: %v", p, err)
		}
	}
}
