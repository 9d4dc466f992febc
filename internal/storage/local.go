// Package storage persists uploaded report images on the local disk.
package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// sniffLen is how much of the upload is read to detect its type.
const sniffLen = 3072

// URLPrefix is the public path stored files are served under.
const URLPrefix = "/uploads/"

var (
	// ErrNotImage is returned when the content is not an image.
	ErrNotImage = errors.New("only image files are allowed")
	// ErrTooLarge is returned when the content exceeds the size limit.
	ErrTooLarge = errors.New("file exceeds the size limit")
	// ErrEmpty is returned for zero-length uploads.
	ErrEmpty = errors.New("file is empty")
)

// SizeError reports content over the size limit. It matches ErrTooLarge.
type SizeError struct {
	Limit int64
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("%s of %d bytes", ErrTooLarge, e.Limit)
}

// Is reports whether target is ErrTooLarge.
func (e *SizeError) Is(target error) bool {
	return target == ErrTooLarge
}

// StoredFile describes a saved upload.
type StoredFile struct {
	Filename    string
	Path        string
	URL         string
	ContentType string
	Size        int64
}

// LocalStorage writes files under a single directory with generated names.
type LocalStorage struct {
	dir      string
	maxBytes int64
}

// NewLocalStorage creates the upload directory if needed.
func NewLocalStorage(dir string, maxBytes int64) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve upload directory %s: %w", dir, err)
	}
	return &LocalStorage{dir: abs, maxBytes: maxBytes}, nil
}

// Dir returns the absolute upload directory.
func (s *LocalStorage) Dir() string {
	return s.dir
}

// Save stores r if its content sniffs as an image. The original file name
// only contributes its extension when the detected type has none.
func (s *LocalStorage) Save(r io.Reader, originalName string) (*StoredFile, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	head = head[:n]
	if n == 0 {
		return nil, ErrEmpty
	}

	mime := mimetype.Detect(head)
	if !strings.HasPrefix(mime.String(), "image/") {
		return nil, fmt.Errorf("%w: detected %s", ErrNotImage, mime.String())
	}

	ext := mime.Extension()
	if ext == "" {
		ext = strings.ToLower(filepath.Ext(originalName))
	}
	filename := uuid.New().String() + ext
	path := filepath.Join(s.dir, filename)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", filename, err)
	}

	// One byte past the limit tells an exact fit from an overflow
	body := io.MultiReader(bytes.NewReader(head), r)
	size, err := io.Copy(f, io.LimitReader(body, s.maxBytes+1))
	closeErr := f.Close()

	switch {
	case err != nil:
		_ = os.Remove(path)
		return nil, fmt.Errorf("failed to write %s: %w", filename, err)
	case closeErr != nil:
		_ = os.Remove(path)
		return nil, fmt.Errorf("failed to close %s: %w", filename, closeErr)
	case size > s.maxBytes:
		_ = os.Remove(path)
		return nil, &SizeError{Limit: s.maxBytes}
	}

	return &StoredFile{
		Filename:    filename,
		Path:        path,
		URL:         URLPrefix + filename,
		ContentType: mime.String(),
		Size:        size,
	}, nil
}

// Remove deletes a stored file by name. Missing files are not an error.
func (s *LocalStorage) Remove(filename string) error {
	if filename == "" || filename != filepath.Base(filename) {
		return fmt.Errorf("invalid file name %q", filename)
	}
	err := os.Remove(filepath.Join(s.dir, filename))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", filename, err)
	}
	return nil
}
