package utils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
)

var ErrInvalidPath = errors.New("invalid storage path")

type FileStorage interface {
	UploadFile(file multipart.File, fileName string) (string, error)
	UploadFileFromReader(src io.Reader, fileName string) (string, error)
	DownloadFile(filePath string) (io.ReadCloser, error)
	DeleteFile(filePath string) error
	FileExists(filePath string) (bool, error)
}

// LocalFileStorage keeps objects under uploadPath. Paths passed in and
// returned are relative to uploadPath and always use forward slashes.
type LocalFileStorage struct {
	uploadPath    string
	publicBaseURL string
}

func NewLocalFileStorage(uploadPath string) *LocalFileStorage {
	return &LocalFileStorage{uploadPath: uploadPath}
}

// NewPublicFileStorage is a LocalFileStorage whose objects are served
// statically under publicBaseURL.
func NewPublicFileStorage(uploadPath, publicBaseURL string) *LocalFileStorage {
	return &LocalFileStorage{uploadPath: uploadPath, publicBaseURL: strings.TrimSuffix(publicBaseURL, "/")}
}

func (s *LocalFileStorage) resolve(filePath string) (string, error) {
	clean := path.Clean("/" + filepath.ToSlash(filePath))
	if clean == "/" || strings.Contains(filePath, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, filePath)
	}
	return filepath.Join(s.uploadPath, filepath.FromSlash(strings.TrimPrefix(clean, "/"))), nil
}

// UploadFile handles multipart file uploads
func (s *LocalFileStorage) UploadFile(file multipart.File, fileName string) (string, error) {
	return s.UploadFileFromReader(file, fileName)
}

// UploadFileFromReader handles file uploads from any io.Reader
func (s *LocalFileStorage) UploadFileFromReader(src io.Reader, fileName string) (string, error) {
	fullPath, err := s.resolve(fileName)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	dst, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		// Clean up on error
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to copy file content: %w", err)
	}

	return filepath.ToSlash(fileName), nil
}

// DownloadFile retrieves a file for reading
func (s *LocalFileStorage) DownloadFile(filePath string) (io.ReadCloser, error) {
	fullPath, err := s.resolve(filePath)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// DeleteFile removes a file from storage
func (s *LocalFileStorage) DeleteFile(filePath string) error {
	fullPath, err := s.resolve(filePath)
	if err != nil {
		return err
	}

	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		return nil // File doesn't exist, nothing to delete
	}

	if err := os.Remove(fullPath); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// FileExists checks if a file exists in storage
func (s *LocalFileStorage) FileExists(filePath string) (bool, error) {
	fullPath, err := s.resolve(filePath)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check file existence: %w", err)
	}
	return true, nil
}

// Upload stores src at objectPath, giving up if ctx ends mid-copy.
func (s *LocalFileStorage) Upload(ctx context.Context, objectPath string, src io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.UploadFileFromReader(&contextReader{ctx: ctx, r: src}, objectPath)
	return err
}

func (s *LocalFileStorage) Delete(ctx context.Context, objectPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.DeleteFile(objectPath)
}

// PublicURL is the address the stored object is served from.
func (s *LocalFileStorage) PublicURL(objectPath string) string {
	return s.publicBaseURL + "/" + strings.TrimPrefix(filepath.ToSlash(objectPath), "/")
}

type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr *contextReader) Read(p []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}
	return cr.r.Read(p)
}
