package utils

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFileStorageRoundTrip(t *testing.T) {
	storage := NewPublicFileStorage(t.TempDir(), "http://localhost:8080/uploads/")
	ctx := context.Background()

	require.NoError(t, storage.Upload(ctx, "user-1/id_document-1700000000000.pdf", strings.NewReader("scan")))

	exists, err := storage.FileExists("user-1/id_document-1700000000000.pdf")
	require.NoError(t, err)
	assert.True(t, exists)

	rc, err := storage.DownloadFile("user-1/id_document-1700000000000.pdf")
	require.NoError(t, err)
	body, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "scan", string(body))

	assert.Equal(t, "http://localhost:8080/uploads/user-1/id_document-1700000000000.pdf",
		storage.PublicURL("user-1/id_document-1700000000000.pdf"))

	require.NoError(t, storage.Delete(ctx, "user-1/id_document-1700000000000.pdf"))
	exists, err = storage.FileExists("user-1/id_document-1700000000000.pdf")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLocalFileStorageRejectsTraversal(t *testing.T) {
	storage := NewLocalFileStorage(t.TempDir())

	_, err := storage.UploadFileFromReader(strings.NewReader("x"), "../escape.txt")
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestUploadHonoursCancelledContext(t *testing.T) {
	storage := NewLocalFileStorage(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := storage.Upload(ctx, "a/b.pdf", strings.NewReader("x"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFileExtension(t *testing.T) {
	assert.Equal(t, "pdf", FileExtension("Fees.PDF"))
	assert.Equal(t, "jpeg", FileExtension("photo.final.jpeg"))
	assert.Equal(t, "bin", FileExtension("README"))
}
