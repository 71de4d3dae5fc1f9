package services

import (
	"io"

	"bursary-portal-backend/config"
	"bursary-portal-backend/utils"
	"bursary-portal-backend/wizard"

	"go.uber.org/zap"
)

// StagedFile is an uploaded document parked in the staging area until the
// draft is submitted.
type StagedFile struct {
	name    string
	size    int64
	path    string
	storage utils.FileStorage
}

func NewStagedFile(storage utils.FileStorage, path, name string, size int64) *StagedFile {
	return &StagedFile{name: name, size: size, path: path, storage: storage}
}

func (f *StagedFile) Name() string { return f.name }
func (f *StagedFile) Size() int64  { return f.size }
func (f *StagedFile) Path() string { return f.path }

func (f *StagedFile) Open() (io.ReadCloser, error) {
	return f.storage.DownloadFile(f.path)
}

// Discard removes the staged copy.
func (f *StagedFile) Discard() error {
	return f.storage.DeleteFile(f.path)
}

// DiscardFiles drops the staged copies of files that have one.
func DiscardFiles(files ...wizard.File) {
	for _, file := range files {
		d, ok := file.(interface{ Discard() error })
		if !ok {
			continue
		}
		if err := d.Discard(); err != nil {
			config.Logger.Warn("Failed to discard staged file", zap.String("file", file.Name()), zap.Error(err))
		}
	}
}
