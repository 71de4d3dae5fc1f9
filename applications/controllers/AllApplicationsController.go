package controllers

import (
	"time"

	"bursary-portal-backend/applications/services"
	"bursary-portal-backend/utils"
)

// DefaultMaxDocumentSize caps a single staged document.
const DefaultMaxDocumentSize = 10 << 20

type ApplicationController struct {
	Submissions *services.SubmissionService
	Status      *services.StatusService
	Review      *services.ReviewService
	Reports     *services.ReportService
	// Staging holds documents attached to drafts that are not submitted yet.
	Staging         utils.FileStorage
	MaxDocumentSize int64
	// ExportPath is the static path prefix report files are served under.
	ExportPath string
	now        func() time.Time
}

func (ac *ApplicationController) clock() time.Time {
	if ac.now != nil {
		return ac.now()
	}
	return time.Now()
}

func (ac *ApplicationController) maxDocumentSize() int64 {
	if ac.MaxDocumentSize > 0 {
		return ac.MaxDocumentSize
	}
	return DefaultMaxDocumentSize
}
