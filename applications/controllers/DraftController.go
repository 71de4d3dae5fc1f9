package controllers

import (
	"fmt"
	"sort"
	"strconv"

	"bursary-portal-backend/applications/services"
	"bursary-portal-backend/apperrors"
	"bursary-portal-backend/config"
	"bursary-portal-backend/middleware"
	"bursary-portal-backend/utils"
	"bursary-portal-backend/wizard"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func (ac *ApplicationController) GetDraft(c *fiber.Ctx) error {
	sess := middleware.CurrentSession(c)
	return utils.RespondSuccess(c, fiber.StatusOK, "Draft retrieved successfully", fiber.Map{
		"draft":      sess.Draft().Snapshot(),
		"submission": ac.Submissions.OutcomeFor(sess),
	})
}

// UpdateDraftFields accepts a JSON object of field name to value. Numbers
// are accepted for numeric fields and stored as text like every other
// answer.
func (ac *ApplicationController) UpdateDraftFields(c *fiber.Ctx) error {
	var body map[string]interface{}
	if err := c.BodyParser(&body); err != nil {
		config.Logger.Error("Error parsing draft fields body", zap.Error(err))
		return utils.RespondError(c, apperrors.Validation("Invalid request format"))
	}
	if len(body) == 0 {
		return utils.RespondError(c, apperrors.Validation("No fields to update"))
	}

	values := make(map[string]string, len(body))
	names := make([]string, 0, len(body))
	for name, raw := range body {
		if _, ok := wizard.ParseField(name); !ok {
			return utils.RespondError(c, apperrors.Validation("Unknown field %q", name))
		}
		value, err := fieldValue(raw)
		if err != nil {
			return utils.RespondError(c, apperrors.Validation("Invalid value for %s", name))
		}
		values[name] = value
		names = append(names, name)
	}

	// county sorts before sub_county so a new county does not wipe a
	// sub-county sent in the same request.
	sort.Strings(names)

	draft := middleware.CurrentSession(c).Draft()
	for _, name := range names {
		if err := draft.SetField(name, values[name]); err != nil {
			return utils.RespondError(c, err)
		}
	}
	return utils.RespondSuccess(c, fiber.StatusOK, "Draft updated", draft.Snapshot())
}

func fieldValue(raw interface{}) (string, error) {
	switch v := raw.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	}
	return "", fmt.Errorf("unsupported value type %T", raw)
}

func (ac *ApplicationController) NextStep(c *fiber.Ctx) error {
	draft := middleware.CurrentSession(c).Draft()
	if err := draft.Advance(); err != nil {
		return utils.RespondError(c, err)
	}
	return utils.RespondSuccess(c, fiber.StatusOK, "Moved to next step", draft.Snapshot())
}

func (ac *ApplicationController) PreviousStep(c *fiber.Ctx) error {
	draft := middleware.CurrentSession(c).Draft()
	draft.Retreat()
	return utils.RespondSuccess(c, fiber.StatusOK, "Moved to previous step", draft.Snapshot())
}

// AttachDocument stages the multipart "file" for the document slot in the
// URL, replacing any file already there.
func (ac *ApplicationController) AttachDocument(c *fiber.Ctx) error {
	docType, ok := wizard.ParseDocumentType(c.Params("type"))
	if !ok {
		return utils.RespondError(c, apperrors.Validation("Unknown document type %q", c.Params("type")))
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return utils.RespondError(c, apperrors.Validation("A file is required for %s", docType.Label()))
	}
	if fileHeader.Size == 0 {
		return utils.RespondError(c, apperrors.Validation("%s is empty", docType.Label()))
	}
	if fileHeader.Size > ac.maxDocumentSize() {
		return utils.RespondError(c, apperrors.Validation("%s must be at most %d MB", docType.Label(), ac.maxDocumentSize()>>20))
	}

	sess := middleware.CurrentSession(c)
	if sess.Draft().Submitted() {
		return utils.RespondError(c, apperrors.Validation("Application has already been submitted"))
	}

	file, err := fileHeader.Open()
	if err != nil {
		config.Logger.Error("Failed to open uploaded document", zap.Error(err))
		return utils.RespondError(c, apperrors.Validation("Could not read %s", docType.Label()))
	}
	defer file.Close()

	stagePath := fmt.Sprintf("%s/%s-%d.%s", sess.ID, docType, ac.clock().UnixNano(), utils.FileExtension(fileHeader.Filename))
	storedPath, err := ac.Staging.UploadFile(file, stagePath)
	if err != nil {
		config.Logger.Error("Failed to stage document",
			zap.String("session_id", sess.ID),
			zap.String("document_type", string(docType)),
			zap.Error(err))
		return utils.RespondError(c, apperrors.Wrap(apperrors.KindUploadFailure, "Failed to upload "+docType.Label(), err))
	}

	staged := services.NewStagedFile(ac.Staging, storedPath, fileHeader.Filename, fileHeader.Size)
	previous, err := sess.Draft().AttachDocument(docType, staged)
	if err != nil {
		services.DiscardFiles(staged)
		return utils.RespondError(c, err)
	}
	if previous != nil {
		services.DiscardFiles(previous)
	}

	return utils.RespondSuccess(c, fiber.StatusOK, docType.Label()+" attached", sess.Draft().Snapshot())
}

func (ac *ApplicationController) DetachDocument(c *fiber.Ctx) error {
	draft := middleware.CurrentSession(c).Draft()
	previous, err := draft.DetachDocument(wizard.DocumentType(c.Params("type")))
	if err != nil {
		return utils.RespondError(c, err)
	}
	if previous != nil {
		services.DiscardFiles(previous)
	}
	return utils.RespondSuccess(c, fiber.StatusOK, "Document removed", draft.Snapshot())
}
