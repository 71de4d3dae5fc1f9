package controllers

import (
	"bursary-portal-backend/apperrors"
	"bursary-portal-backend/config"
	"bursary-portal-backend/middleware"
	"bursary-portal-backend/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Submit sends the session's draft. Anonymous callers get 401 and their
// answers are kept; signing in finishes the submission.
func (ac *ApplicationController) Submit(c *fiber.Ctx) error {
	sess := middleware.CurrentSession(c)

	outcome, err := ac.Submissions.Submit(c.UserContext(), sess)
	if err != nil {
		if !apperrors.Is(err, apperrors.KindAuthRequired) && !apperrors.Is(err, apperrors.KindValidation) {
			config.Logger.Error("Application submission failed",
				zap.String("session_id", sess.ID),
				zap.String("state", string(outcome.State)),
				zap.Error(err))
		}
		return utils.RespondError(c, err)
	}

	return utils.RespondSuccess(c, fiber.StatusCreated, "Application submitted successfully", ac.Submissions.OutcomeFor(sess))
}

func (ac *ApplicationController) GetSubmission(c *fiber.Ctx) error {
	sess := middleware.CurrentSession(c)
	return utils.RespondSuccess(c, fiber.StatusOK, "Submission status", ac.Submissions.OutcomeFor(sess))
}

// ResetDraft starts a new application on the session.
func (ac *ApplicationController) ResetDraft(c *fiber.Ctx) error {
	sess := middleware.CurrentSession(c)
	if err := ac.Submissions.Reset(sess); err != nil {
		return utils.RespondError(c, err)
	}
	return utils.RespondSuccess(c, fiber.StatusOK, "Started a new application", sess.Draft().Snapshot())
}
