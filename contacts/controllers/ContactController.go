package controllers

import (
	"context"
	"strings"

	"bursary-portal-backend/apperrors"
	"bursary-portal-backend/config"
	"bursary-portal-backend/db/models"
	"bursary-portal-backend/gateway"
	userservices "bursary-portal-backend/users/services"
	"bursary-portal-backend/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ContactNotifier interface {
	ContactReceived(ctx context.Context, contact *models.ContactSubmission) error
}

type ContactController struct {
	Gateway  *gateway.Gateway
	Notifier ContactNotifier
}

type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

func validateContact(req *ContactRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Subject = strings.TrimSpace(req.Subject)
	req.Message = strings.TrimSpace(req.Message)

	var missing []string
	for name, value := range map[string]string{"name": req.Name, "email": req.Email, "subject": req.Subject, "message": req.Message} {
		if value == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		err := apperrors.Validation("Please fill in all fields")
		err.Detail = "missing: " + strings.Join(sortedFields(missing), ", ")
		return err
	}
	if !userservices.ValidateEmailFormat(req.Email) {
		return apperrors.Validation("Invalid email format")
	}
	return nil
}

// sortedFields keeps the form order in messages.
func sortedFields(names []string) []string {
	order := []string{"name", "email", "subject", "message"}
	present := make(map[string]bool, len(names))
	for _, n := range names {
		present[n] = true
	}
	var out []string
	for _, n := range order {
		if present[n] {
			out = append(out, n)
		}
	}
	return out
}

func (cc *ContactController) SubmitContact(c *fiber.Ctx) error {
	var req ContactRequest
	if err := c.BodyParser(&req); err != nil {
		config.Logger.Error("Error parsing contact request body", zap.Error(err))
		return utils.RespondError(c, apperrors.Validation("Invalid request format"))
	}
	if err := validateContact(&req); err != nil {
		return utils.RespondError(c, err)
	}

	contact, err := cc.Gateway.InsertContact(c.UserContext(), &models.ContactSubmission{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		return utils.RespondError(c, err)
	}

	if cc.Notifier != nil {
		if err := cc.Notifier.ContactReceived(c.UserContext(), contact); err != nil {
			config.Logger.Warn("Failed to enqueue contact acknowledgement", zap.String("contact_id", contact.ID.String()), zap.Error(err))
		}
	}

	return utils.RespondSuccess(c, fiber.StatusCreated, "Message sent successfully", fiber.Map{
		"id":         contact.ID,
		"created_at": contact.CreatedAt,
	})
}
