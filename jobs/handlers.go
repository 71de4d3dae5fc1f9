package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"bursary-portal-backend/config"
	"bursary-portal-backend/db/models"
	"bursary-portal-backend/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

// EmailHandlers sends notification emails and records each attempt in
// email_logs.
type EmailHandlers struct {
	Mailer      utils.EmailSender
	DB          *gorm.DB
	FrontendURL string
}

func (h *EmailHandlers) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeApplicationReceived, h.HandleApplicationReceived)
	mux.HandleFunc(TypeStatusChanged, h.HandleStatusChanged)
	mux.HandleFunc(TypeContactReceived, h.HandleContactReceived)
}

func decode(t *asynq.Task, dest interface{}) error {
	if err := json.Unmarshal(t.Payload(), dest); err != nil {
		return fmt.Errorf("decode %s payload: %v: %w", t.Type(), err, asynq.SkipRetry)
	}
	return nil
}

func (h *EmailHandlers) trackURL(reference string) string {
	return strings.TrimSuffix(h.FrontendURL, "/") + "/status?reference=" + reference
}

func (h *EmailHandlers) HandleApplicationReceived(ctx context.Context, t *asynq.Task) error {
	var p ApplicationPayload
	if err := decode(t, &p); err != nil {
		return err
	}
	body, err := render("application_received", map[string]interface{}{
		"FullName":        p.FullName,
		"ApplicationType": p.ApplicationType,
		"ReferenceID":     p.ReferenceID,
		"TrackURL":        h.trackURL(p.ReferenceID),
	})
	if err != nil {
		return fmt.Errorf("render: %v: %w", err, asynq.SkipRetry)
	}
	return h.deliver(ctx, t.Type(), p.Email, "Application received - "+p.ReferenceID, body)
}

func (h *EmailHandlers) HandleStatusChanged(ctx context.Context, t *asynq.Task) error {
	var p ApplicationPayload
	if err := decode(t, &p); err != nil {
		return err
	}
	comment := ""
	if p.Comment != nil {
		comment = *p.Comment
	}
	label := cases.Title(language.English).String(strings.ReplaceAll(p.Status, "_", " "))
	body, err := render("status_changed", map[string]interface{}{
		"FullName":    p.FullName,
		"ReferenceID": p.ReferenceID,
		"StatusLabel": label,
		"Comment":     comment,
		"TrackURL":    h.trackURL(p.ReferenceID),
	})
	if err != nil {
		return fmt.Errorf("render: %v: %w", err, asynq.SkipRetry)
	}
	return h.deliver(ctx, t.Type(), p.Email, "Application "+label, body)
}

func (h *EmailHandlers) HandleContactReceived(ctx context.Context, t *asynq.Task) error {
	var p ContactPayload
	if err := decode(t, &p); err != nil {
		return err
	}
	body, err := render("contact_received", p)
	if err != nil {
		return fmt.Errorf("render: %v: %w", err, asynq.SkipRetry)
	}
	return h.deliver(ctx, t.Type(), p.Email, "We received your message", body)
}

// deliver sends one email and logs the attempt. A send failure is returned
// so asynq retries the task.
func (h *EmailHandlers) deliver(ctx context.Context, taskType, to, subject, body string) error {
	sendErr := h.Mailer.Send(to, subject, body)

	entry := models.EmailLog{
		Recipient: to,
		Subject:   subject,
		Message:   body,
		TaskType:  taskType,
		Delivered: sendErr == nil,
	}
	if sendErr != nil {
		msg := sendErr.Error()
		entry.Error = &msg
	}
	if h.DB != nil {
		if err := h.DB.WithContext(ctx).Create(&entry).Error; err != nil {
			config.Logger.Error("Failed to record email log", zap.String("task_type", taskType), zap.Error(err))
		}
	}

	if sendErr != nil {
		config.Logger.Warn("Notification email failed", zap.String("task_type", taskType), zap.String("to_email", to), zap.Error(sendErr))
		return sendErr
	}
	config.Logger.Info("Notification email sent", zap.String("task_type", taskType), zap.String("to_email", to))
	return nil
}
