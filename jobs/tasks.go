// Package jobs carries notification emails through asynq so request paths
// never wait on SMTP.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bursary-portal-backend/db/models"

	"github.com/hibiken/asynq"
)

const (
	TypeApplicationReceived = "notification:application_received"
	TypeStatusChanged       = "notification:status_changed"
	TypeContactReceived     = "notification:contact_received"

	QueueNotifications = "notifications"
)

type ApplicationPayload struct {
	ApplicationID   string  `json:"application_id"`
	ReferenceID     string  `json:"reference_id"`
	Email           string  `json:"email"`
	FullName        string  `json:"full_name"`
	ApplicationType string  `json:"application_type"`
	Status          string  `json:"status"`
	Comment         *string `json:"comment,omitempty"`
}

type ContactPayload struct {
	ContactID string `json:"contact_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Subject   string `json:"subject"`
}

func applicationPayload(app *models.Application) ApplicationPayload {
	return ApplicationPayload{
		ApplicationID:   app.ID.String(),
		ReferenceID:     app.ReferenceID(),
		Email:           app.Email,
		FullName:        app.FullName,
		ApplicationType: string(app.ApplicationType),
		Status:          string(app.Status),
		Comment:         app.AdminComments,
	}
}

func newTask(taskType string, payload interface{}) (*asynq.Task, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", taskType, err)
	}
	return asynq.NewTask(taskType, raw,
		asynq.Queue(QueueNotifications),
		asynq.MaxRetry(5),
		asynq.Timeout(time.Minute),
	), nil
}

func NewApplicationReceivedTask(app *models.Application) (*asynq.Task, error) {
	return newTask(TypeApplicationReceived, applicationPayload(app))
}

func NewStatusChangedTask(app *models.Application) (*asynq.Task, error) {
	return newTask(TypeStatusChanged, applicationPayload(app))
}

func NewContactReceivedTask(contact *models.ContactSubmission) (*asynq.Task, error) {
	return newTask(TypeContactReceived, ContactPayload{
		ContactID: contact.ID.String(),
		Name:      contact.Name,
		Email:     contact.Email,
		Subject:   contact.Subject,
	})
}

// Enqueuer is the part of *asynq.Client the notifier needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type Notifier struct {
	Client Enqueuer
}

func NewNotifier(client Enqueuer) *Notifier {
	return &Notifier{Client: client}
}

func (n *Notifier) enqueue(ctx context.Context, task *asynq.Task, err error) error {
	if err != nil {
		return err
	}
	if _, err := n.Client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("enqueue %s: %w", task.Type(), err)
	}
	return nil
}

func (n *Notifier) ApplicationReceived(ctx context.Context, app *models.Application) error {
	task, err := NewApplicationReceivedTask(app)
	return n.enqueue(ctx, task, err)
}

func (n *Notifier) StatusChanged(ctx context.Context, app *models.Application) error {
	task, err := NewStatusChangedTask(app)
	return n.enqueue(ctx, task, err)
}

func (n *Notifier) ContactReceived(ctx context.Context, contact *models.ContactSubmission) error {
	task, err := NewContactReceivedTask(contact)
	return n.enqueue(ctx, task, err)
}
