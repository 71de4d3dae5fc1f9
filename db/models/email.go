package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EmailLog records every notification email the worker attempted.
type EmailLog struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;" json:"id"`
	Recipient string    `gorm:"not null;index" json:"recipient"`
	Subject   string    `gorm:"not null" json:"subject"`
	Message   string    `gorm:"type:text" json:"message"`
	TaskType  string    `gorm:"type:varchar(60);index" json:"task_type"`
	Delivered bool      `gorm:"default:false" json:"delivered"`
	Error     *string   `gorm:"type:text" json:"error"`
	SentAt    time.Time `gorm:"autoCreateTime" json:"sent_at"`
}

func (e *EmailLog) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return
}
