package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const DefaultAdminRole = "admin"

// User is an applicant or reviewer account.
type User struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key;" json:"id"`
	FullName    string     `gorm:"not null" json:"full_name"`
	Email       string     `gorm:"unique;not null" json:"email"`
	Phone       *string    `json:"phone"`
	Password    string     `json:"-"` // Never include in JSON responses
	Active      bool       `gorm:"default:true" json:"active"`
	LastLoginAt *time.Time `json:"last_login_at"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return
}

func (u *User) Principal() *Principal {
	return &Principal{ID: u.ID, Email: u.Email, FullName: u.FullName}
}

// AdminUser is an entry on the reviewer allow-list. Presence of a row for a
// user is what makes them an admin.
type AdminUser struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	Role      string    `gorm:"type:varchar(30);not null;default:'admin'" json:"role"`
	CreatedBy string    `gorm:"not null" json:"created_by"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (a *AdminUser) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return
}

// Principal is the authenticated identity attached to a session. It is not
// persisted.
type Principal struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	FullName string    `json:"full_name"`
}
