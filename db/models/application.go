package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ApplicationType is the bursary an applicant is asking for.
type ApplicationType string

const (
	EducationApplication ApplicationType = "education"
	HealthApplication    ApplicationType = "health"
)

func (t ApplicationType) Valid() bool {
	return t == EducationApplication || t == HealthApplication
}

// ApplicationStatus defines the current state of an application.
type ApplicationStatus string

const (
	PendingApplication     ApplicationStatus = "pending"
	UnderReviewApplication ApplicationStatus = "under_review"
	ApprovedApplication    ApplicationStatus = "approved"
	RejectedApplication    ApplicationStatus = "rejected"
)

// ApplicationStatuses lists every status in review order.
var ApplicationStatuses = []ApplicationStatus{
	PendingApplication,
	UnderReviewApplication,
	ApprovedApplication,
	RejectedApplication,
}

func (s ApplicationStatus) Valid() bool {
	switch s {
	case PendingApplication, UnderReviewApplication, ApprovedApplication, RejectedApplication:
		return true
	}
	return false
}

type Gender string

const (
	MaleGender   Gender = "male"
	FemaleGender Gender = "female"
	OtherGender  Gender = "other"
)

func (g Gender) Valid() bool {
	return g == MaleGender || g == FemaleGender || g == OtherGender
}

// Application is a submitted bursary request. Rows are never deleted; only
// the review fields change after insert.
type Application struct {
	ID              uuid.UUID         `gorm:"type:uuid;primary_key;" json:"id"`
	UserID          uuid.UUID         `gorm:"type:uuid;not null;index" json:"user_id"`
	ApplicationType ApplicationType   `gorm:"type:varchar(20);not null;index" json:"application_type"`
	Status          ApplicationStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`

	// Applicant
	FullName    string         `gorm:"not null" json:"full_name"`
	DateOfBirth datatypes.Date `gorm:"not null" json:"date_of_birth"`
	Gender      Gender         `gorm:"type:varchar(10);not null" json:"gender"`
	Phone       string         `gorm:"not null" json:"phone"`
	Email       string         `gorm:"not null" json:"email"`
	NationalID  *string        `json:"national_id"`

	// Residence
	County      string `gorm:"not null;index" json:"county"`
	SubCounty   string `gorm:"not null" json:"sub_county"`
	Division    string `gorm:"not null" json:"division"`
	Location    string `gorm:"not null" json:"location"`
	SubLocation string `gorm:"not null" json:"sub_location"`
	Village     string `gorm:"not null" json:"village"`

	// School
	SchoolName  string `gorm:"not null;index" json:"school_name"`
	SchoolLevel string `gorm:"not null" json:"school_level"`
	ClassYear   string `gorm:"not null" json:"class_year"`

	// Need
	HouseholdSize        int              `gorm:"not null" json:"household_size"`
	MonthlyIncome        *decimal.Decimal `gorm:"type:decimal(15,2)" json:"monthly_income"`
	RequestedAmount      *decimal.Decimal `gorm:"type:decimal(15,2)" json:"requested_amount"`
	ReasonForApplication string           `gorm:"type:text;not null" json:"reason_for_application"`

	// Documents, public URLs in object storage
	IDDocumentURL          *string `json:"id_document_url"`
	SchoolFeesStructureURL *string `json:"school_fees_structure_url"`
	IncomeCertificateURL   *string `json:"income_certificate_url"`
	BirthCertificateURL    *string `json:"birth_certificate_url"`

	// Review
	ReviewedBy    *uuid.UUID `gorm:"type:uuid" json:"reviewed_by"`
	ReviewedAt    *time.Time `json:"reviewed_at"`
	AdminComments *string    `gorm:"type:text" json:"admin_comments"`

	CreatedAt time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// ReferenceID is the identifier shown to applicants for tracking.
func (a *Application) ReferenceID() string {
	return a.ID.String()
}

func (a *Application) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return
}
