package db

import (
	"errors"
	"fmt"
	"time"

	"bursary-portal-backend/db/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	DemoApplicantEmail    = "demo.applicant@example.com"
	DemoApplicantPassword = "DemoPassw0rd"
)

type demoApplication struct {
	name    string
	kind    models.ApplicationType
	status  models.ApplicationStatus
	county  string
	sub     string
	school  string
	level   string
	class   string
	dob     string
	ageDays int
	amount  string
}

var demoApplications = []demoApplication{
	{"Achieng Otieno", models.EducationApplication, models.PendingApplication, "Nairobi", "Kibra", "Olympic High School", "secondary", "Form 3", "2008-04-12", 3, "25000"},
	{"Brian Kiprono", models.EducationApplication, models.UnderReviewApplication, "Kiambu", "Ruiru", "Ruiru Boys", "secondary", "Form 2", "2009-01-30", 20, "18000"},
	{"Fatuma Ali", models.HealthApplication, models.ApprovedApplication, "Mombasa", "Likoni", "Likoni Primary", "primary", "Class 7", "2011-07-04", 45, "40000"},
	{"Kevin Mwangi", models.EducationApplication, models.RejectedApplication, "Nairobi", "Westlands", "University of Nairobi", "university", "Year 2", "2004-11-19", 70, ""},
	{"Mercy Wambui", models.HealthApplication, models.PendingApplication, "Kiambu", "Juja", "Juja Girls", "secondary", "Form 4", "2007-09-30", 100, "15000"},
}

// SeedDemoData creates a demo applicant with one application in every
// status. It returns how many applications were inserted and does nothing
// once the demo applicant has applications.
func SeedDemoData(db *gorm.DB) (int, error) {
	var user models.User
	err := db.Where("email = ?", DemoApplicantEmail).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		hash, err := bcrypt.GenerateFromPassword([]byte(DemoApplicantPassword), bcrypt.DefaultCost)
		if err != nil {
			return 0, err
		}
		user = models.User{FullName: "Demo Applicant", Email: DemoApplicantEmail, Password: string(hash), Active: true}
		if err := db.Create(&user).Error; err != nil {
			return 0, fmt.Errorf("create demo applicant: %w", err)
		}
	} else if err != nil {
		return 0, err
	}

	var existing int64
	if err := db.Model(&models.Application{}).Where("user_id = ?", user.ID).Count(&existing).Error; err != nil {
		return 0, err
	}
	if existing > 0 {
		return 0, nil
	}

	now := time.Now()
	created := 0
	err = db.Transaction(func(tx *gorm.DB) error {
		for _, d := range demoApplications {
			app, err := d.build(user, now)
			if err != nil {
				return err
			}
			if err := tx.Create(app).Error; err != nil {
				return fmt.Errorf("create demo application for %s: %w", d.name, err)
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

func (d demoApplication) build(user models.User, now time.Time) (*models.Application, error) {
	dob, err := time.Parse("2006-01-02", d.dob)
	if err != nil {
		return nil, err
	}
	submitted := now.AddDate(0, 0, -d.ageDays)

	app := &models.Application{
		UserID:               user.ID,
		ApplicationType:      d.kind,
		Status:               d.status,
		FullName:             d.name,
		DateOfBirth:          datatypes.Date(dob),
		Gender:               models.OtherGender,
		Phone:                "+254700000000",
		Email:                user.Email,
		County:               d.county,
		SubCounty:            d.sub,
		Division:             d.sub,
		Location:             d.sub,
		SubLocation:          d.sub,
		Village:              "Demo Village",
		SchoolName:           d.school,
		SchoolLevel:          d.level,
		ClassYear:            d.class,
		HouseholdSize:        5,
		ReasonForApplication: "Demo application",
		CreatedAt:            submitted,
		UpdatedAt:            submitted,
	}
	if d.amount != "" {
		amount, err := decimal.NewFromString(d.amount)
		if err != nil {
			return nil, err
		}
		app.RequestedAmount = &amount
	}
	if d.status != models.PendingApplication {
		reviewedAt := submitted.Add(48 * time.Hour)
		app.ReviewedAt = &reviewedAt
	}
	return app, nil
}
