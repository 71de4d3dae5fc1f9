package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"bursary-portal-backend/apperrors"
	"bursary-portal-backend/db/models"
	"bursary-portal-backend/utils"
	"bursary-portal-backend/wizard"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateEmailFormat reports whether email looks deliverable.
func ValidateEmailFormat(email string) bool {
	return emailPattern.MatchString(strings.TrimSpace(email))
}

// BuildApplication converts draft answers into a typed application. The
// status is always pending; owner and document URLs are set by the caller.
func BuildApplication(fields map[wizard.Field]string) (*models.Application, error) {
	get := func(f wizard.Field) string { return strings.TrimSpace(fields[f]) }
	var problems []string

	appType := models.ApplicationType(strings.ToLower(get(wizard.ApplicationType)))
	if !appType.Valid() {
		problems = append(problems, "application_type must be education or health")
	}

	gender := models.Gender(strings.ToLower(get(wizard.Gender)))
	if !gender.Valid() {
		problems = append(problems, "gender must be male, female or other")
	}

	email := get(wizard.Email)
	if !ValidateEmailFormat(email) {
		problems = append(problems, "email is not a valid address")
	}

	dob, err := time.ParseInLocation("2006-01-02", get(wizard.DateOfBirth), time.UTC)
	if err != nil {
		problems = append(problems, "date_of_birth must be a date in YYYY-MM-DD format")
	} else if dob.After(utils.Today()) {
		problems = append(problems, "date_of_birth cannot be in the future")
	}

	householdSize, err := strconv.Atoi(get(wizard.HouseholdSize))
	if err != nil || householdSize < 1 {
		problems = append(problems, "household_size must be a whole number of at least 1")
	}

	income, err := optionalAmount(get(wizard.MonthlyIncome))
	if err != nil {
		problems = append(problems, "monthly_income "+err.Error())
	}
	requested, err := optionalAmount(get(wizard.RequestedAmount))
	if err != nil {
		problems = append(problems, "requested_amount "+err.Error())
	}

	if len(problems) > 0 {
		vErr := apperrors.Validation("Some answers need correcting")
		vErr.Detail = strings.Join(problems, "; ")
		return nil, vErr
	}

	return &models.Application{
		ApplicationType:      appType,
		Status:               models.PendingApplication,
		FullName:             get(wizard.FullName),
		DateOfBirth:          datatypes.Date(dob),
		Gender:               gender,
		Phone:                get(wizard.Phone),
		Email:                strings.ToLower(email),
		NationalID:           utils.NonEmptyStringPtr(get(wizard.NationalID)),
		County:               get(wizard.County),
		SubCounty:            get(wizard.SubCounty),
		Division:             get(wizard.Division),
		Location:             get(wizard.Location),
		SubLocation:          get(wizard.SubLocation),
		Village:              get(wizard.Village),
		SchoolName:           get(wizard.SchoolName),
		SchoolLevel:          get(wizard.SchoolLevel),
		ClassYear:            get(wizard.ClassYear),
		HouseholdSize:        householdSize,
		MonthlyIncome:        income,
		RequestedAmount:      requested,
		ReasonForApplication: get(wizard.Reason),
	}, nil
}

func optionalAmount(raw string) (*decimal.Decimal, error) {
	if raw == "" {
		return nil, nil
	}
	amount, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", ""))
	if err != nil {
		return nil, fmt.Errorf("must be a number")
	}
	if amount.IsNegative() {
		return nil, fmt.Errorf("cannot be negative")
	}
	amount = amount.Round(2)
	return &amount, nil
}

// DocumentPath is the storage path of an uploaded document.
func DocumentPath(ownerID uuid.UUID, docType wizard.DocumentType, fileName string, now time.Time) string {
	return fmt.Sprintf("%s/%s-%d.%s", ownerID, docType, now.UnixMilli(), utils.FileExtension(fileName))
}

func setDocumentURL(app *models.Application, docType wizard.DocumentType, url string) {
	switch docType {
	case wizard.IDDocument:
		app.IDDocumentURL = &url
	case wizard.SchoolFeesStructure:
		app.SchoolFeesStructureURL = &url
	case wizard.IncomeCertificate:
		app.IncomeCertificateURL = &url
	case wizard.BirthCertificate:
		app.BirthCertificateURL = &url
	}
}
