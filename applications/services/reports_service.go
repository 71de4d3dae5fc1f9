package services

import (
	"context"
	"time"

	"bursary-portal-backend/apperrors"
	"bursary-portal-backend/db/models"
	"bursary-portal-backend/session"
	"bursary-portal-backend/utils"

	"github.com/shopspring/decimal"
)

const DefaultReportMonths = 6

type MonthlyCount struct {
	Month     string `json:"month"`
	Label     string `json:"label"`
	Education int    `json:"education"`
	Health    int    `json:"health"`
	Total     int    `json:"total"`
}

type Report struct {
	Stats       Stats          `json:"stats"`
	Monthly     []MonthlyCount `json:"monthly"`
	GeneratedAt time.Time      `json:"generated_at"`
}

type ReportService struct {
	Review    *ReviewService
	ExportDir string

	now func() time.Time
}

func NewReportService(review *ReviewService, exportDir string) *ReportService {
	return &ReportService{Review: review, ExportDir: exportDir, now: time.Now}
}

// Build summarises every application for the admin reports page.
func (s *ReportService) Build(ctx context.Context, snap session.Snapshot, months int) (*Report, error) {
	if months <= 0 {
		months = DefaultReportMonths
	}
	if months > 36 {
		return nil, apperrors.Validation("Reports cover at most 36 months")
	}

	apps, err := s.Review.ListAll(ctx, snap, ListFilters{})
	if err != nil {
		return nil, err
	}

	now := s.now()
	return &Report{
		Stats:       ComputeStats(apps),
		Monthly:     MonthlyCounts(apps, now, months),
		GeneratedAt: now,
	}, nil
}

// MonthlyCounts buckets apps by creation month over the last months
// months, oldest first. The current month is included.
func MonthlyCounts(apps []models.Application, now time.Time, months int) []MonthlyCount {
	start := utils.StartOfMonth(now).AddDate(0, -(months - 1), 0)

	counts := make([]MonthlyCount, months)
	index := make(map[string]int, months)
	for i := range counts {
		month := start.AddDate(0, i, 0)
		key := month.Format("2006-01")
		counts[i] = MonthlyCount{Month: key, Label: month.Format("Jan 2006")}
		index[key] = i
	}

	for _, app := range apps {
		i, ok := index[app.CreatedAt.In(utils.DateLocation).Format("2006-01")]
		if !ok {
			continue
		}
		switch app.ApplicationType {
		case models.EducationApplication:
			counts[i].Education++
		case models.HealthApplication:
			counts[i].Health++
		}
		counts[i].Total++
	}
	return counts
}

var exportHeaders = []string{
	"Reference", "Full Name", "Email", "Phone", "Type", "Status", "County", "Sub-County",
	"School", "Level", "Class/Year", "Household Size", "Monthly Income", "Requested Amount",
	"Submitted", "Reviewed", "Admin Comments",
}

// Export writes the filtered admin list to an .xlsx file in ExportDir and
// returns its file name.
func (s *ReportService) Export(ctx context.Context, snap session.Snapshot, filters ListFilters) (string, error) {
	apps, err := s.Review.ListAll(ctx, snap, filters)
	if err != nil {
		return "", err
	}

	rows := make([][]interface{}, 0, len(apps))
	for _, app := range apps {
		rows = append(rows, exportRow(app))
	}

	fileName, err := utils.GenerateExcel(s.ExportDir, "applications report", exportHeaders, rows, s.now().In(utils.DateLocation))
	if err != nil {
		return "", apperrors.Wrap(apperrors.KindPersistenceFailure, "Failed to generate report", err)
	}
	return fileName, nil
}

func exportRow(app models.Application) []interface{} {
	reviewed := ""
	if app.ReviewedAt != nil {
		reviewed = app.ReviewedAt.In(utils.DateLocation).Format("2006-01-02 15:04")
	}
	comments := ""
	if app.AdminComments != nil {
		comments = *app.AdminComments
	}

	return []interface{}{
		app.ReferenceID(),
		app.FullName,
		app.Email,
		app.Phone,
		humanize(string(app.ApplicationType)),
		StatusLabel(app.Status),
		app.County,
		app.SubCounty,
		app.SchoolName,
		app.SchoolLevel,
		app.ClassYear,
		app.HouseholdSize,
		formatAmount(app.MonthlyIncome),
		formatAmount(app.RequestedAmount),
		app.CreatedAt.In(utils.DateLocation).Format("2006-01-02 15:04"),
		reviewed,
		comments,
	}
}

func formatAmount(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.StringFixed(2)
}
