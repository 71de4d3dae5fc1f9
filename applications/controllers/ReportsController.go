package controllers

import (
	"path"

	"bursary-portal-backend/middleware"
	"bursary-portal-backend/utils"

	"github.com/gofiber/fiber/v2"
)

func (ac *ApplicationController) GetReports(c *fiber.Ctx) error {
	snap := middleware.CurrentSession(c).Snapshot()

	report, err := ac.Reports.Build(c.UserContext(), snap, c.QueryInt("months", 0))
	if err != nil {
		return utils.RespondError(c, err)
	}
	return utils.RespondSuccess(c, fiber.StatusOK, "Report generated successfully", report)
}

// ExportReport writes the filtered list to a spreadsheet and returns where
// to download it. Files are removed by the daily cleanup.
func (ac *ApplicationController) ExportReport(c *fiber.Ctx) error {
	snap := middleware.CurrentSession(c).Snapshot()

	fileName, err := ac.Reports.Export(c.UserContext(), snap, listFilters(c))
	if err != nil {
		return utils.RespondError(c, err)
	}

	return utils.RespondSuccess(c, fiber.StatusOK, "Report exported successfully", fiber.Map{
		"file_name": fileName,
		"download":  utils.GetDownloadURL(c, path.Join(ac.ExportPath, fileName)),
	})
}
