package controllers

import (
	"bursary-portal-backend/applications/services"
	"bursary-portal-backend/apperrors"
	"bursary-portal-backend/config"
	"bursary-portal-backend/middleware"
	"bursary-portal-backend/utils"
	"bursary-portal-backend/utils/pagination"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func listFilters(c *fiber.Ctx) services.ListFilters {
	return services.ListFilters{
		ApplicationType: c.Query("application_type"),
		Status:          c.Query("status"),
		SchoolName:      c.Query("school_name"),
		Query:           c.Query("q"),
	}
}

// GetAdminApplications lists every application matching the query filters
// together with stats over that list. Passing page switches to a paginated
// listing; stats still cover the whole filtered set.
func (ac *ApplicationController) GetAdminApplications(c *fiber.Ctx) error {
	snap := middleware.CurrentSession(c).Snapshot()

	apps, err := ac.Review.ListAll(c.UserContext(), snap, listFilters(c))
	if err != nil {
		return utils.RespondError(c, err)
	}

	data := fiber.Map{
		"applications": apps,
		"stats":        services.ComputeStats(apps),
	}

	if c.Query("page") != "" {
		params := pagination.ParsePaginationParams(c)
		if err := pagination.ValidatePaginationParams(params); err != nil {
			return utils.RespondError(c, apperrors.Validation("%s", err.Error()))
		}
		page := pagination.NewPaginatedResponse(c, pagination.Paginate(apps, params), int64(len(apps)), params)
		data["applications"] = page.Items
		data["pagination"] = page.Pagination
	}

	return utils.RespondSuccess(c, fiber.StatusOK, "Applications fetched successfully", data)
}

func (ac *ApplicationController) UpdateApplicationStatus(c *fiber.Ctx) error {
	type StatusRequest struct {
		Status        string  `json:"status"`
		AdminComments *string `json:"admin_comments"`
	}

	var req StatusRequest
	if err := c.BodyParser(&req); err != nil {
		config.Logger.Error("Error parsing status update body", zap.Error(err))
		return utils.RespondError(c, apperrors.Validation("Invalid request format"))
	}

	snap := middleware.CurrentSession(c).Snapshot()
	result, err := ac.Review.SetStatus(c.UserContext(), snap, c.Params("id"), req.Status, req.AdminComments)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return utils.RespondSuccess(c, fiber.StatusOK, "Application status updated", result)
}
