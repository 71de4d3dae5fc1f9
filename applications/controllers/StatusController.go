package controllers

import (
	"bursary-portal-backend/applications/services"
	"bursary-portal-backend/middleware"
	"bursary-portal-backend/utils"

	"github.com/gofiber/fiber/v2"
)

// GetMyApplications lists the caller's applications with their derived
// progress and history.
func (ac *ApplicationController) GetMyApplications(c *fiber.Ctx) error {
	apps, err := ac.Status.ListOwn(c.UserContext(), middleware.CurrentSession(c).Principal())
	if err != nil {
		return utils.RespondError(c, err)
	}

	tracked := make([]*services.TrackedApplication, 0, len(apps))
	for i := range apps {
		t, err := services.Describe(&apps[i])
		if err != nil {
			return utils.RespondError(c, err)
		}
		tracked = append(tracked, t)
	}
	return utils.RespondSuccess(c, fiber.StatusOK, "Applications retrieved successfully", tracked)
}

func (ac *ApplicationController) TrackApplication(c *fiber.Ctx) error {
	tracked, err := ac.Status.Track(c.UserContext(), middleware.CurrentSession(c).Principal(), c.Params("reference"))
	if err != nil {
		return utils.RespondError(c, err)
	}
	return utils.RespondSuccess(c, fiber.StatusOK, "Application found", tracked)
}
