package controllers

import (
	"net/url"

	"bursary-portal-backend/apperrors"
	"bursary-portal-backend/utils"
	"bursary-portal-backend/wizard"

	"github.com/gofiber/fiber/v2"
)

func (ac *ApplicationController) GetCounties(c *fiber.Ctx) error {
	return utils.RespondSuccess(c, fiber.StatusOK, "Counties retrieved successfully", wizard.Counties())
}

func (ac *ApplicationController) GetSubCounties(c *fiber.Ctx) error {
	county, err := url.PathUnescape(c.Params("county"))
	if err != nil {
		county = c.Params("county")
	}

	subCounties, ok := wizard.SubCounties(county)
	if !ok {
		return utils.RespondError(c, apperrors.NotFound("Unknown county"))
	}
	return utils.RespondSuccess(c, fiber.StatusOK, "Sub-counties retrieved successfully", subCounties)
}
