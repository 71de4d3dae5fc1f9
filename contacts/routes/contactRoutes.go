package routes

import (
	"bursary-portal-backend/contacts/controllers"

	"github.com/gofiber/fiber/v2"
)

func ContactRouterInit(app *fiber.App, contactController *controllers.ContactController, limiter fiber.Handler) {
	contactRoutes := app.Group("/api/v1")
	contactRoutes.Post("/contact", limiter, contactController.SubmitContact)
}
