package routes

import (
	"bursary-portal-backend/users/controllers"

	"github.com/gofiber/fiber/v2"
)

func AuthRouterInit(app *fiber.App, authController *controllers.AuthController, limiter fiber.Handler) {
	authRoutes := app.Group("/api/v1/auth")

	authRoutes.Post("/signup", limiter, authController.SignUp)
	authRoutes.Post("/login", limiter, authController.Login)
	authRoutes.Post("/logout", authController.Logout)
	authRoutes.Get("/me", authController.Me)
}
