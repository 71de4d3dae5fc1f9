package routes

import (
	controllers "bursary-portal-backend/applications/controllers"
	"bursary-portal-backend/middleware"

	"github.com/gofiber/fiber/v2"
)

// ApplicationRouterInit expects SessionMiddleware and Identify to run
// before these routes.
func ApplicationRouterInit(
	app *fiber.App,
	applicationController *controllers.ApplicationController,
	appCtx *middleware.AppContext,
	wsHandler fiber.Handler,
) {
	api := app.Group("/api/v1")

	// Location catalogue
	api.Get("/locations/counties", applicationController.GetCounties)
	api.Get("/locations/counties/:county/sub-counties", applicationController.GetSubCounties)

	// Draft wizard, open to anonymous sessions
	apply := api.Group("/apply")
	apply.Get("/draft", applicationController.GetDraft)
	apply.Patch("/draft/fields", applicationController.UpdateDraftFields)
	apply.Post("/draft/next", applicationController.NextStep)
	apply.Post("/draft/previous", applicationController.PreviousStep)
	apply.Put("/draft/documents/:type", applicationController.AttachDocument)
	apply.Delete("/draft/documents/:type", applicationController.DetachDocument)
	apply.Post("/submit", applicationController.Submit)
	apply.Get("/submission", applicationController.GetSubmission)
	apply.Post("/reset", applicationController.ResetDraft)

	// Applicant status
	mine := api.Group("/applications", middleware.RequireAuth())
	mine.Get("/mine", applicationController.GetMyApplications)
	mine.Get("/track/:reference", applicationController.TrackApplication)

	// Reviewers
	admin := api.Group("/admin", middleware.RequireAdmin(appCtx))
	admin.Get("/applications", applicationController.GetAdminApplications)
	admin.Patch("/applications/:id/status", applicationController.UpdateApplicationStatus)
	admin.Get("/reports", applicationController.GetReports)
	admin.Get("/reports/export", applicationController.ExportReport)

	if wsHandler != nil {
		api.Get("/ws/admin", middleware.RequireAdmin(appCtx), wsHandler)
	}
}
