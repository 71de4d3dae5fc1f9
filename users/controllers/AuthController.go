package controllers

import (
	"context"
	"strings"
	"time"

	appservices "bursary-portal-backend/applications/services"
	"bursary-portal-backend/apperrors"
	"bursary-portal-backend/config"
	"bursary-portal-backend/db/models"
	"bursary-portal-backend/gateway"
	"bursary-portal-backend/middleware"
	"bursary-portal-backend/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AuthController struct {
	App         *middleware.AppContext
	Submissions *appservices.SubmissionService
	// WaitTimeout bounds how long sign-in waits for a resumed submission.
	WaitTimeout time.Duration
}

func (ac *AuthController) SignUp(c *fiber.Ctx) error {
	var req gateway.SignUpRequest
	if err := c.BodyParser(&req); err != nil {
		config.Logger.Error("Error parsing sign-up request body", zap.Error(err))
		return utils.RespondError(c, apperrors.Validation("Invalid request format"))
	}

	principal, err := ac.App.Gateway.SignUp(c.UserContext(), req)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return ac.completeSignIn(c, principal, fiber.StatusCreated, "Account created successfully")
}

func (ac *AuthController) Login(c *fiber.Ctx) error {
	type LoginRequest struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		config.Logger.Error("Error parsing login request body", zap.Error(err))
		return utils.RespondError(c, apperrors.Validation("Invalid request format"))
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return utils.RespondError(c, apperrors.Validation("Email and password are required"))
	}

	principal, err := ac.App.Gateway.SignIn(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return ac.completeSignIn(c, principal, fiber.StatusOK, "Login successful")
}

// completeSignIn issues tokens and puts principal on the session. A
// submission parked on the session resumes; the response carries its
// outcome when it finishes in time.
func (ac *AuthController) completeSignIn(c *fiber.Ctx, principal *models.Principal, status int, message string) error {
	if err := middleware.IssueTokens(c, ac.App, principal.ID, principal.Email); err != nil {
		return utils.RespondError(c, apperrors.Wrap(apperrors.KindPersistenceFailure, "Failed to start session", err))
	}

	isAdmin, err := ac.App.Gateway.IsAdmin(c.UserContext(), principal.ID)
	if err != nil {
		isAdmin = false
	}

	sess := middleware.CurrentSession(c)
	pending := ac.Submissions.Outcome(sess.ID).State == appservices.StateAwaitingAuth
	ac.App.SwitchPrincipal(sess, principal, isAdmin)

	config.Logger.Info("User signed in",
		zap.String("user_id", principal.ID.String()),
		zap.Bool("is_admin", isAdmin),
		zap.Bool("resuming_submission", pending))

	data := fiber.Map{"user": principal, "is_admin": isAdmin}
	if pending {
		ctx, cancel := context.WithTimeout(c.UserContext(), ac.waitTimeout())
		_, _ = ac.Submissions.Wait(ctx, sess.ID)
		cancel()
		data["submission"] = ac.Submissions.OutcomeFor(sess)
	}
	return utils.RespondSuccess(c, status, message, data)
}

func (ac *AuthController) waitTimeout() time.Duration {
	if ac.WaitTimeout > 0 {
		return ac.WaitTimeout
	}
	return gateway.DefaultTimeout
}

func (ac *AuthController) Logout(c *fiber.Ctx) error {
	if refreshToken := c.Cookies(middleware.RefreshTokenCookie); refreshToken != "" {
		if err := ac.App.RefreshTokens.Delete(c.UserContext(), refreshToken); err != nil {
			config.Logger.Error("Failed to delete refresh token from Redis during logout", zap.Error(err))
		}
	}
	middleware.ClearAuthCookies(c, ac.App)
	ac.App.SignOut(middleware.CurrentSession(c))

	config.Logger.Info("User logged out successfully", zap.String("client_ip", c.IP()))
	return utils.RespondSuccess(c, fiber.StatusOK, "Logged out successfully", nil)
}

func (ac *AuthController) Me(c *fiber.Ctx) error {
	sess := middleware.CurrentSession(c)
	snap := sess.Snapshot()
	if !snap.SignedIn() {
		return utils.RespondError(c, apperrors.AuthRequired("Please sign in to continue"))
	}
	return utils.RespondSuccess(c, fiber.StatusOK, "Current user", fiber.Map{
		"user":       snap.Principal,
		"is_admin":   snap.IsAdmin,
		"submission": ac.Submissions.OutcomeFor(sess),
	})
}
