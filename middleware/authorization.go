package middleware

import (
	"errors"

	"bursary-portal-backend/apperrors"
	"bursary-portal-backend/config"
	"bursary-portal-backend/token"
	"bursary-portal-backend/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const userLocal = "user"

// tokenPayload returns the caller's verified token payload, rotating the
// refresh token when the access token is missing or expired. A nil payload
// means the caller is anonymous.
func tokenPayload(c *fiber.Ctx, app *AppContext) (*token.Payload, error) {
	if accessToken := c.Cookies(AccessTokenCookie); accessToken != "" {
		payload, err := app.PasetoMaker.VerifyToken(accessToken)
		if err == nil {
			return payload, nil
		}
		config.Logger.Debug("Invalid access token encountered", zap.Error(err))
	}

	refreshToken := c.Cookies(RefreshTokenCookie)
	if refreshToken == "" {
		return nil, nil
	}
	refreshPayload, err := app.PasetoMaker.VerifyToken(refreshToken)
	if err != nil {
		config.Logger.Debug("Invalid refresh token", zap.Error(err))
		return nil, nil
	}

	// Single use: the stored token is removed as it is read.
	userID, err := app.RefreshTokens.Consume(c.UserContext(), refreshToken)
	if errors.Is(err, token.ErrRefreshTokenUnknown) {
		config.Logger.Warn("Refresh token not found in Redis",
			zap.String("payload_id", refreshPayload.ID.String()),
			zap.String("user_id", refreshPayload.UserID.String()))
		return nil, nil
	}
	if err != nil {
		config.Logger.Error("Error accessing Redis for refresh token validation", zap.Error(err))
		return nil, err
	}
	if userID != refreshPayload.UserID.String() {
		config.Logger.Warn("Refresh token owner mismatch", zap.String("user_id", userID))
		return nil, nil
	}

	if err := IssueTokens(c, app, refreshPayload.UserID, refreshPayload.Email); err != nil {
		return nil, err
	}
	return refreshPayload, nil
}

// Identify keeps the request's Session in step with the auth cookies. It
// never rejects a request; see RequireAuth and RequireAdmin for that.
func Identify(app *AppContext) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := CurrentSession(c)

		payload, err := tokenPayload(c, app)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Something went wrong",
				"error":   "An internal server error occurred.",
			})
		}
		if payload == nil {
			app.SignOut(sess)
			return c.Next()
		}
		c.Locals(userLocal, payload)

		if current := sess.Principal(); current != nil && current.ID == payload.UserID {
			return c.Next()
		}

		principal, err := app.Gateway.GetPrincipal(c.UserContext(), payload.UserID)
		if apperrors.Is(err, apperrors.KindAuthRequired) {
			ClearAuthCookies(c, app)
			app.SignOut(sess)
			return c.Next()
		}
		if err != nil {
			return utils.RespondError(c, err)
		}

		isAdmin, err := app.Gateway.IsAdmin(c.UserContext(), principal.ID)
		if err != nil {
			isAdmin = false
		}
		app.SwitchPrincipal(sess, principal, isAdmin)
		return c.Next()
	}
}

// RequireAuth rejects anonymous sessions.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if CurrentSession(c).Principal() == nil {
			return utils.RespondError(c, apperrors.AuthRequired("Please sign in to continue"))
		}
		return c.Next()
	}
}

// RequireAdmin re-checks the allow-list on every request so a revoked
// admin loses access immediately.
func RequireAdmin(app *AppContext) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := CurrentSession(c)
		principal := sess.Principal()
		if principal == nil {
			return utils.RespondError(c, apperrors.AuthRequired("Please sign in to continue"))
		}

		isAdmin, err := app.Gateway.IsAdmin(c.UserContext(), principal.ID)
		if err != nil {
			return utils.RespondError(c, err)
		}
		sess.SetIdentity(principal, isAdmin)
		if !isAdmin {
			config.Logger.Warn("Non-admin tried an admin route",
				zap.String("user_id", principal.ID.String()), zap.String("path", c.Path()))
			return utils.RespondError(c, apperrors.AccessDenied("Admin access is required"))
		}
		return c.Next()
	}
}
