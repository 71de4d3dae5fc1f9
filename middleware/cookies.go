package middleware

import (
	"time"

	"bursary-portal-backend/config"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
	SessionCookie      = "portal_session"
)

func (app *AppContext) cookie(name, value string, expires time.Time) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     name,
		Value:    value,
		Expires:  expires,
		HTTPOnly: true,
		Secure:   app.Cookies.Secure,
		SameSite: "Lax",
		Path:     "/",
		Domain:   app.Cookies.Domain,
	}
}

// IssueTokens creates a fresh access/refresh pair for the user, records the
// refresh token and sets both cookies.
func IssueTokens(c *fiber.Ctx, app *AppContext, userID uuid.UUID, email string) error {
	accessToken, err := app.PasetoMaker.CreateToken(userID, email, app.Cookies.AccessTTL)
	if err != nil {
		config.Logger.Error("Could not generate access token", zap.String("user_id", userID.String()), zap.Error(err))
		return err
	}
	refreshToken, err := app.PasetoMaker.CreateToken(userID, email, app.Cookies.RefreshTTL)
	if err != nil {
		config.Logger.Error("Could not generate refresh token", zap.String("user_id", userID.String()), zap.Error(err))
		return err
	}
	if err := app.RefreshTokens.Save(c.UserContext(), refreshToken, userID.String(), app.Cookies.RefreshTTL); err != nil {
		config.Logger.Error("Error storing refresh token in Redis", zap.String("user_id", userID.String()), zap.Error(err))
		return err
	}

	now := time.Now()
	c.Cookie(app.cookie(AccessTokenCookie, accessToken, now.Add(app.Cookies.AccessTTL)))
	c.Cookie(app.cookie(RefreshTokenCookie, refreshToken, now.Add(app.Cookies.RefreshTTL)))
	return nil
}

// ClearAuthCookies expires both token cookies.
func ClearAuthCookies(c *fiber.Ctx, app *AppContext) {
	past := time.Now().Add(-time.Hour)
	c.Cookie(app.cookie(AccessTokenCookie, "", past))
	c.Cookie(app.cookie(RefreshTokenCookie, "", past))
}
