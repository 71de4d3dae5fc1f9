package middleware

import (
	"time"

	"bursary-portal-backend/config"
	"bursary-portal-backend/db/models"
	"bursary-portal-backend/gateway"
	"bursary-portal-backend/session"
	"bursary-portal-backend/token"
)

type CookieSettings struct {
	Domain     string
	Secure     bool
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func CookieSettingsFrom(settings config.Settings) CookieSettings {
	return CookieSettings{
		Domain:     settings.CookieDomain,
		Secure:     settings.CookieSecure,
		AccessTTL:  settings.AccessTokenDuration,
		RefreshTTL: settings.RefreshTokenDuration,
	}
}

// AppContext bundles all dependencies
type AppContext struct {
	PasetoMaker   token.Maker
	RefreshTokens token.RefreshStore
	Gateway       *gateway.Gateway
	Sessions      *session.Registry
	Cookies       CookieSettings
	// OnSignOut runs when a session's principal is cleared or replaced.
	OnSignOut func(*session.Session)
}

// SignOut clears the session's principal.
func (app *AppContext) SignOut(sess *session.Session) {
	signedIn := sess.Principal() != nil
	sess.Clear()
	if signedIn {
		app.releaseSession(sess)
	}
}

// SwitchPrincipal puts principal on sess, releasing whatever the previous
// principal left behind.
func (app *AppContext) SwitchPrincipal(sess *session.Session, principal *models.Principal, isAdmin bool) {
	if current := sess.Principal(); current != nil && current.ID != principal.ID {
		app.releaseSession(sess)
	}
	sess.SetIdentity(principal, isAdmin)
}

func (app *AppContext) releaseSession(sess *session.Session) {
	if app.OnSignOut != nil {
		app.OnSignOut(sess)
	}
}
