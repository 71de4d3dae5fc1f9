package middleware

import (
	"time"

	"bursary-portal-backend/session"

	"github.com/gofiber/fiber/v2"
)

const sessionLocal = "session"

// SessionMiddleware attaches the browser's Session to the request,
// starting one when the cookie is missing or unknown.
func SessionMiddleware(app *AppContext) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, created := app.Sessions.GetOrCreate(c.Cookies(SessionCookie))
		sess.Touch(time.Now())
		if created {
			cookie := app.cookie(SessionCookie, sess.ID, time.Time{})
			cookie.SessionOnly = true
			c.Cookie(cookie)
		}
		c.Locals(sessionLocal, sess)
		return c.Next()
	}
}

// CurrentSession returns the request's Session. It panics when
// SessionMiddleware did not run.
func CurrentSession(c *fiber.Ctx) *session.Session {
	return c.Locals(sessionLocal).(*session.Session)
}
