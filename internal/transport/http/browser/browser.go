// Package browser identifies browsers with a signed cookie.
package browser

import (
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
)

const (
	// CookieName is the name of the identity cookie.
	CookieName = "potholefix"
	// ContextKey is the echo context key holding the browser id.
	ContextKey = "browser_id"

	idValue = "browser_id"
)

// Identifier issues and reads browser ids.
type Identifier struct {
	store *sessions.CookieStore
}

// NewIdentifier creates an identifier signing cookies with secret.
func NewIdentifier(secret string, secure bool, maxAge time.Duration) *Identifier {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Identifier{store: store}
}

// Middleware puts the browser id into the echo context, issuing a new id
// when the request carries no valid cookie.
func (i *Identifier) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// A cookie that fails verification yields a fresh session.
			sess, _ := i.store.Get(c.Request(), CookieName)

			id, _ := sess.Values[idValue].(string)
			if _, err := uuid.Parse(id); err != nil {
				id = uuid.New().String()
				sess.Values[idValue] = id
				if err := sess.Save(c.Request(), c.Response()); err != nil {
					log.Printf("WARN: failed to issue browser cookie: %v", err)
				}
			}

			c.Set(ContextKey, id)
			return next(c)
		}
	}
}

// ID returns the browser id set by the middleware.
func ID(c echo.Context) string {
	id, _ := c.Get(ContextKey).(string)
	return id
}
