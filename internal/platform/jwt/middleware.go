package jwtmw

import (
	"context"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"helpdesk/internal/feature/auth/domain/entity"
)

// Context keys set by the auth middlewares.
const (
	ContextUserID    = "userID"
	ContextUserEmail = "userEmail"
	ContextSession   = "session"
)

// LoginPath is where unauthenticated requests are redirected.
const LoginPath = "/login"

// Authenticator resolves a session cookie value to a live session.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*entity.Session, error)
}

// CookieOptions describes the session cookie.
type CookieOptions struct {
	Name   string
	Secure bool
	MaxAge int // seconds
}

// SetSessionCookie writes the HttpOnly, SameSite=Lax session cookie.
func SetSessionCookie(c *gin.Context, opts CookieOptions, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(opts.Name, token, opts.MaxAge, "/", "", opts.Secure, true)
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(c *gin.Context, opts CookieOptions) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(opts.Name, "", -1, "/", "", opts.Secure, true)
}

// LoadSession authenticates the request when a valid cookie is present but
// never blocks it. Public pages use it to know who is logged in.
func LoadSession(auth Authenticator, opts CookieOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		authenticate(c, auth, opts)
		c.Next()
	}
}

// AuthRequired redirects unauthenticated requests to the login page,
// remembering the original path in ?next= for GET requests.
func AuthRequired(auth Authenticator, opts CookieOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentSession(c); ok || authenticate(c, auth, opts) {
			c.Next()
			return
		}

		target := LoginPath
		if c.Request.Method == http.MethodGet {
			target += "?next=" + url.QueryEscape(c.Request.URL.RequestURI())
		}
		c.Redirect(http.StatusFound, target)
		c.Abort()
	}
}

// authenticate populates the context from the cookie. A stale cookie is cleared.
func authenticate(c *gin.Context, auth Authenticator, opts CookieOptions) bool {
	token, err := c.Cookie(opts.Name)
	if err != nil || token == "" {
		return false
	}
	session, err := auth.Authenticate(c.Request.Context(), token)
	if err != nil {
		ClearSessionCookie(c, opts)
		return false
	}
	c.Set(ContextSession, session)
	c.Set(ContextUserID, session.UserID)
	c.Set(ContextUserEmail, session.Email)
	return true
}

// CurrentSession returns the session attached by LoadSession or AuthRequired.
func CurrentSession(c *gin.Context) (*entity.Session, bool) {
	v, ok := c.Get(ContextSession)
	if !ok {
		return nil, false
	}
	s, ok := v.(*entity.Session)
	return s, ok
}

// UserID returns the authenticated user's ID.
func UserID(c *gin.Context) (uint, bool) {
	id := c.GetUint(ContextUserID)
	return id, id != 0
}
