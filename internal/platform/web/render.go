// Package web renders the server-side HTML pages.
package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	jwtmw "helpdesk/internal/platform/jwt"
)

// Render writes the named template. Every page receives the pending
// flashes as .Flashes and the logged-in user's email as .CurrentUser.
func Render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if _, ok := data["Title"]; !ok {
		data["Title"] = ""
	}
	data["Flashes"] = PopFlashes(c)
	if s, ok := jwtmw.CurrentSession(c); ok {
		data["CurrentUser"] = s.Email
	}
	c.HTML(status, name, data)
}

// RenderError renders the error page with the given status and aborts.
func RenderError(c *gin.Context, status int, message string) {
	if message == "" {
		message = http.StatusText(status)
	}
	Render(c, status, "error.html", gin.H{
		"Status":     status,
		"StatusText": http.StatusText(status),
		"Message":    message,
	})
	c.Abort()
}

// Redirect issues a 302 to location. Pending flashes stay in the cookie.
func Redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusFound, location)
}
