// Package handler は ticket フィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"helpdesk/internal/feature/ticket/usecase"
	jwtmw "helpdesk/internal/platform/jwt"
	"helpdesk/internal/platform/web"
)

// parseID reads the :id path parameter. Anything but a positive integer
// is answered with 404.
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		web.RenderError(c, http.StatusNotFound, "Chamado não encontrado.")
		return 0, false
	}
	return uint(id), true
}

// currentUser returns the authenticated user id set by AuthRequired.
func currentUser(c *gin.Context) (uint, bool) {
	id, ok := jwtmw.UserID(c)
	if !ok {
		c.Redirect(http.StatusFound, jwtmw.LoginPath)
		c.Abort()
	}
	return id, ok
}

// renderAccessError turns NotFound and Forbidden into hard error pages.
// It reports whether err was handled.
func renderAccessError(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, usecase.ErrTicketNotFound):
		web.RenderError(c, http.StatusNotFound, "Chamado não encontrado.")
	case errors.Is(err, usecase.ErrForbidden):
		web.RenderError(c, http.StatusForbidden, "Você não tem permissão para acessar este chamado.")
	default:
		return false
	}
	return true
}
