package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"helpdesk/internal/platform/web"
)

// Index はトップページを表示します。
func Index(c *gin.Context) {
	web.Render(c, http.StatusOK, "index.html", gin.H{"Title": "Início"})
}

// NotFound renders the 404 page for unknown routes.
func NotFound(c *gin.Context) {
	web.RenderError(c, http.StatusNotFound, "Página não encontrada.")
}
