package web

import (
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// FlashCookieName is the cookie carrying notifications across a redirect.
const FlashCookieName = "chamados_flash"

// flashContextKey holds flashes added during the current request.
const flashContextKey = "web.flashes"

// Flash categories.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash is a one-shot notification shown on the next rendered page.
type Flash struct {
	Category string `json:"c"`
	Message  string `json:"m"`
}

// AddFlash queues a notification for the next rendered page, whether that
// is the current response or the one after a redirect.
func AddFlash(c *gin.Context, category, message string) {
	pending := pendingFlashes(c)
	pending = append(pending, Flash{Category: category, Message: message})
	c.Set(flashContextKey, pending)

	raw, err := json.Marshal(pending)
	if err != nil {
		slog.Warn("failed to encode flash", "error", err)
		return
	}
	setFlashCookie(c, base64.RawURLEncoding.EncodeToString(raw), 0)
}

// PopFlashes returns the queued notifications and clears the cookie.
func PopFlashes(c *gin.Context) []Flash {
	flashes := pendingFlashes(c)
	if len(flashes) == 0 {
		if _, err := c.Cookie(FlashCookieName); err != nil {
			return nil
		}
	}
	c.Set(flashContextKey, []Flash(nil))
	setFlashCookie(c, "", -1)
	return flashes
}

// pendingFlashes returns flashes added in this request, or those decoded
// from the incoming cookie when none were added yet.
func pendingFlashes(c *gin.Context) []Flash {
	if v, ok := c.Get(flashContextKey); ok {
		flashes, _ := v.([]Flash)
		return flashes
	}
	var flashes []Flash
	if raw, err := c.Cookie(FlashCookieName); err == nil && raw != "" {
		b, err := base64.RawURLEncoding.DecodeString(raw)
		if err == nil {
			err = json.Unmarshal(b, &flashes)
		}
		if err != nil {
			slog.Debug("discarding malformed flash cookie", "error", err)
			flashes = nil
		}
	}
	c.Set(flashContextKey, flashes)
	return flashes
}

func setFlashCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(FlashCookieName, value, maxAge, "/", "", false, true)
}
