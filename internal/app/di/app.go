// Package di wires repositories, usecases and handlers into the router.
package di

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"helpdesk/internal/app/router"
	authadapters "helpdesk/internal/feature/auth/adapters"
	authhandler "helpdesk/internal/feature/auth/transport/handler"
	authusecase "helpdesk/internal/feature/auth/usecase"
	ticketadapters "helpdesk/internal/feature/ticket/adapters"
	tickethandler "helpdesk/internal/feature/ticket/transport/handler"
	ticketusecase "helpdesk/internal/feature/ticket/usecase"
	"helpdesk/internal/platform/config"
	platformhandler "helpdesk/internal/platform/http/handler"
	jwtmw "helpdesk/internal/platform/jwt"
	"helpdesk/internal/platform/markdown"
	"helpdesk/internal/platform/upload"
	"helpdesk/internal/platform/web"
	"helpdesk/internal/shared/ratelimiter"
)

// NewApp builds the HTTP handler tree. rdb may be nil, in which case
// sessions are kept in the database. The upload directory is created here.
func NewApp(cfg *config.Config, db *gorm.DB, rdb *redis.Client) (*gin.Engine, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	files := upload.NewStore(cfg.Upload)
	if err := files.EnsureDir(); err != nil {
		return nil, err
	}

	tmpl, err := web.LoadTemplates(web.FuncMap(markdown.NewRenderer().HTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	// Repository
	userRepo := authadapters.NewUserGorm(db)
	sessionRepo := NewSessionRepository(rdb, db)
	ticketRepo := ticketadapters.NewTicketGorm(db)
	messageRepo := ticketadapters.NewMessageGorm(db)

	// Usecase
	tokens := jwtmw.NewGenerator(cfg.Auth.SessionSecret, cfg.Auth.SessionTTL)
	authUC := authusecase.NewAuthUsecase(userRepo, sessionRepo, tokens, authusecase.Options{
		BcryptCost: cfg.Auth.BcryptCost,
		SessionTTL: cfg.Auth.SessionTTL,
	})
	ticketUC := ticketusecase.NewTicketUsecase(ticketRepo, files)
	messageUC := ticketusecase.NewMessageUsecase(ticketRepo, messageRepo)

	// Handler
	cookie := jwtmw.CookieOptions{
		Name:   cfg.Auth.CookieName,
		Secure: cfg.Auth.CookieSecure,
		MaxAge: int(cfg.Auth.SessionTTL.Seconds()),
	}
	authH := authhandler.NewAuthHandler(authUC, cookie)
	if n := cfg.Auth.LoginAttemptsPerMinute; n > 0 {
		authH.WithLoginLimiter(ratelimiter.NewRateLimiter(n, time.Minute))
	}
	handlers := router.Handlers{
		Auth:     authH,
		Tickets:  tickethandler.NewTicketHandler(ticketUC, cfg.Upload.AllowedExtensions, cfg.Upload.MaxBytes),
		Messages: tickethandler.NewMessageHandler(messageUC),
		Health:   platformhandler.NewHealthHandler(sqlDB),
	}

	return router.NewRouter(handlers, router.Options{
		Mode:               cfg.Server.Mode,
		Authenticator:      authUC,
		Cookie:             cookie,
		Templates:          tmpl,
		CORSOrigins:        cfg.Server.CORSOrigins,
		MaxMultipartMemory: cfg.Upload.MaxBytes,
	}), nil
}
