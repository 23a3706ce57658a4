// Package router builds the gin engine and its route table.
package router

import (
	"html/template"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	authhandler "helpdesk/internal/feature/auth/transport/handler"
	tickethandler "helpdesk/internal/feature/ticket/transport/handler"
	platformhandler "helpdesk/internal/platform/http/handler"
	jwtmw "helpdesk/internal/platform/jwt"
)

// Handlers groups the route handlers.
type Handlers struct {
	Auth     *authhandler.AuthHandler
	Tickets  *tickethandler.TicketHandler
	Messages *tickethandler.MessageHandler
	Health   *platformhandler.HealthHandler
}

// Options configures the engine.
type Options struct {
	Mode               string
	Authenticator      jwtmw.Authenticator
	Cookie             jwtmw.CookieOptions
	Templates          *template.Template
	CORSOrigins        []string
	MaxMultipartMemory int64
}

func NewRouter(h Handlers, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if opts.Mode == gin.DebugMode {
		r.Use(gin.Logger())
	} else {
		r.Use(RequestLogger())
	}
	if len(opts.CORSOrigins) > 0 {
		cfg := cors.DefaultConfig()
		cfg.AllowOrigins = opts.CORSOrigins
		cfg.AllowCredentials = true
		r.Use(cors.New(cfg))
	}
	if opts.MaxMultipartMemory > 0 {
		r.MaxMultipartMemory = opts.MaxMultipartMemory
	}
	r.SetHTMLTemplate(opts.Templates)

	// ログイン状態をすべてのページで参照できるようにする
	r.Use(jwtmw.LoadSession(opts.Authenticator, opts.Cookie))

	// 認証不要
	// 導通確認用
	r.GET("/healthz", h.Health.Health)
	r.HEAD("/healthz", h.Health.Health)
	r.OPTIONS("/healthz", h.Health.Health)
	// トップページ
	r.GET("/", platformhandler.Index)
	r.POST("/", platformhandler.Index)
	// ログイン
	r.GET("/login", h.Auth.LoginPage)
	r.POST("/login", h.Auth.Login)
	// 新規ユーザー登録
	r.GET("/registro", h.Auth.RegisterPage)
	r.POST("/registro", h.Auth.Register)

	// 認証必須のルート
	// 未ログインの場合は /login?next=... へリダイレクト
	auth := r.Group("/")
	auth.Use(jwtmw.AuthRequired(opts.Authenticator, opts.Cookie))
	{
		auth.GET("/logout", h.Auth.Logout)
		auth.GET("/criar_chamado", h.Tickets.NewTicketPage)
		auth.POST("/criar_chamado", h.Tickets.Create)
		auth.GET("/meus_chamados", h.Tickets.List)
		auth.POST("/deletar_chamado/:id", h.Tickets.Delete)
		auth.GET("/uploads/:name", h.Tickets.Download)
		auth.GET("/chamado/:id/mensagens", h.Messages.Thread)
		auth.POST("/chamado/:id/enviar_mensagem", h.Messages.Send)
	}

	r.NoRoute(platformhandler.NotFound)
	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		c.String(http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
	})

	return r
}
