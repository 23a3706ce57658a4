// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"helpdesk/internal/feature/auth/domain/entity"
	"helpdesk/internal/feature/auth/transport/http/dto"
	"helpdesk/internal/feature/auth/usecase"
	jwtmw "helpdesk/internal/platform/jwt"
	"helpdesk/internal/platform/web"
)

// Flash messages shown to the user.
const (
	msgLoginOK        = "Login realizado com sucesso!"
	msgLoginFailed    = "Credenciais incorretas!!! Favor tentar novamente."
	msgFillAllFields  = "Por favor, preencha todos os campos."
	msgEmailTaken     = "Já existe uma conta com este email. Por favor, faça login."
	msgRegisterOK     = "Registro realizado com sucesso! Faça login para continuar."
	msgRegisterFailed = "Erro ao registrar. Tente novamente."
	msgLogoutOK       = "Logout realizado com sucesso!"
	msgInternalError  = "Erro interno. Tente novamente mais tarde."
	msgTooManyLogins  = "Muitas tentativas de login. Aguarde um minuto e tente novamente."
)

// AuthUsecase は認証操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AuthUsecase interface {
	// Register は指定されたメールアドレスとパスワードで新規ユーザーを登録します。
	Register(ctx context.Context, email, password string) (*entity.User, error)
	// Login はユーザーを認証し、成功時にセッションクッキーの値を返します。
	Login(ctx context.Context, email, password string, client usecase.ClientInfo) (string, error)
	// Logout はセッションを失効させます。
	Logout(ctx context.Context, sessionID string) error
}

// LoginLimiter throttles login attempts per client address.
type LoginLimiter interface {
	Allow(key string) bool
}

// AuthHandler は認証操作のHTTPリクエストを処理します。
// フォームを受け取り、HTMLページの描画またはリダイレクトで応答します。
type AuthHandler struct {
	auth    AuthUsecase
	cookie  jwtmw.CookieOptions
	limiter LoginLimiter
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
func NewAuthHandler(auth AuthUsecase, cookie jwtmw.CookieOptions) *AuthHandler {
	return &AuthHandler{auth: auth, cookie: cookie}
}

// WithLoginLimiter enables login throttling. A nil limiter disables it.
func (h *AuthHandler) WithLoginLimiter(l LoginLimiter) *AuthHandler {
	h.limiter = l
	return h
}

// LoginPage はログインフォームを表示します。
func (h *AuthHandler) LoginPage(c *gin.Context) {
	web.Render(c, http.StatusOK, "login.html", gin.H{
		"Title": "Entrar",
		"Next":  c.Query("next"),
		"Email": "",
	})
}

// Login はログインフォームを処理します。
// - 入力不足時は400でフォームを再表示
// - 認証失敗時は401で汎用メッセージとともにフォームを再表示
// - 試行回数の上限を超えた場合は429でフォームを再表示
// - 成功時はセッションクッキーを設定し next または / にリダイレクト
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if err := c.ShouldBind(&req); err != nil {
		slog.Warn("login validation failed", "error", err, "remote_addr", c.ClientIP())
		web.AddFlash(c, web.FlashError, msgFillAllFields)
		h.renderLogin(c, http.StatusBadRequest, req)
		return
	}

	if h.limiter != nil && !h.limiter.Allow(c.ClientIP()) {
		slog.Warn("login rate limited", "email", req.Email, "remote_addr", c.ClientIP())
		web.AddFlash(c, web.FlashError, msgTooManyLogins)
		h.renderLogin(c, http.StatusTooManyRequests, req)
		return
	}

	token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password, usecase.ClientInfo{
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidCredentials) {
			// ユーザー列挙攻撃を防止するため、実際のエラーを公開しない
			slog.Warn("login failed", "error", err, "email", req.Email, "remote_addr", c.ClientIP())
			web.AddFlash(c, web.FlashError, msgLoginFailed)
			h.renderLogin(c, http.StatusUnauthorized, req)
			return
		}
		slog.Error("login error", "error", err, "remote_addr", c.ClientIP())
		web.AddFlash(c, web.FlashError, msgInternalError)
		h.renderLogin(c, http.StatusInternalServerError, req)
		return
	}

	jwtmw.SetSessionCookie(c, h.cookie, token)
	slog.Info("user login successful", "email", req.Email, "remote_addr", c.ClientIP())
	web.AddFlash(c, web.FlashSuccess, msgLoginOK)
	web.Redirect(c, SafeRedirect(req.Next))
}

func (h *AuthHandler) renderLogin(c *gin.Context, status int, req dto.LoginReq) {
	web.Render(c, status, "login.html", gin.H{
		"Title": "Entrar",
		"Next":  req.Next,
		"Email": req.Email,
	})
}

// RegisterPage は登録フォームを表示します。
func (h *AuthHandler) RegisterPage(c *gin.Context) {
	web.Render(c, http.StatusOK, "registro.html", gin.H{"Title": "Criar conta"})
}

// Register はユーザー登録フォームを処理します。
// 既存のメールアドレスの場合はログイン画面へ誘導します。
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterReq
	if err := c.ShouldBind(&req); err != nil {
		slog.Warn("register validation failed", "error", err, "remote_addr", c.ClientIP())
		web.AddFlash(c, web.FlashError, msgFillAllFields)
		web.Redirect(c, "/registro")
		return
	}

	if _, err := h.auth.Register(c.Request.Context(), req.Email, req.Password); err != nil {
		switch {
		case errors.Is(err, usecase.ErrEmailAlreadyExists):
			slog.Warn("register with existing email", "email", req.Email, "remote_addr", c.ClientIP())
			web.AddFlash(c, web.FlashError, msgEmailTaken)
			web.Redirect(c, jwtmw.LoginPath)
		case errors.Is(err, usecase.ErrValidation):
			web.AddFlash(c, web.FlashError, msgFillAllFields)
			web.Redirect(c, "/registro")
		default:
			slog.Error("register failed", "error", err, "remote_addr", c.ClientIP())
			web.AddFlash(c, web.FlashError, msgRegisterFailed)
			web.Redirect(c, "/registro")
		}
		return
	}

	slog.Info("user registered", "email", req.Email, "remote_addr", c.ClientIP())
	web.AddFlash(c, web.FlashSuccess, msgRegisterOK)
	web.Redirect(c, jwtmw.LoginPath)
}

// Logout はセッションを失効させ、クッキーを削除してトップページへ戻します。
func (h *AuthHandler) Logout(c *gin.Context) {
	if s, ok := jwtmw.CurrentSession(c); ok {
		if err := h.auth.Logout(c.Request.Context(), s.ID); err != nil {
			slog.Error("logout failed", "error", err, "session_id", s.ID)
		}
	}
	jwtmw.ClearSessionCookie(c, h.cookie)
	web.AddFlash(c, web.FlashSuccess, msgLogoutOK)
	web.Redirect(c, "/")
}

// SafeRedirect returns next when it is a local absolute path and "/"
// otherwise, so that ?next= cannot send the user to another site.
func SafeRedirect(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") ||
		strings.HasPrefix(next, "//") || strings.HasPrefix(next, `/\`) {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "/"
	}
	return next
}
