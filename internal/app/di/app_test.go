package di

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	authentity "helpdesk/internal/feature/auth/domain/entity"
	ticketentity "helpdesk/internal/feature/ticket/domain/entity"
	"helpdesk/internal/platform/config"
	"helpdesk/internal/platform/db"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type testApp struct {
	server    *httptest.Server
	db        *gorm.DB
	uploadDir string
}

func newTestApp(t *testing.T, rdb *redis.Client) *testApp {
	t.Helper()

	dir := t.TempDir()
	cfg := &config.Config{
		Server: config.ServerConfig{Mode: gin.TestMode},
		Database: config.DatabaseConfig{
			Driver:         "sqlite",
			DSN:            filepath.Join(dir, "suporte.db"),
			ConnectTimeout: time.Second,
		},
		Auth: config.AuthConfig{
			SessionSecret: "test-secret",
			SessionTTL:    time.Hour,
			CookieName:    "chamados_session",
			BcryptCost:    bcrypt.MinCost,
		},
		Upload: config.UploadConfig{
			Dir:               filepath.Join(dir, "static", "uploads"),
			MaxBytes:          1 << 20,
			AllowedExtensions: []string{"txt", "pdf", "png", "jpg", "jpeg", "gif", "zip", "mp3", "mp4"},
		},
	}

	gdb, err := db.Open(cfg.Database)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	engine, err := NewApp(cfg, gdb, rdb)
	require.NoError(t, err)
	assert.DirExists(t, cfg.Upload.Dir)

	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)
	return &testApp{server: srv, db: gdb, uploadDir: cfg.Upload.Dir}
}

// newClient returns a browser-like client that keeps cookies and follows redirects.
func (a *testApp) newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func (a *testApp) get(t *testing.T, c *http.Client, path string) (int, string) {
	t.Helper()
	resp, err := c.Get(a.server.URL + path)
	require.NoError(t, err)
	return readBody(t, resp)
}

func (a *testApp) postForm(t *testing.T, c *http.Client, path string, form url.Values) (int, string) {
	t.Helper()
	resp, err := c.PostForm(a.server.URL+path, form)
	require.NoError(t, err)
	return readBody(t, resp)
}

func (a *testApp) postTicket(t *testing.T, c *http.Client, filename, content string) (int, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range map[string]string{
		"tipo_pedido":           "Suporte",
		"prioridade_do_chamado": "1",
		"tipo_do_chamado":       "Software",
		"assunto_do_chamado":    "Erro no sistema",
		"descricao_do_chamado":  "O sistema fecha ao salvar.",
	} {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("arquivo_anexo", filename)
		require.NoError(t, err)
		_, err = io.WriteString(fw, content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	resp, err := c.Post(a.server.URL+"/criar_chamado", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	return readBody(t, resp)
}

func (a *testApp) registerAndLogin(t *testing.T, c *http.Client, email string) {
	t.Helper()
	status, body := a.postForm(t, c, "/registro", url.Values{"email": {email}, "password": {"pw123"}})
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, body, "Registro realizado com sucesso!")

	status, body = a.postForm(t, c, "/login", url.Values{"email": {email}, "password": {"pw123"}})
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, body, "Login realizado com sucesso!")
	require.Contains(t, body, email)
}

func readBody(t *testing.T, resp *http.Response) (int, string) {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(b)
}

func countRows(t *testing.T, gdb *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, gdb.Model(model).Count(&n).Error)
	return n
}

// TestEndToEnd は登録からチケット削除までの一連の流れを検証します。
func TestEndToEnd(t *testing.T) {
	for _, backend := range []string{"database", "redis"} {
		t.Run(backend, func(t *testing.T) {
			var rdb *redis.Client
			if backend == "redis" {
				mr := miniredis.RunT(t)
				rdb = redis.NewClient(&redis.Options{Addr: mr.Addr()})
				t.Cleanup(func() { _ = rdb.Close() })
			}
			app := newTestApp(t, rdb)
			alice := app.newClient(t)

			app.registerAndLogin(t, alice, "alice@example.com")

			status, body := app.postTicket(t, alice, "notes.txt", "hello")
			require.Equal(t, http.StatusOK, status)
			assert.Contains(t, body, "Chamado criado com sucesso!")
			assert.Equal(t, 1, strings.Count(body, `<tr class="ticket">`))
			assert.Contains(t, body, `<td class="status">Open</td>`)
			stored := filepath.Join(app.uploadDir, "notes.txt")
			assert.FileExists(t, stored)

			var ticket ticketentity.Ticket
			require.NoError(t, app.db.First(&ticket).Error)
			thread := "/chamado/" + itoa(ticket.ID)

			status, body = app.postForm(t, alice, thread+"/enviar_mensagem", url.Values{"mensagem": {"Hello"}})
			require.Equal(t, http.StatusOK, status)
			assert.Contains(t, body, "Mensagem enviada com sucesso!")
			assert.Equal(t, 1, strings.Count(body, `class="message"`))
			assert.Contains(t, body, `<span class="sender">alice@example.com</span>`)
			assert.Contains(t, body, "<p>Hello</p>")

			status, body = app.get(t, alice, "/uploads/notes.txt")
			assert.Equal(t, http.StatusOK, status)
			assert.Equal(t, "hello", body)

			status, body = app.postForm(t, alice, "/deletar_chamado/"+itoa(ticket.ID), nil)
			require.Equal(t, http.StatusOK, status)
			assert.Contains(t, body, "Chamado deletado com sucesso!")
			assert.Zero(t, strings.Count(body, `<tr class="ticket">`))
			assert.NoFileExists(t, stored)
			assert.Zero(t, countRows(t, app.db, &ticketentity.Message{}))
			assert.Zero(t, countRows(t, app.db, &ticketentity.Ticket{}))

			status, _ = app.get(t, alice, "/logout")
			assert.Equal(t, http.StatusOK, status)

			noFollow := &http.Client{Jar: alice.Jar, CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			}}
			resp, err := noFollow.Get(app.server.URL + "/meus_chamados")
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, http.StatusFound, resp.StatusCode)
		})
	}
}

func TestRequireAuth_RedirectsWithNext(t *testing.T) {
	app := newTestApp(t, nil)
	c := app.newClient(t)
	c.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }

	for _, path := range []string{"/meus_chamados", "/criar_chamado", "/chamado/1/mensagens", "/logout"} {
		resp, err := c.Get(app.server.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusFound, resp.StatusCode, path)
		assert.Equal(t, "/login?next="+url.QueryEscape(path), resp.Header.Get("Location"), path)
	}

	resp, err := c.PostForm(app.server.URL+"/deletar_chamado/1", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestLogin_FollowsNext(t *testing.T) {
	app := newTestApp(t, nil)
	c := app.newClient(t)

	status, _ := app.postForm(t, c, "/registro", url.Values{"email": {"alice@example.com"}, "password": {"pw123"}})
	require.Equal(t, http.StatusOK, status)

	status, body := app.postForm(t, c, "/login", url.Values{
		"email": {"alice@example.com"}, "password": {"pw123"}, "next": {"/meus_chamados"},
	})
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "<h1>Meus chamados</h1>")
}

func TestLogin_WrongPassword(t *testing.T) {
	app := newTestApp(t, nil)
	c := app.newClient(t)

	_, _ = app.postForm(t, c, "/registro", url.Values{"email": {"alice@example.com"}, "password": {"pw123"}})

	status, body := app.postForm(t, c, "/login", url.Values{"email": {"alice@example.com"}, "password": {"nope"}})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Contains(t, body, "Credenciais incorretas!!! Favor tentar novamente.")

	status, body = app.postForm(t, c, "/login", url.Values{"email": {"ghost@example.com"}, "password": {"pw123"}})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Contains(t, body, "Credenciais incorretas!!! Favor tentar novamente.")
}

func TestRegister_DuplicateEmail(t *testing.T) {
	app := newTestApp(t, nil)
	c := app.newClient(t)

	_, _ = app.postForm(t, c, "/registro", url.Values{"email": {"alice@example.com"}, "password": {"pw123"}})
	status, body := app.postForm(t, c, "/registro", url.Values{"email": {"alice@example.com"}, "password": {"other"}})

	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Já existe uma conta com este email.")
	assert.Contains(t, body, "<h1>Entrar</h1>")
	assert.Equal(t, int64(1), countRows(t, app.db, &authentity.User{}))

	var u authentity.User
	require.NoError(t, app.db.First(&u).Error)
	assert.NotEqual(t, "pw123", u.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("pw123")))
}

// TestOwnership は他人のチケットの閲覧・削除が403になり、メッセージ送信は許可されることを検証します。
func TestOwnership(t *testing.T) {
	app := newTestApp(t, nil)
	alice := app.newClient(t)
	bob := app.newClient(t)
	app.registerAndLogin(t, alice, "alice@example.com")
	app.registerAndLogin(t, bob, "bob@example.com")

	status, _ := app.postTicket(t, alice, "notes.txt", "hello")
	require.Equal(t, http.StatusOK, status)
	var ticket ticketentity.Ticket
	require.NoError(t, app.db.First(&ticket).Error)
	id := itoa(ticket.ID)

	status, _ = app.get(t, bob, "/chamado/"+id+"/mensagens")
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = app.postForm(t, bob, "/deletar_chamado/"+id, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, int64(1), countRows(t, app.db, &ticketentity.Ticket{}))
	assert.FileExists(t, filepath.Join(app.uploadDir, "notes.txt"))

	status, _ = app.get(t, bob, "/uploads/notes.txt")
	assert.Equal(t, http.StatusNotFound, status)

	// sending is not owner-gated; bob lands on the thread he may not view
	status, _ = app.postForm(t, bob, "/chamado/"+id+"/enviar_mensagem", url.Values{"mensagem": {"oi"}})
	assert.Equal(t, http.StatusForbidden, status)
	var msg ticketentity.Message
	require.NoError(t, app.db.First(&msg).Error)
	assert.Equal(t, ticket.ClientID, msg.RecipientID)
	assert.NotEqual(t, ticket.ClientID, msg.SenderID)

	status, _ = app.get(t, bob, "/meus_chamados")
	assert.Equal(t, http.StatusOK, status)

	status, _ = app.get(t, alice, "/chamado/abc/mensagens")
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = app.get(t, alice, "/chamado/999/mensagens")
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = app.postForm(t, alice, "/deletar_chamado/999", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, body := app.get(t, alice, "/uploads/notes.txt")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "hello", body)

	// bob's upload overwrites notes.txt on disk; only bob may download it now
	status, _ = app.postTicket(t, bob, "notes.txt", "bob-private")
	require.Equal(t, http.StatusOK, status)

	status, body = app.get(t, alice, "/uploads/notes.txt")
	assert.Equal(t, http.StatusNotFound, status)
	assert.NotContains(t, body, "bob-private")

	status, body = app.get(t, bob, "/uploads/notes.txt")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "bob-private", body)
}

func TestCreateTicket_Rejections(t *testing.T) {
	app := newTestApp(t, nil)
	alice := app.newClient(t)
	app.registerAndLogin(t, alice, "alice@example.com")

	status, body := app.postTicket(t, alice, "virus.exe", "MZ")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Tipo de arquivo não permitido.")
	assert.Contains(t, body, "<h1>Abrir chamado</h1>")
	assert.Zero(t, countRows(t, app.db, &ticketentity.Ticket{}))
	assert.NoFileExists(t, filepath.Join(app.uploadDir, "virus.exe"))

	status, body = app.postTicket(t, alice, "", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Chamado criado com sucesso!")
	assert.Contains(t, body, "<td>-</td>")
}

func TestDeleteTicket_MissingAttachmentStillDeletes(t *testing.T) {
	app := newTestApp(t, nil)
	alice := app.newClient(t)
	app.registerAndLogin(t, alice, "alice@example.com")

	_, _ = app.postTicket(t, alice, "notes.txt", "hello")
	require.NoError(t, os.Remove(filepath.Join(app.uploadDir, "notes.txt")))

	var ticket ticketentity.Ticket
	require.NoError(t, app.db.First(&ticket).Error)

	status, body := app.postForm(t, alice, "/deletar_chamado/"+itoa(ticket.ID), nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Arquivo anexado não encontrado para deletar.")
	assert.Contains(t, body, "Chamado deletado com sucesso!")
	assert.Zero(t, countRows(t, app.db, &ticketentity.Ticket{}))
}

func TestHealthz(t *testing.T) {
	app := newTestApp(t, nil)

	status, body := app.get(t, app.newClient(t), "/healthz")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"status":"ok"}`, body)

	status, _ = app.get(t, app.newClient(t), "/no-such-page")
	assert.Equal(t, http.StatusNotFound, status)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
