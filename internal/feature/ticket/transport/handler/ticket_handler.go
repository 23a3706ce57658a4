package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"helpdesk/internal/feature/ticket/domain/entity"
	"helpdesk/internal/feature/ticket/transport/http/dto"
	"helpdesk/internal/feature/ticket/usecase"
	"helpdesk/internal/platform/web"
)

// multipartOverhead is allowed on top of the attachment limit for the
// other form fields and multipart framing.
const multipartOverhead = 1 << 20

// TicketUsecase はチケット操作のユースケースインターフェースを定義します。
type TicketUsecase interface {
	Create(ctx context.Context, in usecase.CreateTicketInput) (*entity.Ticket, error)
	ListByOwner(ctx context.Context, ownerID uint) ([]entity.Ticket, error)
	Delete(ctx context.Context, id, requesterID uint) (*usecase.FileIOWarning, error)
	AttachmentPath(ctx context.Context, ownerID uint, filename string) (string, error)
}

// TicketHandler はチケットの作成・一覧・削除・添付ダウンロードを処理します。
type TicketHandler struct {
	tickets           TicketUsecase
	allowedExtensions []string
	maxUploadBytes    int64
}

// NewTicketHandler は TicketHandler の新しいインスタンスを生成します。
func NewTicketHandler(tickets TicketUsecase, allowedExtensions []string, maxUploadBytes int64) *TicketHandler {
	return &TicketHandler{
		tickets:           tickets,
		allowedExtensions: allowedExtensions,
		maxUploadBytes:    maxUploadBytes,
	}
}

// NewTicketPage はチケット作成フォームを表示します。
func (h *TicketHandler) NewTicketPage(c *gin.Context) {
	web.Render(c, http.StatusOK, "criar_chamado.html", gin.H{
		"Title":             "Abrir chamado",
		"AllowedExtensions": strings.Join(h.allowedExtensions, ", "),
	})
}

// Create はチケット作成フォーム（multipart）を処理します。
// 入力エラーや添付エラーの場合はチケットを作成せずフォームへ戻します。
func (h *TicketHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+multipartOverhead)
	}

	var req dto.CreateTicketReq
	if err := c.ShouldBind(&req); err != nil {
		slog.Warn("ticket form validation failed", "error", err, "user_id", userID)
		h.backToForm(c, bindErrorMessage(err))
		return
	}

	in := usecase.CreateTicketInput{
		OwnerID:     userID,
		RequestType: req.RequestType,
		Priority:    req.Priority,
		Category:    req.Category,
		Subject:     req.Subject,
		Description: req.Description,
	}

	fh, err := c.FormFile("arquivo_anexo")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		slog.Warn("failed to read attachment", "error", err, "user_id", userID)
		h.backToForm(c, bindErrorMessage(err))
		return
	default:
		f, err := fh.Open()
		if err != nil {
			slog.Error("failed to open uploaded file", "error", err, "user_id", userID)
			h.backToForm(c, "Erro ao ler o arquivo anexado.")
			return
		}
		defer f.Close()
		in.Attachment = &usecase.Upload{Filename: fh.Filename, Size: fh.Size, Content: f}
	}

	ticket, err := h.tickets.Create(c.Request.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrUnsupportedFileType):
			slog.Warn("attachment rejected", "error", err, "user_id", userID)
			h.backToForm(c, fmt.Sprintf("Tipo de arquivo não permitido. Tipos permitidos: %s",
				strings.Join(h.allowedExtensions, ", ")))
		case errors.Is(err, usecase.ErrValidation):
			slog.Warn("ticket rejected", "error", err, "user_id", userID)
			h.backToForm(c, "Dados do chamado inválidos. Verifique os campos e tente novamente.")
		default:
			slog.Error("failed to create ticket", "error", err, "user_id", userID)
			h.backToForm(c, "Erro ao criar chamado. Tente novamente.")
		}
		return
	}

	slog.Info("ticket created", "ticket_id", ticket.ID, "user_id", userID, "attachment", ticket.AttachmentName())
	web.AddFlash(c, web.FlashSuccess, "Chamado criado com sucesso!")
	web.Redirect(c, "/meus_chamados")
}

func (h *TicketHandler) backToForm(c *gin.Context, message string) {
	web.AddFlash(c, web.FlashError, message)
	web.Redirect(c, "/criar_chamado")
}

// bindErrorMessage maps a form parsing error to the flash text.
func bindErrorMessage(err error) string {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return "Arquivo muito grande."
	}
	return "Por favor, preencha todos os campos do chamado."
}

// List はログインユーザーのチケット一覧を表示します。
func (h *TicketHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	tickets, err := h.tickets.ListByOwner(c.Request.Context(), userID)
	if err != nil {
		slog.Error("failed to list tickets", "error", err, "user_id", userID)
		web.RenderError(c, http.StatusInternalServerError, "Erro ao carregar chamados.")
		return
	}
	web.Render(c, http.StatusOK, "meus_chamados.html", gin.H{
		"Title":   "Meus chamados",
		"Tickets": tickets,
	})
}

// Delete はチケット・メッセージ・添付ファイルを削除します。
// 添付ファイルの削除失敗は警告として通知し、チケット削除は完了させます。
func (h *TicketHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	warn, err := h.tickets.Delete(c.Request.Context(), id, userID)
	if err != nil {
		if renderAccessError(c, err) {
			slog.Warn("ticket delete refused", "error", err, "ticket_id", id, "user_id", userID)
			return
		}
		slog.Error("failed to delete ticket", "error", err, "ticket_id", id, "user_id", userID)
		web.AddFlash(c, web.FlashError, "Erro ao deletar chamado. Tente novamente.")
		web.Redirect(c, "/meus_chamados")
		return
	}

	if warn != nil {
		if warn.Missing {
			web.AddFlash(c, web.FlashError, "Arquivo anexado não encontrado para deletar.")
		} else {
			web.AddFlash(c, web.FlashError, "Erro ao deletar arquivo anexado.")
		}
	}
	slog.Info("ticket deleted", "ticket_id", id, "user_id", userID)
	web.AddFlash(c, web.FlashSuccess, "Chamado deletado com sucesso!")
	web.Redirect(c, "/meus_chamados")
}

// Download は所有者にのみ添付ファイルを返します。
func (h *TicketHandler) Download(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	name := c.Param("name")
	path, err := h.tickets.AttachmentPath(c.Request.Context(), userID, name)
	if err != nil {
		if errors.Is(err, usecase.ErrAttachmentNotFound) {
			web.RenderError(c, http.StatusNotFound, "Arquivo não encontrado.")
			return
		}
		slog.Error("failed to resolve attachment", "error", err, "file", name, "user_id", userID)
		web.RenderError(c, http.StatusInternalServerError, "")
		return
	}
	c.FileAttachment(path, name)
}
