package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"helpdesk/internal/feature/ticket/domain/entity"
	"helpdesk/internal/feature/ticket/transport/http/dto"
	"helpdesk/internal/feature/ticket/usecase"
	"helpdesk/internal/platform/web"
)

// MessageUsecase はメッセージ操作のユースケースインターフェースを定義します。
type MessageUsecase interface {
	Send(ctx context.Context, ticketID, senderID uint, body string) (*entity.Message, error)
	Thread(ctx context.Context, ticketID, viewerID uint) (*entity.Ticket, []entity.Message, error)
}

// MessageHandler はチケットのメッセージスレッドを処理します。
type MessageHandler struct {
	messages MessageUsecase
}

// NewMessageHandler は MessageHandler の新しいインスタンスを生成します。
func NewMessageHandler(messages MessageUsecase) *MessageHandler {
	return &MessageHandler{messages: messages}
}

// Thread はチケットとメッセージ一覧を表示します。所有者以外は403です。
func (h *MessageHandler) Thread(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	ticket, msgs, err := h.messages.Thread(c.Request.Context(), id, userID)
	if err != nil {
		if renderAccessError(c, err) {
			return
		}
		slog.Error("failed to load thread", "error", err, "ticket_id", id)
		web.RenderError(c, http.StatusInternalServerError, "Erro ao carregar mensagens.")
		return
	}
	web.Render(c, http.StatusOK, "mensagens.html", gin.H{
		"Title":    fmt.Sprintf("Chamado #%d", ticket.ID),
		"Ticket":   ticket,
		"Messages": msgs,
	})
}

// Send はメッセージを追加し、スレッド表示へリダイレクトします。
func (h *MessageHandler) Send(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	thread := fmt.Sprintf("/chamado/%d/mensagens", id)

	var req dto.SendMessageReq
	if err := c.ShouldBind(&req); err != nil {
		slog.Warn("message form invalid", "error", err, "ticket_id", id)
	}

	msg, err := h.messages.Send(c.Request.Context(), id, userID, req.Body)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrTicketNotFound):
			web.RenderError(c, http.StatusNotFound, "Chamado não encontrado.")
		case errors.Is(err, usecase.ErrValidation):
			web.AddFlash(c, web.FlashError, "A mensagem não pode estar vazia.")
			web.Redirect(c, thread)
		default:
			slog.Error("failed to send message", "error", err, "ticket_id", id, "user_id", userID)
			web.AddFlash(c, web.FlashError, "Erro ao enviar mensagem. Tente novamente.")
			web.Redirect(c, thread)
		}
		return
	}

	slog.Info("message sent", "message_id", msg.ID, "ticket_id", id, "user_id", userID)
	web.AddFlash(c, web.FlashSuccess, "Mensagem enviada com sucesso!")
	web.Redirect(c, thread)
}
