package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"helpdesk/internal/feature/ticket/domain/entity"
)

// messageUsecase はチケットへのメッセージ送信とスレッド表示を実装します。
type messageUsecase struct {
	tickets  TicketRepository
	messages MessageRepository
	now      func() time.Time
}

// NewMessageUsecase は messageUsecase の新しいインスタンスを生成します。
func NewMessageUsecase(tickets TicketRepository, messages MessageRepository) *messageUsecase {
	return &messageUsecase{
		tickets:  tickets,
		messages: messages,
		now:      time.Now,
	}
}

// Send appends a message to the ticket. Any authenticated user may send;
// the recipient is always the ticket owner.
func (u *messageUsecase) Send(ctx context.Context, ticketID, senderID uint, body string) (*entity.Message, error) {
	ticket, err := u.tickets.FindByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, fmt.Errorf("%w: message is empty", ErrValidation)
	}

	msg := &entity.Message{
		TicketID:    ticket.ID,
		SenderID:    senderID,
		RecipientID: ticket.ClientID,
		Body:        body,
		SentAt:      u.now().UTC(),
	}
	if err := u.messages.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}
	return msg, nil
}

// ListForTicket returns the messages of a ticket in send order.
func (u *messageUsecase) ListForTicket(ctx context.Context, ticketID uint) ([]entity.Message, error) {
	msgs, err := u.messages.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return msgs, nil
}

// Thread returns the ticket and its messages. Only the owner may view it.
func (u *messageUsecase) Thread(ctx context.Context, ticketID, viewerID uint) (*entity.Ticket, []entity.Message, error) {
	ticket, err := u.tickets.FindByID(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	if !ticket.OwnedBy(viewerID) {
		return nil, nil, ErrForbidden
	}
	msgs, err := u.ListForTicket(ctx, ticket.ID)
	if err != nil {
		return nil, nil, err
	}
	return ticket, msgs, nil
}
