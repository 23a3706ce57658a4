package usecase

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strconv"
	"strings"

	"helpdesk/internal/feature/ticket/domain/entity"
)

// CreateTicketInput carries the ticket form as submitted.
type CreateTicketInput struct {
	OwnerID     uint
	RequestType string
	Priority    string
	Category    string
	Subject     string
	Description string
	// Attachment is nil when no file was sent.
	Attachment *Upload
}

// ticketUsecase はチケットの作成・一覧・削除を実装します。
type ticketUsecase struct {
	tickets TicketRepository
	files   AttachmentStore
}

// NewTicketUsecase は ticketUsecase の新しいインスタンスを生成します。
func NewTicketUsecase(tickets TicketRepository, files AttachmentStore) *ticketUsecase {
	return &ticketUsecase{tickets: tickets, files: files}
}

// Create validates the form, stores the attachment and persists the ticket.
// If the insert fails the stored file is removed again.
func (u *ticketUsecase) Create(ctx context.Context, in CreateTicketInput) (*entity.Ticket, error) {
	priority, err := strconv.Atoi(strings.TrimSpace(in.Priority))
	if err != nil {
		return nil, fmt.Errorf("%w: priority must be an integer", ErrValidation)
	}
	description := strings.TrimSpace(in.Description)
	required := []struct{ field, value string }{
		{"request type", in.RequestType},
		{"category", in.Category},
		{"subject", in.Subject},
		{"description", description},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return nil, fmt.Errorf("%w: %s is required", ErrValidation, r.field)
		}
	}

	ticket := &entity.Ticket{
		ClientID:    in.OwnerID,
		RequestType: strings.TrimSpace(in.RequestType),
		Priority:    priority,
		Category:    strings.TrimSpace(in.Category),
		Subject:     truncate(in.Subject, entity.SubjectMaxLen),
		Description: description,
		Status:      entity.StatusOpen,
	}

	if in.Attachment != nil && in.Attachment.Filename != "" {
		stored, err := u.files.Save(*in.Attachment)
		if err != nil {
			return nil, err
		}
		ticket.Attachment = &stored
	}

	if err := u.tickets.Create(ctx, ticket); err != nil {
		if ticket.HasAttachment() {
			if rmErr := u.files.Remove(ticket.AttachmentName()); rmErr != nil {
				slog.Warn("failed to clean up attachment after insert failure",
					"file", ticket.AttachmentName(), "error", rmErr)
			}
		}
		return nil, fmt.Errorf("failed to create ticket: %w", err)
	}
	return ticket, nil
}

// ListByOwner returns the owner's tickets ordered by id.
func (u *ticketUsecase) ListByOwner(ctx context.Context, ownerID uint) ([]entity.Ticket, error) {
	tickets, err := u.tickets.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	return tickets, nil
}

// Get returns the ticket when requesterID owns it.
func (u *ticketUsecase) Get(ctx context.Context, id, requesterID uint) (*entity.Ticket, error) {
	ticket, err := u.tickets.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ticket.OwnedBy(requesterID) {
		return nil, ErrForbidden
	}
	return ticket, nil
}

// Delete removes the ticket and its messages, then the attachment file.
// A failed file removal is returned as a warning alongside a nil error.
func (u *ticketUsecase) Delete(ctx context.Context, id, requesterID uint) (*FileIOWarning, error) {
	ticket, err := u.Get(ctx, id, requesterID)
	if err != nil {
		return nil, err
	}
	if err := u.tickets.Delete(ctx, ticket.ID); err != nil {
		return nil, fmt.Errorf("failed to delete ticket: %w", err)
	}
	if !ticket.HasAttachment() {
		return nil, nil
	}

	name := ticket.AttachmentName()
	if err := u.files.Remove(name); err != nil {
		warn := &FileIOWarning{Filename: name, Missing: errors.Is(err, fs.ErrNotExist), Err: err}
		slog.Warn("attachment removal failed", "ticket_id", ticket.ID, "error", warn)
		return warn, nil
	}
	return nil, nil
}

// AttachmentPath resolves a stored filename for download. The bytes on disk
// belong to the newest ticket referencing the name, and only its owner may
// fetch them.
func (u *ticketUsecase) AttachmentPath(ctx context.Context, ownerID uint, filename string) (string, error) {
	ticket, err := u.tickets.FindLatestByAttachment(ctx, filename)
	if err != nil {
		if errors.Is(err, ErrTicketNotFound) {
			return "", ErrAttachmentNotFound
		}
		return "", err
	}
	if !ticket.OwnedBy(ownerID) {
		return "", ErrAttachmentNotFound
	}
	path, err := u.files.Path(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", ErrAttachmentNotFound
		}
		return "", err
	}
	return path, nil
}

// truncate cuts s to at most n characters without splitting a rune.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
