package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"helpdesk/internal/feature/ticket/domain/entity"
	"helpdesk/internal/feature/ticket/usecase"
)

// messageGorm は MessageRepository の GORM 実装です。
type messageGorm struct {
	db *gorm.DB
}

var _ usecase.MessageRepository = (*messageGorm)(nil)

// NewMessageGorm は messageGorm の新しいインスタンスを生成します。
func NewMessageGorm(db *gorm.DB) *messageGorm {
	return &messageGorm{db: db}
}

// Create はメッセージを1件挿入します。
func (r *messageGorm) Create(ctx context.Context, m *entity.Message) error {
	if m == nil {
		return errors.New("message is nil")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit("Ticket", "Sender", "Recipient").Create(m).Error
	})
}

// ListByTicket は送信者のメールアドレスを含めて送信順に返します。
func (r *messageGorm) ListByTicket(ctx context.Context, ticketID uint) ([]entity.Message, error) {
	var rows []entity.Message
	if err := r.db.WithContext(ctx).
		Preload("Sender").
		Where("chamado_id = ?", ticketID).
		Order("data_envio ASC").
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
