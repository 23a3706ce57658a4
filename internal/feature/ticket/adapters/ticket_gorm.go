// Package adapters は ticket フィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"helpdesk/internal/feature/ticket/domain/entity"
	"helpdesk/internal/feature/ticket/usecase"
)

// ticketGorm は TicketRepository の GORM 実装です。
type ticketGorm struct {
	db *gorm.DB
}

var _ usecase.TicketRepository = (*ticketGorm)(nil)

// NewTicketGorm は ticketGorm の新しいインスタンスを生成します。
func NewTicketGorm(db *gorm.DB) *ticketGorm {
	return &ticketGorm{db: db}
}

// Create はチケットを1件挿入します。失敗時はロールバックされます。
func (r *ticketGorm) Create(ctx context.Context, t *entity.Ticket) error {
	if t == nil {
		return errors.New("ticket is nil")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit("Client").Create(t).Error
	})
}

func (r *ticketGorm) ListByOwner(ctx context.Context, ownerID uint) ([]entity.Ticket, error) {
	var rows []entity.Ticket
	if err := r.db.WithContext(ctx).
		Where("cliente_id = ?", ownerID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByID はIDでチケットを取得します。存在しない場合は usecase.ErrTicketNotFound を返します。
func (r *ticketGorm) FindByID(ctx context.Context, id uint) (*entity.Ticket, error) {
	var t entity.Ticket
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrTicketNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *ticketGorm) FindLatestByAttachment(ctx context.Context, filename string) (*entity.Ticket, error) {
	var t entity.Ticket
	err := r.db.WithContext(ctx).
		Where("arquivo_anexo = ?", filename).
		Order("id DESC").
		First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrTicketNotFound
		}
		return nil, err
	}
	return &t, nil
}

// Delete はメッセージを削除した後にチケットを削除します。
// 外部キーの ON DELETE CASCADE が無効な接続でもメッセージが残らないよう、明示的に削除します。
func (r *ticketGorm) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("chamado_id = ?", id).Delete(&entity.Message{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&entity.Ticket{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return usecase.ErrTicketNotFound
		}
		return nil
	})
}
