// Package entity は ticket フィーチャーのドメインエンティティを定義します。
package entity

import (
	"time"

	authentity "helpdesk/internal/feature/auth/domain/entity"
)

// StatusOpen is the status every ticket starts with. No handler changes it.
const StatusOpen = "Open"

// SubjectMaxLen is the maximum subject length in characters.
const SubjectMaxLen = 50

// Ticket は利用者が起票したサポート依頼（chamado）を表します。
type Ticket struct {
	ID          uint             `gorm:"primaryKey"`
	ClientID    uint             `gorm:"column:cliente_id;not null;index"`
	Client      *authentity.User `gorm:"foreignKey:ClientID"`
	RequestType string           `gorm:"column:tipo_pedido;size:50;not null"`
	Priority    int              `gorm:"column:prioridade_do_chamado;not null"`
	Category    string           `gorm:"column:tipo_do_chamado;size:50;not null"`
	Subject     string           `gorm:"column:assunto_do_chamado;size:50;not null"`
	Description string           `gorm:"column:descricao_do_chamado;type:text;not null"`
	// Attachment holds the sanitized stored filename, never a path.
	Attachment *string   `gorm:"column:arquivo_anexo;size:255"`
	Status     string    `gorm:"size:20;not null;default:Open"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

// TableName は chamados テーブルを返します。
func (Ticket) TableName() string {
	return "chamados"
}

// OwnedBy reports whether userID is the ticket's owning client.
func (t *Ticket) OwnedBy(userID uint) bool {
	return t.ClientID == userID
}

// HasAttachment reports whether a file was stored with the ticket.
func (t *Ticket) HasAttachment() bool {
	return t.Attachment != nil && *t.Attachment != ""
}

// AttachmentName returns the stored filename or "".
func (t *Ticket) AttachmentName() string {
	if t.Attachment == nil {
		return ""
	}
	return *t.Attachment
}
