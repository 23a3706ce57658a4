package entity

import (
	"time"

	authentity "helpdesk/internal/feature/auth/domain/entity"
)

// Message はチケットに紐づくメッセージ（mensagem）を表します。
// チケット削除時は外部キーの ON DELETE CASCADE により一緒に削除されます。
type Message struct {
	ID          uint             `gorm:"primaryKey"`
	TicketID    uint             `gorm:"column:chamado_id;not null;index"`
	Ticket      *Ticket          `gorm:"foreignKey:TicketID;constraint:OnDelete:CASCADE"`
	SenderID    uint             `gorm:"column:remetente_id;not null"`
	Sender      *authentity.User `gorm:"foreignKey:SenderID"`
	RecipientID uint             `gorm:"column:destinatario_id;not null"`
	Recipient   *authentity.User `gorm:"foreignKey:RecipientID"`
	Body        string           `gorm:"column:mensagem;type:text;not null"`
	SentAt      time.Time        `gorm:"column:data_envio;not null"`
}

// TableName は mensagens テーブルを返します。
func (Message) TableName() string {
	return "mensagens"
}

// SenderEmail returns the preloaded sender's email, or "" when not loaded.
func (m *Message) SenderEmail() string {
	if m.Sender == nil {
		return ""
	}
	return m.Sender.Email
}
