package usecase

import (
	"context"
	"io"

	"helpdesk/internal/feature/ticket/domain/entity"
)

// TicketRepository はチケットの永続化層を抽象化します。
type TicketRepository interface {
	// Create はチケットをトランザクション内で保存します。
	Create(ctx context.Context, ticket *entity.Ticket) error
	// ListByOwner は ownerID のチケットを ID 昇順で返します。
	ListByOwner(ctx context.Context, ownerID uint) ([]entity.Ticket, error)
	// FindByID はチケットを返します。存在しない場合は ErrTicketNotFound を返します。
	FindByID(ctx context.Context, id uint) (*entity.Ticket, error)
	// FindLatestByAttachment は指定ファイルを添付した最新（ID最大）のチケットを所有者を問わず返します。
	// 同名ファイルは後勝ちで上書きされるため、このチケットがディスク上の内容の持ち主です。
	FindLatestByAttachment(ctx context.Context, filename string) (*entity.Ticket, error)
	// Delete はメッセージとチケットを1つのトランザクションで削除します。
	Delete(ctx context.Context, id uint) error
}

// MessageRepository はメッセージの永続化層を抽象化します。
type MessageRepository interface {
	Create(ctx context.Context, message *entity.Message) error
	// ListByTicket は送信者を読み込んだ状態で送信順に返します。
	ListByTicket(ctx context.Context, ticketID uint) ([]entity.Message, error)
}

// Upload is an attachment as received from the client.
type Upload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// AttachmentStore keeps attachment bytes outside the database.
type AttachmentStore interface {
	// Save validates and writes the upload, returning the stored filename.
	Save(upload Upload) (string, error)
	// Remove deletes a stored file.
	Remove(filename string) error
	// Path returns the on-disk location of a stored file.
	Path(filename string) (string, error)
}
