package usecase

import (
	"context"
	"io"
	"io/fs"
	"sort"

	"helpdesk/internal/feature/ticket/domain/entity"
)

// mockTicketRepository keeps tickets in a map keyed by id.
type mockTicketRepository struct {
	tickets   map[uint]*entity.Ticket
	nextID    uint
	CreateErr error
	DeleteErr error
	deleted   []uint
}

func newMockTicketRepository() *mockTicketRepository {
	return &mockTicketRepository{tickets: map[uint]*entity.Ticket{}, nextID: 1}
}

func (m *mockTicketRepository) Create(ctx context.Context, t *entity.Ticket) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	t.ID = m.nextID
	m.nextID++
	cp := *t
	m.tickets[t.ID] = &cp
	return nil
}

func (m *mockTicketRepository) ListByOwner(ctx context.Context, ownerID uint) ([]entity.Ticket, error) {
	out := []entity.Ticket{}
	for _, t := range m.tickets {
		if t.ClientID == ownerID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockTicketRepository) FindByID(ctx context.Context, id uint) (*entity.Ticket, error) {
	t, ok := m.tickets[id]
	if !ok {
		return nil, ErrTicketNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *mockTicketRepository) FindLatestByAttachment(ctx context.Context, filename string) (*entity.Ticket, error) {
	var latest *entity.Ticket
	for _, t := range m.tickets {
		if t.AttachmentName() == filename && (latest == nil || t.ID > latest.ID) {
			latest = t
		}
	}
	if latest == nil {
		return nil, ErrTicketNotFound
	}
	cp := *latest
	return &cp, nil
}

func (m *mockTicketRepository) Delete(ctx context.Context, id uint) error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	delete(m.tickets, id)
	m.deleted = append(m.deleted, id)
	return nil
}

// mockMessageRepository keeps messages in insertion order.
type mockMessageRepository struct {
	messages  []entity.Message
	CreateErr error
}

func (m *mockMessageRepository) Create(ctx context.Context, msg *entity.Message) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	msg.ID = uint(len(m.messages) + 1)
	m.messages = append(m.messages, *msg)
	return nil
}

func (m *mockMessageRepository) ListByTicket(ctx context.Context, ticketID uint) ([]entity.Message, error) {
	out := []entity.Message{}
	for _, msg := range m.messages {
		if msg.TicketID == ticketID {
			out = append(out, msg)
		}
	}
	return out, nil
}

// mockAttachmentStore records saved files in memory.
type mockAttachmentStore struct {
	files     map[string][]byte
	SaveErr   error
	RemoveErr error
	removed   []string
}

func newMockAttachmentStore() *mockAttachmentStore {
	return &mockAttachmentStore{files: map[string][]byte{}}
}

func (m *mockAttachmentStore) Save(u Upload) (string, error) {
	if m.SaveErr != nil {
		return "", m.SaveErr
	}
	b, err := io.ReadAll(u.Content)
	if err != nil {
		return "", err
	}
	m.files[u.Filename] = b
	return u.Filename, nil
}

func (m *mockAttachmentStore) Remove(name string) error {
	m.removed = append(m.removed, name)
	if m.RemoveErr != nil {
		return m.RemoveErr
	}
	if _, ok := m.files[name]; !ok {
		return fs.ErrNotExist
	}
	delete(m.files, name)
	return nil
}

func (m *mockAttachmentStore) Path(name string) (string, error) {
	if _, ok := m.files[name]; !ok {
		return "", fs.ErrNotExist
	}
	return "/uploads/" + name, nil
}
