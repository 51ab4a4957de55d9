package store

import (
	"context"
	"log/slog"
	"time"

	"ventas/internal/domain"
	"ventas/internal/storage"

	"github.com/google/uuid"
)

// ClientStore owns the client list. Missing or invalid persisted data
// degrades to an empty list.
type ClientStore struct {
	list *listStore[domain.Client]
}

// ClientFields carries the caller-supplied fields of a new client. Input is
// validated before it reaches the store.
type ClientFields struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

func NewClientStore(ctx context.Context, kv storage.KV, logger *slog.Logger) *ClientStore {
	list := newListStore[domain.Client](kv, KeyClients, logger)
	list.load(ctx)
	return &ClientStore{list: list}
}

// Add assigns a fresh identifier and creation timestamp, appends the client
// and persists the list.
func (s *ClientStore) Add(ctx context.Context, fields ClientFields) domain.Client {
	client := domain.Client{
		ID:        uuid.NewString(),
		Name:      fields.Name,
		Email:     fields.Email,
		Phone:     fields.Phone,
		Address:   fields.Address,
		CreatedAt: time.Now().UTC(),
	}
	s.list.append(ctx, client)
	return client
}

// Remove deletes the client with the given ID. Unknown IDs are a silent no-op.
func (s *ClientStore) Remove(ctx context.Context, id string) {
	s.list.removeBy(ctx, func(c domain.Client) bool { return c.ID == id })
}

func (s *ClientStore) List() []domain.Client {
	return s.list.List()
}

func (s *ClientStore) FindByID(id string) (domain.Client, bool) {
	return s.list.find(func(c domain.Client) bool { return c.ID == id })
}

func (s *ClientStore) Subscribe(fn func()) func() {
	return s.list.Subscribe(fn)
}
