package store

import (
	"context"
	"log/slog"
	"time"

	"ventas/internal/domain"
	"ventas/internal/storage"

	"github.com/google/uuid"
)

// OrderStore owns the order list. Orders are immutable once added; the only
// mutation besides Add is Remove.
type OrderStore struct {
	list *listStore[domain.Order]
}

func NewOrderStore(ctx context.Context, kv storage.KV, logger *slog.Logger) *OrderStore {
	list := newListStore[domain.Order](kv, KeyOrders, logger)
	list.load(ctx)
	return &OrderStore{list: list}
}

// Add turns a finalized draft into an order by assigning identifier and
// creation timestamp, appends it and persists the list.
func (s *OrderStore) Add(ctx context.Context, draft domain.OrderDraft) domain.Order {
	status := draft.Status
	if status == "" {
		status = domain.StatusPending
	}
	order := domain.Order{
		ID:         uuid.NewString(),
		ClientID:   draft.ClientID,
		ClientName: draft.ClientName,
		Items:      draft.Items,
		Total:      draft.Total,
		Status:     status,
		CreatedAt:  time.Now().UTC(),
	}
	s.list.append(ctx, order)
	return order
}

// Remove deletes the order with the given ID. Unknown IDs are a silent no-op.
func (s *OrderStore) Remove(ctx context.Context, id string) {
	s.list.removeBy(ctx, func(o domain.Order) bool { return o.ID == id })
}

func (s *OrderStore) List() []domain.Order {
	return s.list.List()
}

func (s *OrderStore) FindByID(id string) (domain.Order, bool) {
	return s.list.find(func(o domain.Order) bool { return o.ID == id })
}

func (s *OrderStore) Subscribe(fn func()) func() {
	return s.list.Subscribe(fn)
}
