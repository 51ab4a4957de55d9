// Package cart implements the order builder: the transient working state of a
// pending order. Items accumulate against the product stock known at the time
// they were added; nothing is persisted until the builder is finalized and the
// resulting draft handed to the order store.
package cart

import (
	"errors"
	"sync"

	"ventas/internal/domain"

	"github.com/shopspring/decimal"
)

var (
	// ErrOutOfStock signals that an item cannot grow at all: the product has
	// no stock, or the line already sits at the stock limit.
	ErrOutOfStock = errors.New("not enough stock for product")

	// ErrNoClientSelected rejects finalizing without a selected client.
	ErrNoClientSelected = errors.New("no client selected")

	// ErrEmptyCart rejects finalizing an empty cart.
	ErrEmptyCart = errors.New("cart has no items")

	// ErrItemNotFound signals an item index outside the current cart.
	ErrItemNotFound = errors.New("cart item not found")
)

// line couples an order item with the product stock observed when the item
// was last touched, so later quantity updates can clamp against it.
type line struct {
	item  domain.OrderItem
	stock int
}

// Builder accumulates a pending order. All methods are synchronous; the
// zero-to-finalize lifecycle happens within one operator session.
type Builder struct {
	mu     sync.Mutex
	client *domain.Client
	lines  []line
}

func New() *Builder {
	return &Builder{}
}

// SelectClient sets the active client. Replacing a previous selection keeps
// the accumulated items.
func (b *Builder) SelectClient(c domain.Client) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.client = &c
}

// Client returns the selected client, if any.
func (b *Builder) Client() (domain.Client, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.client == nil {
		return domain.Client{}, false
	}
	return *b.client, true
}

// Items returns a copy of the current line items in insertion order.
func (b *Builder) Items() []domain.OrderItem {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.itemsLocked()
}

func (b *Builder) itemsLocked() []domain.OrderItem {
	items := make([]domain.OrderItem, len(b.lines))
	for i, l := range b.lines {
		items[i] = l.item
	}
	return items
}

// AddItem accumulates qty units of the product into the cart, creating a new
// line or growing an existing one. Quantities below one count as one. The
// resulting quantity never exceeds the product's stock: a request pushing past
// it is clamped (clamped=true), and a request that cannot grow the line at all
// returns ErrOutOfStock with the cart unchanged.
func (b *Builder) AddItem(p domain.Product, qty int) (clamped bool, err error) {
	if qty < 1 {
		qty = 1
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	idx := -1
	current := 0
	for i, l := range b.lines {
		if l.item.ProductID == p.ID {
			idx = i
			current = l.item.Quantity
			break
		}
	}

	if p.Stock <= current {
		return false, ErrOutOfStock
	}

	next := current + qty
	if next > p.Stock {
		next = p.Stock
		clamped = true
	}

	if idx >= 0 {
		b.lines[idx].item.Quantity = next
		b.lines[idx].item.Subtotal = b.lines[idx].item.UnitPrice.Mul(decimal.NewFromInt(int64(next)))
		b.lines[idx].stock = p.Stock
		return clamped, nil
	}

	b.lines = append(b.lines, line{
		item: domain.OrderItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			UnitPrice:   p.Price,
			Quantity:    next,
			Subtotal:    p.Price.Mul(decimal.NewFromInt(int64(next))),
		},
		stock: p.Stock,
	})
	return clamped, nil
}

// UpdateQuantity sets the quantity of the item at index. A quantity of zero or
// less removes the item. A quantity above the product's stock is clamped to it
// and signaled through clamped=true. The subtotal is recomputed on every path.
func (b *Builder) UpdateQuantity(index, qty int) (clamped bool, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if index < 0 || index >= len(b.lines) {
		return false, ErrItemNotFound
	}

	if qty <= 0 {
		b.lines = append(b.lines[:index], b.lines[index+1:]...)
		return false, nil
	}

	l := &b.lines[index]
	if qty > l.stock {
		qty = l.stock
		clamped = true
	}
	l.item.Quantity = qty
	l.item.Subtotal = l.item.UnitPrice.Mul(decimal.NewFromInt(int64(qty)))
	return clamped, nil
}

// RemoveItem deletes the line at index; remaining items keep their order.
func (b *Builder) RemoveItem(index int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if index < 0 || index >= len(b.lines) {
		return ErrItemNotFound
	}
	b.lines = append(b.lines[:index], b.lines[index+1:]...)
	return nil
}

// Total returns the sum of all line subtotals.
func (b *Builder) Total() decimal.Decimal {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.totalLocked()
}

func (b *Builder) totalLocked() decimal.Decimal {
	total := decimal.Zero
	for _, l := range b.lines {
		total = total.Add(l.item.Subtotal)
	}
	return total
}

// Finalize produces the immutable order draft and clears the builder. It
// rejects when no client is selected or the cart is empty; no partial order
// is ever produced.
func (b *Builder) Finalize() (domain.OrderDraft, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.client == nil {
		return domain.OrderDraft{}, ErrNoClientSelected
	}
	if len(b.lines) == 0 {
		return domain.OrderDraft{}, ErrEmptyCart
	}

	draft := domain.OrderDraft{
		ClientID:   b.client.ID,
		ClientName: b.client.Name,
		Items:      b.itemsLocked(),
		Total:      b.totalLocked(),
		Status:     domain.StatusPending,
	}

	b.client = nil
	b.lines = nil
	return draft, nil
}
