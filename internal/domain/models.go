// Package domain defines the records managed by the application.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatusPending is the status every newly created order starts with. Orders
// with an empty status field are treated as pending.
const StatusPending = "Pending"

type Client struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
	CreatedAt   time.Time       `json:"created_at"`
}

// OrderItem is one line of an order or of the pending cart. It embeds a
// snapshot of the product at the time it was added, so later product edits
// or deletions do not rewrite history.
type OrderItem struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// Order is immutable once created; the only mutation the system allows is
// deleting it from the order store.
type Order struct {
	ID         string          `json:"id"`
	ClientID   string          `json:"client_id"`
	ClientName string          `json:"client_name"`
	Items      []OrderItem     `json:"items"`
	Total      decimal.Decimal `json:"total"`
	Status     string          `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
}

// OrderDraft is a finalized cart waiting for the order store to assign an
// identifier and creation timestamp.
type OrderDraft struct {
	ClientID   string
	ClientName string
	Items      []OrderItem
	Total      decimal.Decimal
	Status     string
}

// EffectiveStatus returns the status of an order, defaulting to pending.
func (o Order) EffectiveStatus() string {
	if o.Status == "" {
		return StatusPending
	}
	return o.Status
}

// ItemCount returns the total quantity over all lines of the order.
func (o Order) ItemCount() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}
