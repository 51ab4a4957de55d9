package store

import (
	"context"
	"log/slog"
	"time"

	"ventas/internal/domain"
	"ventas/internal/storage"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductStore owns the product catalog. When no usable persisted data exists
// (first run, corrupted payload, or an empty list) the store seeds itself with
// the example cosmetics catalog.
type ProductStore struct {
	list *listStore[domain.Product]
}

// ProductFields carries the caller-supplied fields of a new product.
type ProductFields struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	Category    string
}

func NewProductStore(ctx context.Context, kv storage.KV, logger *slog.Logger) *ProductStore {
	list := newListStore[domain.Product](kv, KeyProducts, logger)
	if !list.load(ctx) || list.Len() == 0 {
		list.replaceAll(ctx, seedCatalog())
		logger.Info("Seeded product catalog", "count", list.Len())
	}
	return &ProductStore{list: list}
}

// Add assigns a fresh identifier and creation timestamp, appends the product
// and persists the list. Stock limits are enforced by the cart, not here.
func (s *ProductStore) Add(ctx context.Context, fields ProductFields) domain.Product {
	product := domain.Product{
		ID:          uuid.NewString(),
		Name:        fields.Name,
		Description: fields.Description,
		Price:       fields.Price,
		Stock:       fields.Stock,
		Category:    fields.Category,
		CreatedAt:   time.Now().UTC(),
	}
	s.list.append(ctx, product)
	return product
}

// Remove deletes the product with the given ID. Unknown IDs are a silent no-op.
func (s *ProductStore) Remove(ctx context.Context, id string) {
	s.list.removeBy(ctx, func(p domain.Product) bool { return p.ID == id })
}

func (s *ProductStore) List() []domain.Product {
	return s.list.List()
}

func (s *ProductStore) FindByID(id string) (domain.Product, bool) {
	return s.list.find(func(p domain.Product) bool { return p.ID == id })
}

func (s *ProductStore) Subscribe(fn func()) func() {
	return s.list.Subscribe(fn)
}

// Seed catalog categories.
const (
	categoryMakeup      = "Makeup"
	categorySkinCare    = "Skin Care"
	categoryFragrances  = "Fragrances"
	categoryAccessories = "Accessories"
)

// seedCatalog returns the twenty example products used on first run.
func seedCatalog() []domain.Product {
	type seed struct {
		name        string
		description string
		price       string
		stock       int
		category    string
	}
	seeds := []seed{
		{"Liquid Foundation", "Long-wear foundation with a natural finish, suitable for all skin types.", "12500", 45, categoryMakeup},
		{"Premium Matte Lipstick", "Long-lasting lipstick with a matte finish, available in multiple shades.", "8500", 60, categoryMakeup},
		{"Facial Moisturizer", "Hydrating cream with hyaluronic acid that nourishes and revitalizes facial skin.", "9800", 35, categorySkinCare},
		{"Volumizing Mascara", "Adds volume and length to lashes. Water resistant.", "7200", 50, categoryMakeup},
		{"Eyeshadow Palette", "Palette with 12 eyeshadow shades. Highly pigmented and easy to blend.", "15200", 28, categoryMakeup},
		{"Eau de Parfum", "Elegant, long-lasting fragrance with floral and woody notes.", "18900", 22, categoryFragrances},
		{"Anti-Aging Serum", "Serum with vitamin C and retinol. Reduces wrinkles and skin spots.", "16500", 30, categorySkinCare},
		{"Liquid Eyeliner", "Fine-tip eyeliner for precise strokes. Water and smudge resistant.", "6800", 42, categoryMakeup},
		{"Full-Coverage Concealer", "Creamy high-coverage concealer for blemishes and dark circles.", "9200", 38, categoryMakeup},
		{"Powder Blush", "Blush with a natural, lasting finish in rose and peach tones.", "7500", 52, categoryMakeup},
		{"Liquid Highlighter", "Gives a natural glow. Perfect for cheekbones and nose.", "8800", 40, categoryMakeup},
		{"Pressed Powder", "Compact powder that sets makeup, controls shine and extends wear.", "10200", 33, categoryMakeup},
		{"Facial Cleanser", "Gentle cleanser that removes impurities without drying the skin.", "6500", 48, categorySkinCare},
		{"Facial Toner", "Balances the skin's pH and prepares it for moisturizing.", "7200", 41, categorySkinCare},
		{"Clay Face Mask", "Purifying clay mask that deep-cleans pores.", "8900", 29, categorySkinCare},
		{"Sunscreen SPF 50", "High-protection sunscreen. Non-greasy and fast absorbing.", "11200", 36, categorySkinCare},
		{"Eau de Toilette", "Fresh, light fragrance, perfect for everyday wear.", "14500", 25, categoryFragrances},
		{"Cologne", "Refreshing cologne with citrus notes, ideal for summer.", "9800", 31, categoryFragrances},
		{"Lip Balm", "Moisturizing lip balm with shea butter and vitamin E.", "4500", 65, categorySkinCare},
		{"Makeup Brush Set", "Set of 5 professional brushes for makeup application.", "12800", 27, categoryAccessories},
	}

	now := time.Now().UTC()
	products := make([]domain.Product, 0, len(seeds))
	for _, s := range seeds {
		products = append(products, domain.Product{
			ID:          uuid.NewString(),
			Name:        s.name,
			Description: s.description,
			Price:       decimal.RequireFromString(s.price),
			Stock:       s.stock,
			Category:    s.category,
			CreatedAt:   now,
		})
	}
	return products
}
