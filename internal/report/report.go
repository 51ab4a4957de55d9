// Package report derives sales statistics from the order list. Build is a
// pure function: it recomputes everything over the filtered set on each call,
// which is acceptable at local, single-user data volumes.
package report

import (
	"sort"
	"time"

	"ventas/internal/domain"

	"github.com/shopspring/decimal"
)

// topN bounds the top-products and top-clients rankings.
const topN = 10

// dayFormat is the fixed, locale-independent per-day grouping key.
const dayFormat = "2006-01-02"

// Stats are the aggregate figures over the filtered orders.
type Stats struct {
	TotalOrders    int             `json:"total_orders"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	AverageOrder   decimal.Decimal `json:"average_order"`
	TotalItemsSold int             `json:"total_items_sold"`
}

// ProductSales is one row of the top-products ranking.
type ProductSales struct {
	ProductID    string          `json:"product_id"`
	Name         string          `json:"name"`
	QuantitySold int             `json:"quantity_sold"`
	Revenue      decimal.Decimal `json:"revenue"`
}

// ClientActivity is one row of the top-clients ranking.
type ClientActivity struct {
	ClientID   string          `json:"client_id"`
	Name       string          `json:"name"`
	OrderCount int             `json:"order_count"`
	Revenue    decimal.Decimal `json:"revenue"`
}

// DaySales is one calendar day of the per-day breakdown.
type DaySales struct {
	Date       string          `json:"date"`
	OrderCount int             `json:"order_count"`
	Revenue    decimal.Decimal `json:"revenue"`
	ItemsSold  int             `json:"items_sold"`
}

// Summary is the full reporting view for one date window.
type Summary struct {
	From         time.Time        `json:"from"`
	To           time.Time        `json:"to"`
	Orders       []domain.Order   `json:"orders"`
	Stats        Stats            `json:"stats"`
	TopProducts  []ProductSales   `json:"top_products"`
	TopClients   []ClientActivity `json:"top_clients"`
	ByDay        []DaySales       `json:"by_day"`
	StatusCounts map[string]int   `json:"status_counts"`
}

// Build filters orders to the inclusive window [start of from's day, end of
// to's day] and derives all reporting views from the filtered set.
func Build(orders []domain.Order, from, to time.Time) Summary {
	start := startOfDay(from)
	end := endOfDay(to)

	filtered := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		if !o.CreatedAt.Before(start) && !o.CreatedAt.After(end) {
			filtered = append(filtered, o)
		}
	}

	return Summary{
		From:         start,
		To:           end,
		Orders:       filtered,
		Stats:        buildStats(filtered),
		TopProducts:  topProducts(filtered),
		TopClients:   topClients(filtered),
		ByDay:        salesByDay(filtered),
		StatusCounts: statusCounts(filtered),
	}
}

func buildStats(orders []domain.Order) Stats {
	stats := Stats{
		TotalOrders:  len(orders),
		TotalRevenue: decimal.Zero,
		AverageOrder: decimal.Zero,
	}
	for _, o := range orders {
		stats.TotalRevenue = stats.TotalRevenue.Add(o.Total)
		stats.TotalItemsSold += o.ItemCount()
	}
	if stats.TotalOrders > 0 {
		stats.AverageOrder = stats.TotalRevenue.Div(decimal.NewFromInt(int64(stats.TotalOrders)))
	}
	return stats
}

// topProducts groups line items by product, summing quantity and revenue.
// Sorted descending by quantity sold; ties keep discovery order.
func topProducts(orders []domain.Order) []ProductSales {
	index := make(map[string]int)
	rows := make([]ProductSales, 0)

	for _, o := range orders {
		for _, item := range o.Items {
			i, ok := index[item.ProductID]
			if !ok {
				index[item.ProductID] = len(rows)
				rows = append(rows, ProductSales{
					ProductID: item.ProductID,
					Name:      item.ProductName,
					Revenue:   decimal.Zero,
				})
				i = len(rows) - 1
			}
			rows[i].QuantitySold += item.Quantity
			rows[i].Revenue = rows[i].Revenue.Add(item.Subtotal)
		}
	}

	sort.SliceStable(rows, func(a, b int) bool {
		return rows[a].QuantitySold > rows[b].QuantitySold
	})
	return truncate(rows)
}

// topClients groups orders by client, summing order count and revenue.
// Sorted descending by revenue; ties keep discovery order.
func topClients(orders []domain.Order) []ClientActivity {
	index := make(map[string]int)
	rows := make([]ClientActivity, 0)

	for _, o := range orders {
		i, ok := index[o.ClientID]
		if !ok {
			index[o.ClientID] = len(rows)
			rows = append(rows, ClientActivity{
				ClientID: o.ClientID,
				Name:     o.ClientName,
				Revenue:  decimal.Zero,
			})
			i = len(rows) - 1
		}
		rows[i].OrderCount++
		rows[i].Revenue = rows[i].Revenue.Add(o.Total)
	}

	sort.SliceStable(rows, func(a, b int) bool {
		return rows[a].Revenue.GreaterThan(rows[b].Revenue)
	})
	return truncate(rows)
}

// salesByDay groups orders by calendar day, sorted by date descending.
func salesByDay(orders []domain.Order) []DaySales {
	index := make(map[string]int)
	rows := make([]DaySales, 0)

	for _, o := range orders {
		day := o.CreatedAt.Format(dayFormat)
		i, ok := index[day]
		if !ok {
			index[day] = len(rows)
			rows = append(rows, DaySales{Date: day, Revenue: decimal.Zero})
			i = len(rows) - 1
		}
		rows[i].OrderCount++
		rows[i].Revenue = rows[i].Revenue.Add(o.Total)
		rows[i].ItemsSold += o.ItemCount()
	}

	sort.Slice(rows, func(a, b int) bool {
		return rows[a].Date > rows[b].Date
	})
	return rows
}

// statusCounts counts orders per distinct status, defaulting missing
// statuses to pending.
func statusCounts(orders []domain.Order) map[string]int {
	counts := make(map[string]int)
	for _, o := range orders {
		counts[o.EffectiveStatus()]++
	}
	return counts
}

func truncate[T any](rows []T) []T {
	if len(rows) > topN {
		return rows[:topN]
	}
	return rows
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), t.Location())
}
