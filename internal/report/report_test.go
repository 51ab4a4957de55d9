package report

import (
	"fmt"
	"testing"
	"time"

	"ventas/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(yyyy int, mm time.Month, dd int) time.Time {
	return time.Date(yyyy, mm, dd, 0, 0, 0, 0, time.UTC)
}

func order(id, clientID, clientName, total string, createdAt time.Time, items ...domain.OrderItem) domain.Order {
	return domain.Order{
		ID:         id,
		ClientID:   clientID,
		ClientName: clientName,
		Items:      items,
		Total:      decimal.RequireFromString(total),
		Status:     domain.StatusPending,
		CreatedAt:  createdAt,
	}
}

func item(productID, name, unitPrice string, qty int) domain.OrderItem {
	price := decimal.RequireFromString(unitPrice)
	return domain.OrderItem{
		ProductID:   productID,
		ProductName: name,
		UnitPrice:   price,
		Quantity:    qty,
		Subtotal:    price.Mul(decimal.NewFromInt(int64(qty))),
	}
}

func TestBuild_FiltersWindowInclusive(t *testing.T) {
	orders := []domain.Order{
		order("o1", "c1", "Ana", "100", time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)),
		// Last moment of the end day is still inside
		order("o2", "c1", "Ana", "200", time.Date(2026, 3, 12, 23, 59, 59, 0, time.UTC)),
		order("o3", "c1", "Ana", "400", time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC)),
		order("o4", "c1", "Ana", "800", time.Date(2026, 3, 9, 23, 59, 59, 0, time.UTC)),
	}

	summary := Build(orders, day(2026, 3, 10), day(2026, 3, 12))

	require.Len(t, summary.Orders, 2)
	assert.Equal(t, "o1", summary.Orders[0].ID)
	assert.Equal(t, "o2", summary.Orders[1].ID)
	assert.Equal(t, 2, summary.Stats.TotalOrders)
	assert.True(t, summary.Stats.TotalRevenue.Equal(decimal.RequireFromString("300")))
}

func TestBuild_EmptyWindowHasZeroAverage(t *testing.T) {
	orders := []domain.Order{
		order("o1", "c1", "Ana", "100", day(2026, 1, 1)),
	}

	summary := Build(orders, day(2026, 2, 1), day(2026, 2, 28))

	assert.Empty(t, summary.Orders)
	assert.Equal(t, 0, summary.Stats.TotalOrders)
	assert.True(t, summary.Stats.TotalRevenue.Equal(decimal.Zero))
	assert.True(t, summary.Stats.AverageOrder.Equal(decimal.Zero))
	assert.Equal(t, 0, summary.Stats.TotalItemsSold)
	assert.Empty(t, summary.TopProducts)
	assert.Empty(t, summary.TopClients)
	assert.Empty(t, summary.ByDay)
	assert.Empty(t, summary.StatusCounts)
}

func TestBuild_Stats(t *testing.T) {
	orders := []domain.Order{
		order("o1", "c1", "Ana", "300", day(2026, 3, 10), item("p1", "A", "100", 3)),
		order("o2", "c2", "Bruno", "100", day(2026, 3, 11), item("p2", "B", "50", 2)),
	}

	summary := Build(orders, day(2026, 3, 1), day(2026, 3, 31))

	assert.Equal(t, 2, summary.Stats.TotalOrders)
	assert.True(t, summary.Stats.TotalRevenue.Equal(decimal.RequireFromString("400")))
	assert.True(t, summary.Stats.AverageOrder.Equal(decimal.RequireFromString("200")))
	assert.Equal(t, 5, summary.Stats.TotalItemsSold)
}

func TestBuild_TopProductsSortedByQuantityWithStableTies(t *testing.T) {
	orders := []domain.Order{
		order("o1", "c1", "Ana", "0", day(2026, 3, 10),
			item("p1", "A", "10", 2),
			item("p2", "B", "10", 5),
		),
		order("o2", "c1", "Ana", "0", day(2026, 3, 11),
			item("p3", "C", "10", 2), // ties with p1; p1 was discovered first
			item("p1", "A", "10", 1),
		),
	}

	summary := Build(orders, day(2026, 3, 1), day(2026, 3, 31))

	require.Len(t, summary.TopProducts, 3)
	assert.Equal(t, "p2", summary.TopProducts[0].ProductID)
	assert.Equal(t, 5, summary.TopProducts[0].QuantitySold)
	assert.Equal(t, "p1", summary.TopProducts[1].ProductID)
	assert.Equal(t, 3, summary.TopProducts[1].QuantitySold)
	assert.Equal(t, "p3", summary.TopProducts[2].ProductID)

	assert.True(t, summary.TopProducts[0].Revenue.Equal(decimal.RequireFromString("50")))
}

func TestBuild_TopListsTruncateToTen(t *testing.T) {
	var orders []domain.Order
	for i := 0; i < 15; i++ {
		id := fmt.Sprintf("%d", i)
		orders = append(orders, order("o"+id, "c"+id, "Client "+id, "100", day(2026, 3, 10),
			item("p"+id, "Product "+id, "10", i+1)))
	}

	summary := Build(orders, day(2026, 3, 1), day(2026, 3, 31))

	assert.Len(t, summary.TopProducts, 10)
	assert.Len(t, summary.TopClients, 10)

	// Strictly descending by the stated keys
	for i := 1; i < len(summary.TopProducts); i++ {
		assert.GreaterOrEqual(t, summary.TopProducts[i-1].QuantitySold, summary.TopProducts[i].QuantitySold)
	}
	for i := 1; i < len(summary.TopClients); i++ {
		assert.True(t, summary.TopClients[i-1].Revenue.GreaterThanOrEqual(summary.TopClients[i].Revenue))
	}
}

func TestBuild_TopClientsSortedByRevenue(t *testing.T) {
	orders := []domain.Order{
		order("o1", "c1", "Ana", "100", day(2026, 3, 10)),
		order("o2", "c2", "Bruno", "500", day(2026, 3, 10)),
		order("o3", "c1", "Ana", "150", day(2026, 3, 11)),
	}

	summary := Build(orders, day(2026, 3, 1), day(2026, 3, 31))

	require.Len(t, summary.TopClients, 2)
	assert.Equal(t, "c2", summary.TopClients[0].ClientID)
	assert.Equal(t, 1, summary.TopClients[0].OrderCount)
	assert.Equal(t, "c1", summary.TopClients[1].ClientID)
	assert.Equal(t, 2, summary.TopClients[1].OrderCount)
	assert.True(t, summary.TopClients[1].Revenue.Equal(decimal.RequireFromString("250")))
}

func TestBuild_SalesByDayGroupsAndSortsDescending(t *testing.T) {
	orders := []domain.Order{
		order("o1", "c1", "Ana", "100", time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC), item("p1", "A", "50", 2)),
		order("o2", "c1", "Ana", "200", time.Date(2026, 3, 12, 10, 0, 0, 0, time.UTC), item("p1", "A", "50", 4)),
		order("o3", "c2", "Bruno", "300", time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC), item("p2", "B", "100", 3)),
		// Outside the window
		order("o4", "c2", "Bruno", "999", day(2026, 4, 1)),
	}

	summary := Build(orders, day(2026, 3, 1), day(2026, 3, 31))

	require.Len(t, summary.ByDay, 2)
	assert.Equal(t, "2026-03-12", summary.ByDay[0].Date)
	assert.Equal(t, 1, summary.ByDay[0].OrderCount)
	assert.Equal(t, 4, summary.ByDay[0].ItemsSold)

	assert.Equal(t, "2026-03-10", summary.ByDay[1].Date)
	assert.Equal(t, 2, summary.ByDay[1].OrderCount)
	assert.True(t, summary.ByDay[1].Revenue.Equal(decimal.RequireFromString("400")))
	assert.Equal(t, 5, summary.ByDay[1].ItemsSold)
}

func TestBuild_StatusCountsDefaultToPending(t *testing.T) {
	withStatus := order("o1", "c1", "Ana", "100", day(2026, 3, 10))
	withStatus.Status = "Shipped"
	missingStatus := order("o2", "c1", "Ana", "100", day(2026, 3, 10))
	missingStatus.Status = ""

	orders := []domain.Order{
		withStatus,
		missingStatus,
		order("o3", "c2", "Bruno", "100", day(2026, 3, 11)),
	}

	summary := Build(orders, day(2026, 3, 1), day(2026, 3, 31))

	assert.Equal(t, map[string]int{
		"Shipped":            1,
		domain.StatusPending: 2,
	}, summary.StatusCounts)
}
