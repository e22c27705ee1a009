package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"

	"ecommerce-eda/internal/models"
)

func sampleRaw() []models.RawOrder {
	return []models.RawOrder{
		{CustomerID: "C1", Category: "Electronics", Price: "100", Quantity: "2", Discount: "0.1", Region: "east", PaymentMethod: "card", OrderDate: "2024-01-02"},
		{CustomerID: "C2", Category: "Sports", Price: "20", Quantity: "1", Discount: "0", Region: "west", PaymentMethod: "cash", OrderDate: "2024-01-01 10:30:00"},
		{CustomerID: "C1", Category: "Electronics", Price: "50", Quantity: "3", Discount: "0.2", Region: "east", PaymentMethod: "cash", OrderDate: "2024-01-02T18:00:00"},
		{CustomerID: "C3", Category: "Clothing", Price: "15.5", Quantity: "4", Discount: "0", Region: "north", PaymentMethod: "card", OrderDate: "2024-01-03"},
		{CustomerID: "C2", Category: "Sports", Price: "80", Quantity: "1", Discount: "0.5", Region: "west", PaymentMethod: "paypal", OrderDate: "2024-01-01"},
		{CustomerID: "C4", Category: "Electronics", Price: "300", Quantity: "1", Discount: "0.05", Region: "north", PaymentMethod: "paypal", OrderDate: "2024-01-04"},
		{CustomerID: "C5", Category: "Sports", Price: "35", Quantity: "2", Discount: "0.1", Region: "east", PaymentMethod: "card", OrderDate: "2024-01-04"},
	}
}

func sampleOrders(t *testing.T) []models.Order {
	t.Helper()
	orders, err := ComputeRevenue(sampleRaw())
	require.NoError(t, err)
	return orders
}

func ordersWith(revenues []float64, regions []string) []models.Order {
	orders := make([]models.Order, len(revenues))
	for i := range revenues {
		orders[i] = models.Order{Region: regions[i], Revenue: revenues[i]}
	}
	return orders
}
