package pipeline

import (
	"fmt"

	"ecommerce-eda/internal/models"
)

// GroupKey names a categorical column orders can be grouped by.
type GroupKey string

const (
	GroupCustomer      GroupKey = models.ColumnCustomerID
	GroupCategory      GroupKey = models.ColumnCategory
	GroupRegion        GroupKey = models.ColumnRegion
	GroupPaymentMethod GroupKey = models.ColumnPaymentMethod
)

var GroupKeys = []GroupKey{GroupCustomer, GroupCategory, GroupRegion, GroupPaymentMethod}

func ParseGroupKey(s string) (GroupKey, error) {
	for _, k := range GroupKeys {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("group key %q: %w", s, ErrUnknownColumn)
}

// Of returns the value of the key's column for one order.
func (k GroupKey) Of(o models.Order) (string, error) {
	switch k {
	case GroupCustomer:
		return o.CustomerID, nil
	case GroupCategory:
		return o.Category, nil
	case GroupRegion:
		return o.Region, nil
	case GroupPaymentMethod:
		return o.PaymentMethod, nil
	}
	return "", fmt.Errorf("group key %q: %w", string(k), ErrUnknownColumn)
}

func numericColumn(orders []models.Order, column string) ([]float64, error) {
	var get func(models.Order) float64
	switch column {
	case models.ColumnQuantity:
		get = func(o models.Order) float64 { return float64(o.Quantity) }
	case models.ColumnPrice:
		get = func(o models.Order) float64 { return o.Price }
	case models.ColumnDiscount:
		get = func(o models.Order) float64 { return o.Discount }
	case models.ColumnRevenue:
		get = func(o models.Order) float64 { return o.Revenue }
	default:
		return nil, fmt.Errorf("numeric column %q: %w", column, ErrUnknownColumn)
	}

	xs := make([]float64, len(orders))
	for i, o := range orders {
		xs[i] = get(o)
	}
	return xs, nil
}
