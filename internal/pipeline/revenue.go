package pipeline

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"ecommerce-eda/internal/models"
)

var (
	one = decimal.NewFromInt(1)

	minQuantity = decimal.NewFromInt(math.MinInt)
	maxQuantity = decimal.NewFromInt(math.MaxInt)
)

// Tokens read as missing cells, matching the usual CSV NA markers.
var missingTokens = []string{"", "na", "n/a", "nan", "null", "none"}

// ComputeRevenue derives revenue = price * quantity * (1 - discount) for every
// record. The first missing or malformed numeric field aborts the run with a
// *FieldError. Discounts outside [0,1] are not rejected.
func ComputeRevenue(raw []models.RawOrder) ([]models.Order, error) {
	orders := make([]models.Order, 0, len(raw))
	for i, r := range raw {
		o, err := deriveOrder(i, r)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// Recompute derives revenue again from an order's price, quantity and discount.
func Recompute(o models.Order) float64 {
	return revenue(decimal.NewFromFloat(o.Price), decimal.NewFromInt(int64(o.Quantity)), decimal.NewFromFloat(o.Discount))
}

// TotalRevenue sums revenue over all orders.
func TotalRevenue(orders []models.Order) float64 {
	var total float64
	for _, o := range orders {
		total += o.Revenue
	}
	return total
}

// DiscountOutOfRange counts orders whose discount lies outside [0,1].
func DiscountOutOfRange(orders []models.Order) int {
	n := 0
	for _, o := range orders {
		if o.Discount < 0 || o.Discount > 1 {
			n++
		}
	}
	return n
}

func deriveOrder(i int, r models.RawOrder) (models.Order, error) {
	price, err := parseDecimal(i, models.ColumnPrice, r.Price)
	if err != nil {
		return models.Order{}, err
	}

	quantity, err := parseDecimal(i, models.ColumnQuantity, r.Quantity)
	if err != nil {
		return models.Order{}, err
	}
	if !quantity.IsInteger() {
		return models.Order{}, &FieldError{Index: i, Field: models.ColumnQuantity, Value: r.Quantity, Err: ErrNotInteger}
	}
	if quantity.LessThan(minQuantity) || quantity.GreaterThan(maxQuantity) {
		return models.Order{}, &FieldError{Index: i, Field: models.ColumnQuantity, Value: r.Quantity, Err: ErrOutOfRange}
	}

	discount, err := parseDecimal(i, models.ColumnDiscount, r.Discount)
	if err != nil {
		return models.Order{}, err
	}

	return models.Order{
		CustomerID:    r.CustomerID,
		Category:      r.Category,
		Region:        r.Region,
		PaymentMethod: r.PaymentMethod,
		Price:         price.InexactFloat64(),
		Quantity:      int(quantity.IntPart()),
		Discount:      discount.InexactFloat64(),
		OrderDate:     r.OrderDate,
		Revenue:       revenue(price, quantity, discount),
	}, nil
}

func revenue(price, quantity, discount decimal.Decimal) float64 {
	return price.Mul(quantity).Mul(one.Sub(discount)).InexactFloat64()
}

func parseDecimal(i int, field, value string) (decimal.Decimal, error) {
	value = strings.TrimSpace(value)
	if IsMissing(value) {
		return decimal.Zero, &FieldError{Index: i, Field: field, Value: value, Err: ErrMissingValue}
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, &FieldError{Index: i, Field: field, Value: value, Err: err}
	}
	return d, nil
}

// IsMissing reports whether a raw cell holds no value.
func IsMissing(value string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	for _, tok := range missingTokens {
		if v == tok {
			return true
		}
	}
	return false
}
