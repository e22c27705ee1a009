package models

// RawOrder is one CSV row with every source column kept as trimmed text.
// Numeric and date fields are parsed by the pipeline, not by the loader.
type RawOrder struct {
	CustomerID    string
	Category      string
	Price         string
	Quantity      string
	Discount      string
	Region        string
	PaymentMethod string
	OrderDate     string
}

type Order struct {
	CustomerID    string  `json:"customer_id"`
	Category      string  `json:"category"`
	Region        string  `json:"region"`
	PaymentMethod string  `json:"payment_method"`
	Price         float64 `json:"price"`
	Quantity      int     `json:"quantity"`
	Discount      float64 `json:"discount"`
	OrderDate     string  `json:"order_date"`
	Revenue       float64 `json:"revenue"`
}

// Source column names, in CSV header order.
const (
	ColumnCustomerID    = "customer_id"
	ColumnCategory      = "category"
	ColumnPrice         = "price"
	ColumnQuantity      = "quantity"
	ColumnDiscount      = "discount"
	ColumnRegion        = "region"
	ColumnPaymentMethod = "payment_method"
	ColumnOrderDate     = "order_date"
	ColumnRevenue       = "revenue"
)

var SourceColumns = []string{
	ColumnCustomerID,
	ColumnCategory,
	ColumnPrice,
	ColumnQuantity,
	ColumnDiscount,
	ColumnRegion,
	ColumnPaymentMethod,
	ColumnOrderDate,
}

// NumericColumns are the columns the summary and correlation stages accept.
var NumericColumns = []string{
	ColumnQuantity,
	ColumnPrice,
	ColumnDiscount,
	ColumnRevenue,
}

// Field returns the raw value of a source column, and false for unknown names.
func (r RawOrder) Field(column string) (string, bool) {
	switch column {
	case ColumnCustomerID:
		return r.CustomerID, true
	case ColumnCategory:
		return r.Category, true
	case ColumnPrice:
		return r.Price, true
	case ColumnQuantity:
		return r.Quantity, true
	case ColumnDiscount:
		return r.Discount, true
	case ColumnRegion:
		return r.Region, true
	case ColumnPaymentMethod:
		return r.PaymentMethod, true
	case ColumnOrderDate:
		return r.OrderDate, true
	}
	return "", false
}
