package dataset

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"ecommerce-eda/internal/models"
)

const validCSV = `customer_id,category,price,quantity,discount,region,payment_method,order_date
C001,Electronics,199.99,2,0.1,North,Credit Card,2024-01-15 10:22:00
C002, Clothing ,25.50,1,0,South,PayPal,2024-01-16
C003,Sports,80,3,,East,Cash,2024-01-17
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFile_CSV(t *testing.T) {
	path := writeFile(t, "orders.csv", validCSV)

	orders, err := LoadFile(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, orders, 3)

	assert.Equal(t, models.RawOrder{
		CustomerID:    "C001",
		Category:      "Electronics",
		Price:         "199.99",
		Quantity:      "2",
		Discount:      "0.1",
		Region:        "North",
		PaymentMethod: "Credit Card",
		OrderDate:     "2024-01-15 10:22:00",
	}, orders[0])
	assert.Equal(t, "Clothing", orders[1].Category)
	assert.Empty(t, orders[2].Discount)
}

func TestLoad_ColumnOrderAndCase(t *testing.T) {
	csv := "Order_Date,Payment_Method,Region,Discount,Quantity,Price,Category,Customer_ID,extra\n" +
		"2024-02-01,Cash,West,0.2,1,10,Toys,C9,ignored\n"

	orders, err := Load(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "C9", orders[0].CustomerID)
	assert.Equal(t, "2024-02-01", orders[0].OrderDate)
	assert.Equal(t, "0.2", orders[0].Discount)
}

func TestLoad_SchemaError(t *testing.T) {
	csv := "customer_id,category,price,quantity,region,order_date\nC1,Toys,1,1,West,2024-01-01\n"

	_, err := Load(context.Background(), strings.NewReader(csv))

	var se *SchemaError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, []string{"discount", "payment_method"}, se.Missing)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		csv  string
	}{
		{"empty file", ""},
		{"header only", "customer_id,category,price,quantity,discount,region,payment_method,order_date\n"},
		{"ragged rows", "customer_id,category\nC1,Toys,extra\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(context.Background(), strings.NewReader(tt.csv))
			assert.Error(t, err)
		})
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadFile_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := LoadFile(ctx, writeFile(t, "orders.csv", validCSV))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadFile_Workbook(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"customer_id", "category", "price", "quantity", "discount", "region", "payment_method", "order_date"},
		{"C1", "Books", "12.5", "2", "0", "West", "Cash", "2024-03-01"},
		{"C2", "Toys", "40", "1", "0.25", "East", "Card"},
	}
	for i, row := range rows {
		cellName, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cellName, &row))
	}
	path := filepath.Join(t.TempDir(), "orders.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	orders, err := LoadFile(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, orders, 2)

	assert.Equal(t, "Books", orders[0].Category)
	assert.Equal(t, "12.5", orders[0].Price)
	assert.Equal(t, "0.25", orders[1].Discount)
	assert.Empty(t, orders[1].OrderDate)
}
