// Package dataset reads order exports into raw records for the pipeline.
// Values are kept as text; parsing numbers and dates is the pipeline's job.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"

	"ecommerce-eda/internal/models"
)

var ErrNoSheet = errors.New("workbook has no sheets")

// SchemaError lists required columns absent from the header.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}

// LoadFile reads a .csv or .xlsx export. Any other extension is read as CSV.
func LoadFile(ctx context.Context, path string) ([]models.RawOrder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return loadWorkbook(ctx, path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	return Load(ctx, file)
}

// Load reads CSV with a header row from r.
func Load(ctx context.Context, r io.Reader) ([]models.RawOrder, error) {
	df := dataframe.ReadCSV(r, loadOptions()...)
	if df.Err != nil {
		return nil, fmt.Errorf("parse csv: %w", df.Err)
	}
	return fromFrame(ctx, df)
}

func loadWorkbook(ctx context.Context, path string) ([]models.RawOrder, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheet
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}

	// GetRows drops trailing empty cells, so rows can be shorter than the header.
	if len(rows) > 0 {
		width := len(rows[0])
		for i, row := range rows {
			if len(row) < width {
				rows[i] = append(row, make([]string, width-len(row))...)
			} else {
				rows[i] = row[:width]
			}
		}
	}

	df := dataframe.LoadRecords(rows, loadOptions()...)
	if df.Err != nil {
		return nil, fmt.Errorf("parse sheet %q: %w", sheets[0], df.Err)
	}
	return fromFrame(ctx, df)
}

func loadOptions() []dataframe.LoadOption {
	return []dataframe.LoadOption{
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	}
}

func fromFrame(ctx context.Context, df dataframe.DataFrame) ([]models.RawOrder, error) {
	header := make(map[string]string, df.Ncol())
	for _, name := range df.Names() {
		header[strings.ToLower(strings.TrimSpace(name))] = name
	}

	var missing []string
	for _, c := range models.SourceColumns {
		if _, ok := header[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return nil, &SchemaError{Missing: missing}
	}

	cols := make(map[string][]string, len(models.SourceColumns))
	for _, c := range models.SourceColumns {
		cols[c] = df.Col(header[c]).Records()
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	n := df.Nrow()
	orders := make([]models.RawOrder, n)
	for i := range n {
		orders[i] = models.RawOrder{
			CustomerID:    cell(cols, models.ColumnCustomerID, i),
			Category:      cell(cols, models.ColumnCategory, i),
			Price:         cell(cols, models.ColumnPrice, i),
			Quantity:      cell(cols, models.ColumnQuantity, i),
			Discount:      cell(cols, models.ColumnDiscount, i),
			Region:        cell(cols, models.ColumnRegion, i),
			PaymentMethod: cell(cols, models.ColumnPaymentMethod, i),
			OrderDate:     cell(cols, models.ColumnOrderDate, i),
		}
	}
	return orders, nil
}

func cell(cols map[string][]string, column string, i int) string {
	return strings.TrimSpace(cols[column][i])
}
