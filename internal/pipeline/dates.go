package pipeline

import (
	"errors"
	"slices"
	"strings"
	"time"

	"ecommerce-eda/internal/models"
)

const dayLayout = "2006-01-02"

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	dayLayout,
	"2006/01/02",
	"01/02/2006",
	"01/02/2006 15:04:05",
}

var errNoLayout = errors.New("no matching date layout")

// ParseOrderDate parses an order_date value in any of the accepted layouts.
func ParseOrderDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errNoLayout
}

// RevenueByDate sums revenue per calendar date, oldest first. The calendar
// date is taken in the timestamp's own offset. An unparsable order_date fails
// the whole run with a *ParseError.
func RevenueByDate(orders []models.Order) ([]models.DateTotal, error) {
	index := make(map[string]int)
	totals := make([]models.DateTotal, 0)

	for i, o := range orders {
		t, err := ParseOrderDate(o.OrderDate)
		if err != nil {
			return nil, &ParseError{Index: i, Value: o.OrderDate, Err: err}
		}
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		label := day.Format(dayLayout)

		j, ok := index[label]
		if !ok {
			j = len(totals)
			index[label] = j
			totals = append(totals, models.DateTotal{Date: day, Day: label})
		}
		totals[j].Revenue += o.Revenue
	}

	slices.SortFunc(totals, func(a, b models.DateTotal) int {
		return a.Date.Compare(b.Date)
	})
	return totals, nil
}
