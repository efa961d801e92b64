// Package export renders expense history for download.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"smartspend/internal/models"
)

// Header is the first CSV row. Internal identifiers are never exported.
var Header = []string{"Date", "Amount", "Currency", "Merchant", "Category", "Sub-Category", "Payment Method", "Description"}

// WriteCSV writes expenses to w in the given order.
func WriteCSV(w io.Writer, expenses []models.Expense) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for i := range expenses {
		e := &expenses[i]
		record := []string{
			e.EntryDate.Format(time.DateOnly),
			e.Amount.StringFixed(2),
			string(e.Currency),
			e.MerchantName,
			e.CategoryLabel,
			e.SubCategory,
			e.PaymentMethod,
			e.Description,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Filename names an export of the range [from, to].
func Filename(from, to time.Time) string {
	return fmt.Sprintf("expenses_%s_to_%s.csv", from.Format(time.DateOnly), to.Format(time.DateOnly))
}
