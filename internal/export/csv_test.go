package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartspend/internal/models"
)

func TestWriteCSV(t *testing.T) {
	expenses := []models.Expense{
		{
			ItemID:        "0190a2b4-0000-7000-8000-000000000001",
			UserID:        "USR1718000000ABCDEFGH",
			EntryDate:     time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
			Amount:        decimal.RequireFromString("12.5"),
			Currency:      models.CurrencyUSD,
			MerchantName:  "Brown, Coffee",
			CategoryLabel: "Dining",
			SubCategory:   "Drinks",
			PaymentMethod: "Cash",
			Description:   `iced "latte"`,
		},
		{
			EntryDate:     time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			Amount:        decimal.NewFromInt(8200),
			Currency:      models.CurrencyKHR,
			MerchantName:  "ផ្សារ",
			CategoryLabel: "Food & Groceries",
			SubCategory:   "Vegetables",
			PaymentMethod: "Mobile Pay",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, expenses))

	assert.NotContains(t, buf.String(), "USR1718000000ABCDEFGH")
	assert.NotContains(t, buf.String(), "0190a2b4")

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, Header, records[0])
	assert.Equal(t, []string{"2024-06-15", "12.50", "USD", "Brown, Coffee", "Dining", "Drinks", "Cash", `iced "latte"`}, records[1])
	assert.Equal(t, []string{"2024-06-01", "8200.00", "KHR", "ផ្សារ", "Food & Groceries", "Vegetables", "Mobile Pay", ""}, records[2])
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, "Date,Amount,Currency,Merchant,Category,Sub-Category,Payment Method,Description\n", buf.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteCSV_WriterError(t *testing.T) {
	assert.Error(t, WriteCSV(failingWriter{}, []models.Expense{{Amount: decimal.NewFromInt(1)}}))
}

func TestFilename(t *testing.T) {
	got := Filename(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "expenses_2024-06-01_to_2024-06-30.csv", got)
}
