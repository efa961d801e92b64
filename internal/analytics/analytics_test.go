package analytics

import (
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartspend/internal/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func expense(date time.Time, amount string, currency models.Currency, merchant, category string) models.Expense {
	return models.Expense{
		EntryDate:     date,
		Amount:        decimal.RequireFromString(amount),
		Currency:      currency,
		MerchantName:  merchant,
		CategoryLabel: category,
	}
}

func TestConvert(t *testing.T) {
	t.Run("identity", func(t *testing.T) {
		got := Convert(decimal.NewFromInt(12), models.CurrencyUSD, models.CurrencyUSD)
		assert.True(t, got.Equal(decimal.NewFromInt(12)))
	})

	t.Run("khr_to_usd", func(t *testing.T) {
		got := Convert(decimal.NewFromInt(8200), models.CurrencyKHR, models.CurrencyUSD)
		assert.True(t, got.Equal(decimal.NewFromInt(2)), "got %s", got)
	})

	t.Run("usd_to_khr", func(t *testing.T) {
		got := Convert(decimal.RequireFromString("1.5"), models.CurrencyUSD, models.CurrencyKHR)
		assert.True(t, got.Equal(decimal.NewFromInt(6150)), "got %s", got)
	})
}

func TestTotal(t *testing.T) {
	t.Run("empty_is_zero", func(t *testing.T) {
		assert.True(t, Total(nil, models.CurrencyUSD).IsZero())
	})

	t.Run("mixed_currencies", func(t *testing.T) {
		expenses := []models.Expense{
			expense(day(2024, 6, 1), "10", models.CurrencyUSD, "A", "Dining"),
			expense(day(2024, 6, 2), "4100", models.CurrencyKHR, "B", "Dining"),
		}
		assert.True(t, Total(expenses, models.CurrencyUSD).Equal(decimal.NewFromInt(11)))
		assert.True(t, Total(expenses, models.CurrencyKHR).Equal(decimal.NewFromInt(45100)))
	})

	t.Run("equals_sum_of_normalized", func(t *testing.T) {
		rng := rand.New(rand.NewSource(42))
		for round := 0; round < 50; round++ {
			var expenses []models.Expense
			want := decimal.Zero
			n := rng.Intn(20)
			for i := 0; i < n; i++ {
				currency := models.CurrencyUSD
				if rng.Intn(2) == 0 {
					currency = models.CurrencyKHR
				}
				e := expense(day(2024, 1, 1+rng.Intn(28)), decimal.NewFromInt(int64(1+rng.Intn(100000))).Shift(-2).String(), currency, "M", "Dining")
				expenses = append(expenses, e)
				want = want.Add(Convert(e.Amount, e.Currency, models.CurrencyUSD))
			}
			require.True(t, Total(expenses, models.CurrencyUSD).Equal(want), "round %d", round)
		}
	})
}

func TestDailySeries(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, DailySeries(nil, models.CurrencyUSD))
	})

	t.Run("sums_per_day_ascending_without_gaps_filled", func(t *testing.T) {
		expenses := []models.Expense{
			expense(day(2024, 6, 15), "5", models.CurrencyUSD, "A", "Dining"),
			expense(day(2024, 6, 1), "2", models.CurrencyUSD, "A", "Dining"),
			expense(day(2024, 6, 15), "8200", models.CurrencyKHR, "B", "Dining"),
		}

		series := DailySeries(expenses, models.CurrencyUSD)
		require.Len(t, series, 2)
		assert.Equal(t, day(2024, 6, 1), series[0].Date)
		assert.True(t, series[0].Amount.Equal(decimal.NewFromInt(2)))
		assert.Equal(t, day(2024, 6, 15), series[1].Date)
		assert.True(t, series[1].Amount.Equal(decimal.NewFromInt(7)))
	})
}

func TestTopMerchants(t *testing.T) {
	expenses := []models.Expense{
		expense(day(2024, 6, 1), "5", models.CurrencyUSD, "Brown Coffee", "Dining"),
		expense(day(2024, 6, 2), "5", models.CurrencyUSD, "Lucky Market", "Food & Groceries"),
		expense(day(2024, 6, 3), "20", models.CurrencyUSD, "Grab", "Transportation"),
		expense(day(2024, 6, 4), "4100", models.CurrencyKHR, "Brown Coffee", "Dining"),
		expense(day(2024, 6, 5), "3", models.CurrencyUSD, "  ", "Miscellaneous"),
		expense(day(2024, 6, 6), "6", models.CurrencyUSD, "Lucky Market", "Food & Groceries"),
	}

	t.Run("ranked_descending", func(t *testing.T) {
		top := TopMerchants(expenses, models.CurrencyUSD, 5)
		require.Len(t, top, 4)
		assert.Equal(t, "Grab", top[0].Merchant)
		assert.Equal(t, "Lucky Market", top[1].Merchant)
		assert.True(t, top[1].Amount.Equal(decimal.NewFromInt(11)))
		assert.Equal(t, "Brown Coffee", top[2].Merchant)
		assert.True(t, top[2].Amount.Equal(decimal.NewFromInt(6)))
		assert.Equal(t, OtherMerchant, top[3].Merchant)
		for i := 1; i < len(top); i++ {
			assert.False(t, top[i].Amount.GreaterThan(top[i-1].Amount))
		}
	})

	t.Run("never_more_than_k", func(t *testing.T) {
		for k := 0; k <= 6; k++ {
			assert.LessOrEqual(t, len(TopMerchants(expenses, models.CurrencyUSD, k)), k)
		}
	})

	t.Run("ties_keep_first_encountered_order", func(t *testing.T) {
		tied := []models.Expense{
			expense(day(2024, 6, 1), "5", models.CurrencyUSD, "Zeta", "Dining"),
			expense(day(2024, 6, 2), "5", models.CurrencyUSD, "Alpha", "Dining"),
			expense(day(2024, 6, 3), "5", models.CurrencyUSD, "Mid", "Dining"),
		}
		top := TopMerchants(tied, models.CurrencyUSD, 3)
		require.Len(t, top, 3)
		assert.Equal(t, []string{"Zeta", "Alpha", "Mid"}, []string{top[0].Merchant, top[1].Merchant, top[2].Merchant})
	})

	t.Run("empty_input", func(t *testing.T) {
		assert.Empty(t, TopMerchants(nil, models.CurrencyUSD, 5))
	})
}

func TestByCategory(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, ByCategory(nil, models.CurrencyUSD))
	})

	t.Run("sums_and_shares", func(t *testing.T) {
		expenses := []models.Expense{
			expense(day(2024, 6, 1), "25", models.CurrencyUSD, "A", "Dining"),
			expense(day(2024, 6, 2), "75", models.CurrencyUSD, "B", "Shopping"),
		}
		cats := ByCategory(expenses, models.CurrencyUSD)
		require.Len(t, cats, 2)
		assert.Equal(t, "Shopping", cats[0].Category)
		assert.InDelta(t, 75.0, cats[0].Percentage, 0.001)
		assert.Equal(t, "Dining", cats[1].Category)
		assert.InDelta(t, 25.0, cats[1].Percentage, 0.001)
	})
}

func TestSummarize(t *testing.T) {
	t.Run("no_data", func(t *testing.T) {
		s := Summarize(nil, models.CurrencyUSD)
		assert.False(t, s.HasData)
		assert.True(t, s.Total.IsZero())
		assert.Equal(t, 0, s.Transactions)
		assert.Empty(t, s.TopCategory)
	})

	t.Run("metrics", func(t *testing.T) {
		expenses := []models.Expense{
			expense(day(2024, 6, 1), "10", models.CurrencyUSD, "A", "Dining"),
			expense(day(2024, 6, 1), "20", models.CurrencyUSD, "B", "Shopping"),
			expense(day(2024, 6, 3), "30", models.CurrencyUSD, "C", "Dining"),
		}
		s := Summarize(expenses, models.CurrencyUSD)
		assert.True(t, s.HasData)
		assert.Equal(t, 3, s.Transactions)
		assert.True(t, s.Total.Equal(decimal.NewFromInt(60)))
		assert.True(t, s.AverageDaily.Equal(decimal.NewFromInt(30)))
		assert.Equal(t, "Dining", s.TopCategory)
	})
}
