// Package analytics derives currency-normalized aggregates from an
// already-fetched, ordered slice of expenses. Every function here is pure:
// no I/O, no clock, no shared state.
package analytics

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"smartspend/internal/models"
)

// KHRPerUSD is the single fixed conversion rate: 1 USD = 4100 KHR.
const KHRPerUSD = 4100

// OtherMerchant groups expenses recorded without a merchant name.
const OtherMerchant = "Other"

var khrPerUSD = decimal.NewFromInt(KHRPerUSD)

// DailyTotal is the summed amount for one calendar date.
type DailyTotal struct {
	Date   time.Time       `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

// MerchantTotal is the summed amount for one merchant.
type MerchantTotal struct {
	Merchant string          `json:"merchant"`
	Amount   decimal.Decimal `json:"amount"`
}

// CategoryTotal is the summed amount for one category and its share of the
// overall total in percent.
type CategoryTotal struct {
	Category   string          `json:"category"`
	Amount     decimal.Decimal `json:"amount"`
	Percentage float64         `json:"percentage"`
}

// Summary holds the headline dashboard metrics. HasData is false for an empty
// input so callers can tell "no data" apart from a zero total.
type Summary struct {
	Currency     models.Currency `json:"currency"`
	Total        decimal.Decimal `json:"total"`
	AverageDaily decimal.Decimal `json:"average_daily"`
	Transactions int             `json:"transactions"`
	TopCategory  string          `json:"top_category,omitempty"`
	HasData      bool            `json:"has_data"`
}

// Convert converts amount between the supported currencies using the fixed rate.
func Convert(amount decimal.Decimal, from, to models.Currency) decimal.Decimal {
	switch {
	case from == to:
		return amount
	case from == models.CurrencyKHR && to == models.CurrencyUSD:
		return amount.Div(khrPerUSD)
	case from == models.CurrencyUSD && to == models.CurrencyKHR:
		return amount.Mul(khrPerUSD)
	}
	return amount
}

// Normalize returns the expense amount expressed in the target currency.
func Normalize(e models.Expense, target models.Currency) decimal.Decimal {
	return Convert(e.Amount, e.Currency, target)
}

// Total sums the normalized amounts. An empty input yields zero.
func Total(expenses []models.Expense, target models.Currency) decimal.Decimal {
	total := decimal.Zero
	for i := range expenses {
		total = total.Add(Normalize(expenses[i], target))
	}
	return total
}

// DailySeries sums normalized amounts per calendar date, ascending by date.
// Dates without expenses are absent rather than zero-filled.
func DailySeries(expenses []models.Expense, target models.Currency) []DailyTotal {
	byDay := make(map[time.Time]decimal.Decimal)
	for i := range expenses {
		day := models.DateOnly(expenses[i].EntryDate)
		byDay[day] = byDay[day].Add(Normalize(expenses[i], target))
	}

	series := make([]DailyTotal, 0, len(byDay))
	for day, amount := range byDay {
		series = append(series, DailyTotal{Date: day, Amount: amount})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Date.Before(series[j].Date) })
	return series
}

// TopMerchants returns at most k merchants ranked by summed normalized amount,
// descending. Ties keep the order in which merchants were first encountered.
func TopMerchants(expenses []models.Expense, target models.Currency, k int) []MerchantTotal {
	if k <= 0 {
		return []MerchantTotal{}
	}

	totals := groupInOrder(expenses, target, func(e models.Expense) string {
		name := strings.TrimSpace(e.MerchantName)
		if name == "" {
			return OtherMerchant
		}
		return name
	})

	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].amount.GreaterThan(totals[j].amount)
	})
	if len(totals) > k {
		totals = totals[:k]
	}

	out := make([]MerchantTotal, len(totals))
	for i, g := range totals {
		out[i] = MerchantTotal{Merchant: g.key, Amount: g.amount}
	}
	return out
}

// ByCategory sums normalized amounts per category, largest first, ties in
// first-encountered order.
func ByCategory(expenses []models.Expense, target models.Currency) []CategoryTotal {
	totals := groupInOrder(expenses, target, func(e models.Expense) string {
		return e.CategoryLabel
	})
	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].amount.GreaterThan(totals[j].amount)
	})

	grand := decimal.Zero
	for _, g := range totals {
		grand = grand.Add(g.amount)
	}

	out := make([]CategoryTotal, len(totals))
	for i, g := range totals {
		pct := 0.0
		if grand.IsPositive() {
			pct = g.amount.Div(grand).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
		}
		out[i] = CategoryTotal{Category: g.key, Amount: g.amount, Percentage: pct}
	}
	return out
}

// Summarize computes the dashboard headline metrics.
func Summarize(expenses []models.Expense, target models.Currency) Summary {
	s := Summary{
		Currency:     target,
		Total:        decimal.Zero,
		AverageDaily: decimal.Zero,
		Transactions: len(expenses),
	}
	if len(expenses) == 0 {
		return s
	}

	s.HasData = true
	s.Total = Total(expenses, target)
	if days := len(DailySeries(expenses, target)); days > 0 {
		s.AverageDaily = s.Total.Div(decimal.NewFromInt(int64(days)))
	}
	if cats := ByCategory(expenses, target); len(cats) > 0 {
		s.TopCategory = cats[0].Category
	}
	return s
}

type group struct {
	key    string
	amount decimal.Decimal
}

// groupInOrder sums normalized amounts by key, keeping first-seen key order.
func groupInOrder(expenses []models.Expense, target models.Currency, keyOf func(models.Expense) string) []group {
	index := make(map[string]int)
	var groups []group
	for i := range expenses {
		key := keyOf(expenses[i])
		amount := Normalize(expenses[i], target)
		if pos, ok := index[key]; ok {
			groups[pos].amount = groups[pos].amount.Add(amount)
			continue
		}
		index[key] = len(groups)
		groups = append(groups, group{key: key, amount: amount})
	}
	return groups
}
