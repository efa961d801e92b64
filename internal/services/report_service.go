package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"smartspend/internal/analytics"
	apperrors "smartspend/internal/errors"
	"smartspend/internal/models"
	"smartspend/internal/taxonomy"
)

// dashboardTopMerchants is how many merchants the dashboard ranks.
const dashboardTopMerchants = 5

// reportService reads ranges through the expense store and aggregates them.
type reportService struct {
	expenses ExpenseServicer
}

// NewReportService creates a new ReportServicer.
func NewReportService(expenses ExpenseServicer) ReportServicer {
	return &reportService{expenses: expenses}
}

func checkCurrency(currency models.Currency) error {
	if !taxonomy.IsCurrency(string(currency)) {
		return apperrors.ErrInvalidCurrency
	}
	return nil
}

// GetDashboard computes every dashboard aggregate for [start, end] in currency.
func (s *reportService) GetDashboard(ctx context.Context, userID string, start, end time.Time, currency models.Currency) (*Dashboard, error) {
	if err := checkCurrency(currency); err != nil {
		return nil, err
	}

	expenses, err := s.expenses.GetExpensesInRange(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		From:         models.DateOnly(start),
		To:           models.DateOnly(end),
		Summary:      analytics.Summarize(expenses, currency),
		Daily:        analytics.DailySeries(expenses, currency),
		TopMerchants: analytics.TopMerchants(expenses, currency, dashboardTopMerchants),
		Categories:   analytics.ByCategory(expenses, currency),
	}, nil
}

// GetTotal returns the summed spending for [start, end] in currency.
func (s *reportService) GetTotal(ctx context.Context, userID string, start, end time.Time, currency models.Currency) (decimal.Decimal, error) {
	if err := checkCurrency(currency); err != nil {
		return decimal.Zero, err
	}

	expenses, err := s.expenses.GetExpensesInRange(ctx, userID, start, end)
	if err != nil {
		return decimal.Zero, err
	}
	return analytics.Total(expenses, currency), nil
}

// GetTopMerchants ranks at most k merchants for [start, end] in currency.
func (s *reportService) GetTopMerchants(ctx context.Context, userID string, start, end time.Time, currency models.Currency, k int) ([]analytics.MerchantTotal, error) {
	if err := checkCurrency(currency); err != nil {
		return nil, err
	}

	expenses, err := s.expenses.GetExpensesInRange(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	return analytics.TopMerchants(expenses, currency, k), nil
}
