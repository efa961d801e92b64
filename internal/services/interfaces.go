package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"smartspend/internal/analytics"
	"smartspend/internal/models"
	"smartspend/internal/pagination"
)

// UserServicer defines the contract for account records and credential checks.
type UserServicer interface {
	CreateUser(ctx context.Context, email, password, username string) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	ResetPassword(ctx context.Context, userID, email, newPassword string) error
	UpdateUsername(ctx context.Context, userID, username string) (*models.User, error)
}

// ExpenseInput carries the user-editable fields of an expense.
type ExpenseInput struct {
	EntryDate     time.Time
	Amount        decimal.Decimal
	Currency      models.Currency
	MerchantName  string
	CategoryLabel string
	SubCategory   string
	PaymentMethod string
	Description   string
}

// ExpenseServicer defines the contract for the ownership-scoped expense store.
// Update and Delete report "no matching row" as false with a nil error.
// GetExpenseByID returns nil, nil when the expense is absent or not owned.
type ExpenseServicer interface {
	AddExpense(ctx context.Context, userID string, in ExpenseInput) (*models.Expense, error)
	UpdateExpense(ctx context.Context, userID, itemID string, in ExpenseInput) (bool, error)
	DeleteExpense(ctx context.Context, userID, itemID string) (bool, error)
	GetExpenseByID(ctx context.Context, userID, itemID string) (*models.Expense, error)
	GetExpensesInRange(ctx context.Context, userID string, start, end time.Time) ([]models.Expense, error)
}

// Dashboard bundles the aggregates shown for one date range.
type Dashboard struct {
	From         time.Time                 `json:"from"`
	To           time.Time                 `json:"to"`
	Summary      analytics.Summary         `json:"summary"`
	Daily        []analytics.DailyTotal    `json:"daily"`
	TopMerchants []analytics.MerchantTotal `json:"top_merchants"`
	Categories   []analytics.CategoryTotal `json:"categories"`
}

// ReportServicer defines the contract for range aggregates.
type ReportServicer interface {
	GetDashboard(ctx context.Context, userID string, start, end time.Time, currency models.Currency) (*Dashboard, error)
	GetTotal(ctx context.Context, userID string, start, end time.Time, currency models.Currency) (decimal.Decimal, error)
	GetTopMerchants(ctx context.Context, userID string, start, end time.Time, currency models.Currency, k int) ([]analytics.MerchantTotal, error)
}

// ChatExchange is one user prompt and the assistant's reply.
type ChatExchange struct {
	Prompt models.ChatMessage `json:"prompt"`
	Reply  models.ChatMessage `json:"reply"`
}

// ChatServicer defines the contract for the spending chatbot.
type ChatServicer interface {
	GetHistory(ctx context.Context, userID string, page pagination.PageRequest) (*pagination.PageResponse[models.ChatMessage], error)
	SendMessage(ctx context.Context, userID, content string) (*ChatExchange, error)
}
