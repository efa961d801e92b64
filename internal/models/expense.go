package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"smartspend/internal/uuid"
)

// Currency is an ISO 4217 code accepted for expenses.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyKHR Currency = "KHR"
)

// TransactionTypeExpense is the only transaction type recorded.
const TransactionTypeExpense = "Expense"

// Field limits shared by validation and the schema.
const (
	MaxMerchantLength    = 30
	MaxDescriptionLength = 70
	MaxUsernameLength    = 30
)

// MaxAmount is the exclusive upper bound on an expense amount, the first
// value that no longer fits NUMERIC(14,2).
var MaxAmount = decimal.New(1, 12)

// Expense represents a single recorded spending transaction owned by one user.
type Expense struct {
	ItemID          string          `gorm:"column:item_id;type:varchar(36);primaryKey" json:"item_id"`
	UserID          string          `gorm:"column:user_id;type:varchar(32);not null;index:idx_expenses_user_date,priority:1" json:"user_id"`
	EntryDate       time.Time       `gorm:"column:entry_date;type:date;not null;index:idx_expenses_user_date,priority:2" json:"entry_date"`
	Amount          decimal.Decimal `gorm:"column:amount;type:numeric(14,2);not null" json:"amount"`
	Currency        Currency        `gorm:"column:currency;type:varchar(3);not null" json:"currency"`
	MerchantName    string          `gorm:"column:merchant_name;size:30" json:"merchant_name"`
	TransactionType string          `gorm:"column:transaction_type;size:16;not null;default:'Expense'" json:"transaction_type"`
	CategoryLabel   string          `gorm:"column:category_label;not null" json:"category_label"`
	SubCategory     string          `gorm:"column:sub_category;not null" json:"sub_category"`
	PaymentMethod   string          `gorm:"column:payment_method;not null" json:"payment_method"`
	Description     string          `gorm:"column:item_description_raw;size:70" json:"item_description_raw"`
	Timestamp       time.Time       `gorm:"column:timestamp;not null;autoCreateTime" json:"timestamp"`
}

// TableName pins the table name to the published schema.
func (Expense) TableName() string { return "expenses" }

// BeforeCreate hook generates a UUIDv7 item id and fixes the transaction type
func (e *Expense) BeforeCreate(tx *gorm.DB) error {
	if e.ItemID == "" {
		e.ItemID = uuid.New()
	}
	e.TransactionType = TransactionTypeExpense
	return nil
}

// DateOnly truncates t to midnight UTC of its calendar date. Entry dates are
// always stored this way so range bounds compare as whole days.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
