package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"smartspend/internal/cache"
	apperrors "smartspend/internal/errors"
	"smartspend/internal/models"
	"smartspend/internal/taxonomy"
)

// expenseService is the ownership-scoped expense store. Every query filters
// by user_id, and every successful write invalidates that user's cached ranges.
type expenseService struct {
	db    *gorm.DB
	cache *cache.RangeCache
}

// NewExpenseService creates a new ExpenseServicer.
func NewExpenseService(db *gorm.DB, rangeCache *cache.RangeCache) ExpenseServicer {
	return &expenseService{db: db, cache: rangeCache}
}

// normalizeExpenseInput trims free-text fields and reduces the date and amount
// to their stored precision.
func normalizeExpenseInput(in ExpenseInput) ExpenseInput {
	in.EntryDate = models.DateOnly(in.EntryDate)
	in.Amount = in.Amount.Round(2)
	in.MerchantName = strings.TrimSpace(in.MerchantName)
	in.Description = strings.TrimSpace(in.Description)
	return in
}

func validateExpenseInput(in ExpenseInput) error {
	if in.EntryDate.IsZero() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "entry date is required")
	}
	if !in.Amount.IsPositive() {
		return apperrors.ErrInvalidAmount
	}
	if in.Amount.GreaterThanOrEqual(models.MaxAmount) {
		return apperrors.WithMessage(apperrors.ErrInvalidAmount, "amount must be less than 1000000000000")
	}
	if !taxonomy.IsCurrency(string(in.Currency)) {
		return apperrors.ErrInvalidCurrency
	}
	if !taxonomy.IsCategory(in.CategoryLabel) {
		return apperrors.ErrInvalidCategory
	}
	if !taxonomy.IsSubCategory(in.CategoryLabel, in.SubCategory) {
		return apperrors.ErrInvalidSubCategory
	}
	if !taxonomy.IsPaymentMethod(in.PaymentMethod) {
		return apperrors.ErrInvalidPaymentMethod
	}
	if utf8.RuneCountInString(in.MerchantName) > models.MaxMerchantLength {
		return apperrors.WithMessage(apperrors.ErrFieldTooLong, "merchant name must be at most 30 characters")
	}
	if utf8.RuneCountInString(in.Description) > models.MaxDescriptionLength {
		return apperrors.WithMessage(apperrors.ErrFieldTooLong, "description must be at most 70 characters")
	}
	return nil
}

// AddExpense validates and records a new expense for userID.
func (s *expenseService) AddExpense(ctx context.Context, userID string, in ExpenseInput) (*models.Expense, error) {
	in = normalizeExpenseInput(in)
	if err := validateExpenseInput(in); err != nil {
		return nil, err
	}

	expense := &models.Expense{
		UserID:        userID,
		EntryDate:     in.EntryDate,
		Amount:        in.Amount,
		Currency:      in.Currency,
		MerchantName:  in.MerchantName,
		CategoryLabel: in.CategoryLabel,
		SubCategory:   in.SubCategory,
		PaymentMethod: in.PaymentMethod,
		Description:   in.Description,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
			return dbError(err)
		}
		if count == 0 {
			return apperrors.ErrUserNotFound
		}

		if err := tx.Create(expense).Error; err != nil {
			return dbError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(userID)
	return expense, nil
}

// UpdateExpense overwrites the editable fields of an owned expense. It returns
// false when no expense with itemID belongs to userID.
func (s *expenseService) UpdateExpense(ctx context.Context, userID, itemID string, in ExpenseInput) (bool, error) {
	in = normalizeExpenseInput(in)
	if err := validateExpenseInput(in); err != nil {
		return false, err
	}

	result := s.db.WithContext(ctx).Model(&models.Expense{}).
		Where("item_id = ? AND user_id = ?", itemID, userID).
		Updates(map[string]interface{}{
			"entry_date":           in.EntryDate,
			"amount":               in.Amount,
			"currency":             in.Currency,
			"merchant_name":        in.MerchantName,
			"category_label":       in.CategoryLabel,
			"sub_category":         in.SubCategory,
			"payment_method":       in.PaymentMethod,
			"item_description_raw": in.Description,
		})
	if result.Error != nil {
		return false, dbError(result.Error)
	}
	if result.RowsAffected == 0 {
		return false, nil
	}

	s.cache.Invalidate(userID)
	return true, nil
}

// DeleteExpense hard-deletes an owned expense. Deleting something that is not
// there (or not owned) reports false without an error.
func (s *expenseService) DeleteExpense(ctx context.Context, userID, itemID string) (bool, error) {
	result := s.db.WithContext(ctx).
		Where("item_id = ? AND user_id = ?", itemID, userID).
		Delete(&models.Expense{})
	if result.Error != nil {
		return false, dbError(result.Error)
	}
	if result.RowsAffected == 0 {
		return false, nil
	}

	s.cache.Invalidate(userID)
	return true, nil
}

// GetExpenseByID returns the owned expense, or nil when it does not exist for
// this user.
func (s *expenseService) GetExpenseByID(ctx context.Context, userID, itemID string) (*models.Expense, error) {
	var expense models.Expense
	err := s.db.WithContext(ctx).
		Where("item_id = ? AND user_id = ?", itemID, userID).
		First(&expense).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, dbError(err)
	}
	return &expense, nil
}

// GetExpensesInRange returns the user's expenses dated within [start, end],
// newest first. Results are memoized until the user's next write or the cache
// TTL, whichever comes first.
func (s *expenseService) GetExpensesInRange(ctx context.Context, userID string, start, end time.Time) ([]models.Expense, error) {
	start, end = models.DateOnly(start), models.DateOnly(end)
	if start.After(end) {
		return nil, apperrors.ErrInvalidDateRange
	}

	if cached, ok := s.cache.Get(userID, start, end); ok {
		return cached, nil
	}
	version := s.cache.Version(userID)

	expenses := []models.Expense{}
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND entry_date >= ? AND entry_date <= ?", userID, start, end).
		Order("entry_date DESC").
		Order("timestamp DESC").
		Find(&expenses).Error
	if err != nil {
		return nil, dbError(err)
	}

	s.cache.Put(userID, start, end, version, expenses)
	return expenses, nil
}
