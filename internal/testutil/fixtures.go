package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"smartspend/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TestPassword is the plaintext password of every fixture user.
const TestPassword = "password123"

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// Date returns midnight UTC of the given calendar date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		Username:     fmt.Sprintf("tester%d", nextID()),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestExpense creates a Dining expense for userID on date.
func CreateTestExpense(t *testing.T, db *gorm.DB, userID string, date time.Time, amount string, currency models.Currency) *models.Expense {
	t.Helper()

	return CreateTestExpenseWith(t, db, &models.Expense{
		UserID:        userID,
		EntryDate:     date,
		Amount:        decimal.RequireFromString(amount),
		Currency:      currency,
		MerchantName:  fmt.Sprintf("Merchant %d", nextID()),
		CategoryLabel: "Dining",
		SubCategory:   "Restaurant Meals",
		PaymentMethod: "Cash",
	})
}

// CreateTestExpenseWith inserts e as given.
func CreateTestExpenseWith(t *testing.T, db *gorm.DB, e *models.Expense) *models.Expense {
	t.Helper()

	if err := db.Create(e).Error; err != nil {
		t.Fatalf("failed to create test expense: %v", err)
	}
	return e
}
