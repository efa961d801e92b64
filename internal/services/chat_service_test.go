package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"smartspend/internal/analytics"
	"smartspend/internal/models"
	"smartspend/internal/pagination"
	"smartspend/internal/testutil"
)

var chatNow = time.Date(2024, 7, 16, 10, 0, 0, 0, time.UTC)

func newTestChatService(db *gorm.DB) *chatService {
	users := NewUserService(db)
	reports := NewReportService(newTestExpenseService(db))
	return &chatService{db: db, users: users, reports: reports, now: func() time.Time { return chatNow }}
}

// failingReports always fails, to exercise the apology path.
type failingReports struct{}

func (failingReports) GetDashboard(context.Context, string, time.Time, time.Time, models.Currency) (*Dashboard, error) {
	return nil, errors.New("boom")
}

func (failingReports) GetTotal(context.Context, string, time.Time, time.Time, models.Currency) (decimal.Decimal, error) {
	return decimal.Zero, errors.New("boom")
}

func (failingReports) GetTopMerchants(context.Context, string, time.Time, time.Time, models.Currency, int) ([]analytics.MerchantTotal, error) {
	return nil, errors.New("boom")
}

func TestChatReply(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := newTestChatService(db)
	user := testutil.CreateTestUser(t, db)

	// June 2024 is "last month" relative to chatNow.
	testutil.CreateTestExpense(t, db, user.UserID, testutil.Date(2024, 6, 1), "1000", models.CurrencyUSD)
	testutil.CreateTestExpense(t, db, user.UserID, testutil.Date(2024, 6, 20), "8200", models.CurrencyKHR)
	testutil.CreateTestExpense(t, db, user.UserID, testutil.Date(2024, 5, 3), "50", models.CurrencyUSD)
	testutil.CreateTestExpenseWith(t, db, &models.Expense{
		UserID: user.UserID, EntryDate: testutil.Date(2024, 7, 10), Amount: decimal.NewFromInt(12),
		Currency: models.CurrencyUSD, MerchantName: "Brown Coffee", CategoryLabel: "Dining",
		SubCategory: "Drinks", PaymentMethod: "Cash",
	})

	tests := []struct {
		name   string
		prompt string
		want   []string
	}{
		{"greeting_hello", "Hello there", []string{"Hello " + user.Username + "!"}},
		{"greeting_hi_word", "hi", []string{"Hello " + user.Username + "!"}},
		{"last_month_total", "How much did I spend last month?", []string{"**$1,002.00**", "converted to USD"}},
		{"top_merchants", "What are my top 5 merchants?", []string{"1. Brown Coffee: $12.00"}},
		{"compare_named_months", "Compare spending: May vs June", []string{"May 2024: $50.00", "June 2024: $1,002.00", "$952.00 more in June 2024"}},
		{"compare_defaults_to_may_june", "compare please", []string{"May 2024: $50.00", "June 2024: $1,002.00"}},
		{"compare_reverse_order", "compare june and may", []string{"June 2024: $1,002.00", "May 2024: $50.00", "$952.00 less in May 2024"}},
		{"thanks", "Thanks a lot", []string{"You're welcome!"}},
		{"fallback_help", "what is the weather", []string{"I'm not sure about that", "- Top merchants"}},
		{"hi_inside_word_is_not_greeting", "this is nothing", []string{"I'm not sure about that"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.reply(ctx, user, tt.prompt)
			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("reply to %q = %q, want it to contain %q", tt.prompt, got, want)
				}
			}
		})
	}
}

func TestChatReply_FirstRuleWins(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := newTestChatService(db)
	user := testutil.CreateTestUser(t, db)

	got := svc.reply(context.Background(), user, "hello, how much did I spend last month? thanks")
	if !strings.HasPrefix(got, "Hello ") {
		t.Errorf("expected greeting to win, got %q", got)
	}
}

func TestChatReply_AnalysisErrorApologizes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := newTestChatService(db)
	svc.reports = failingReports{}
	user := testutil.CreateTestUser(t, db)

	for _, prompt := range []string{"how much last month", "top merchants", "compare may june"} {
		if got := svc.reply(context.Background(), user, prompt); got != chatErrorReply {
			t.Errorf("reply to %q = %q, want apology", prompt, got)
		}
	}
}

func TestSendMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("persists_exchange_after_welcome", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestChatService(db)
		user := testutil.CreateTestUser(t, db)

		exchange, err := svc.SendMessage(ctx, user.UserID, "  thanks!  ")
		testutil.AssertNoError(t, err)
		if exchange.Prompt.Content != "thanks!" {
			t.Errorf("expected trimmed prompt, got %q", exchange.Prompt.Content)
		}
		if exchange.Reply.Content != chatThanksReply {
			t.Errorf("unexpected reply %q", exchange.Reply.Content)
		}

		history, err := svc.GetHistory(ctx, user.UserID, pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if history.TotalItems != 3 {
			t.Fatalf("expected welcome + 2 messages, got %d", history.TotalItems)
		}
		roles := []models.ChatRole{history.Data[0].Role, history.Data[1].Role, history.Data[2].Role}
		want := []models.ChatRole{models.ChatRoleAssistant, models.ChatRoleUser, models.ChatRoleAssistant}
		for i := range want {
			if roles[i] != want[i] {
				t.Errorf("message %d: expected role %s, got %s", i, want[i], roles[i])
			}
		}
		if !strings.HasPrefix(history.Data[0].Content, "Hi "+user.Username) {
			t.Errorf("expected welcome first, got %q", history.Data[0].Content)
		}
	})

	t.Run("empty_message", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestChatService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.SendMessage(ctx, user.UserID, "   ")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("too_long", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestChatService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.SendMessage(ctx, user.UserID, strings.Repeat("a", maxPromptLength+1))
		testutil.AssertAppError(t, err, "FIELD_TOO_LONG")
	})

	t.Run("unknown_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestChatService(db)

		_, err := svc.SendMessage(ctx, "USR0MISSING", "hello")
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})
}

func TestGetHistory(t *testing.T) {
	ctx := context.Background()

	t.Run("fresh_history_starts_with_welcome", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestChatService(db)
		user := testutil.CreateTestUser(t, db)

		history, err := svc.GetHistory(ctx, user.UserID, pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if history.TotalItems != 1 || history.Data[0].Role != models.ChatRoleAssistant {
			t.Fatalf("expected single welcome message, got %+v", history.Data)
		}

		// a second read does not greet again
		history, _ = svc.GetHistory(ctx, user.UserID, pagination.PageRequest{})
		if history.TotalItems != 1 {
			t.Errorf("expected welcome once, got %d messages", history.TotalItems)
		}
	})

	t.Run("histories_are_per_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestChatService(db)
		alice := testutil.CreateTestUser(t, db)
		bob := testutil.CreateTestUser(t, db)

		_, err := svc.SendMessage(ctx, alice.UserID, "hello")
		testutil.AssertNoError(t, err)

		history, err := svc.GetHistory(ctx, bob.UserID, pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if history.TotalItems != 1 {
			t.Errorf("expected bob to see only his welcome, got %d", history.TotalItems)
		}
	})

	t.Run("paginated", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestChatService(db)
		user := testutil.CreateTestUser(t, db)

		for i := 0; i < 3; i++ {
			svc.now = func() time.Time { return chatNow.Add(time.Duration(i) * time.Minute) }
			if _, err := svc.SendMessage(ctx, user.UserID, "thanks"); err != nil {
				t.Fatalf("send failed: %v", err)
			}
		}

		page, err := svc.GetHistory(ctx, user.UserID, pagination.PageRequest{Page: 2, PageSize: 3})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 7 || page.TotalPages != 3 || len(page.Data) != 3 {
			t.Errorf("unexpected page: total=%d pages=%d len=%d", page.TotalItems, page.TotalPages, len(page.Data))
		}
	})
}

func TestFormatUSD(t *testing.T) {
	tests := map[string]string{
		"0":           "$0.00",
		"12.5":        "$12.50",
		"1002":        "$1,002.00",
		"1234567.891": "$1,234,567.89",
		"-950":        "-$950.00",
	}
	for in, want := range tests {
		if got := formatUSD(decimal.RequireFromString(in)); got != want {
			t.Errorf("formatUSD(%s) = %s, want %s", in, got, want)
		}
	}
}
