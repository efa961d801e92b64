package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"smartspend/internal/analytics"
	apperrors "smartspend/internal/errors"
	"smartspend/internal/logger"
	"smartspend/internal/models"
	"smartspend/internal/pagination"
)

const (
	maxPromptLength     = 500
	chatTopMerchants    = 5
	chatLookbackDays    = 30
	chatErrorReply      = "I encountered an error while analyzing your data. Please try again."
	chatThanksReply     = "You're welcome! Is there anything else you'd like to know about your finances?"
	chatHelpReply       = "I'm not sure about that. I can help you with:\n- Spending analysis\n- Top merchants\n- Monthly comparisons"
	chatGreetingReply   = "Hello %s! How can I help you with your finances today?"
	chatWelcomeMessage  = "Hi %s! I'm your personal financial coach. How can I help you analyze your spending today?"
	chatNoMerchantReply = "You have no spending recorded in the last 30 days."
)

var (
	wordHi    = regexp.MustCompile(`\bhi\b`)
	monthName = regexp.MustCompile(`\b(january|february|march|april|may|june|july|august|september|october|november|december)\b`)
)

// chatRule is one row of the dispatch table. Rules are tried in order and
// the first match answers.
type chatRule struct {
	name    string
	matches func(prompt string) bool
	answer  func(s *chatService, ctx context.Context, user *models.User, prompt string) (string, error)
}

var chatRules = []chatRule{
	{
		name: "greeting",
		matches: func(p string) bool {
			return strings.Contains(p, "hello") || wordHi.MatchString(p)
		},
		answer: func(_ *chatService, _ context.Context, user *models.User, _ string) (string, error) {
			return fmt.Sprintf(chatGreetingReply, user.Username), nil
		},
	},
	{
		name: "last_month",
		matches: func(p string) bool {
			return strings.Contains(p, "how much") && strings.Contains(p, "last month")
		},
		answer: (*chatService).lastMonthReply,
	},
	{
		name: "top_merchants",
		matches: func(p string) bool {
			return strings.Contains(p, "top") && (strings.Contains(p, "merchant") || strings.Contains(p, "stores"))
		},
		answer: (*chatService).topMerchantsReply,
	},
	{
		name:    "compare_months",
		matches: func(p string) bool { return strings.Contains(p, "compare") },
		answer:  (*chatService).compareMonthsReply,
	},
	{
		name:    "thanks",
		matches: func(p string) bool { return strings.Contains(p, "thank") },
		answer: func(*chatService, context.Context, *models.User, string) (string, error) {
			return chatThanksReply, nil
		},
	},
}

// chatService answers spending questions with a fixed rule table and keeps
// each user's conversation in chat_messages.
type chatService struct {
	db      *gorm.DB
	users   UserServicer
	reports ReportServicer
	now     func() time.Time
}

// NewChatService creates a new ChatServicer.
func NewChatService(db *gorm.DB, users UserServicer, reports ReportServicer) ChatServicer {
	return &chatService{db: db, users: users, reports: reports, now: time.Now}
}

// GetHistory returns the user's conversation oldest first. A user without
// history is greeted first.
func (s *chatService) GetHistory(ctx context.Context, userID string, page pagination.PageRequest) (*pagination.PageResponse[models.ChatMessage], error) {
	page.Defaults()

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	if err := s.ensureWelcome(db, user, s.now()); err != nil {
		return nil, err
	}

	var totalItems int64
	base := db.Model(&models.ChatMessage{}).Where("user_id = ?", userID)
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, dbError(err)
	}

	var messages []models.ChatMessage
	err = db.Where("user_id = ?", userID).
		Order("created_at ASC").
		Scopes(pagination.Paginate(page)).
		Find(&messages).Error
	if err != nil {
		return nil, dbError(err)
	}

	resp := pagination.NewPageResponse(messages, page.Page, page.PageSize, totalItems)
	return &resp, nil
}

// SendMessage records the prompt, answers it and records the answer.
func (s *chatService) SendMessage(ctx context.Context, userID, content string) (*ChatExchange, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "message cannot be empty")
	}
	if utf8.RuneCountInString(content) > maxPromptLength {
		return nil, apperrors.WithMessage(apperrors.ErrFieldTooLong, "message must be at most 500 characters")
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	answer := s.reply(ctx, user, content)

	exchange := &ChatExchange{
		Prompt: models.ChatMessage{UserID: userID, Role: models.ChatRoleUser, Content: content, CreatedAt: now},
		Reply:  models.ChatMessage{UserID: userID, Role: models.ChatRoleAssistant, Content: answer, CreatedAt: now.Add(time.Millisecond)},
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ensureWelcome(tx, user, now.Add(-time.Millisecond)); err != nil {
			return err
		}
		if err := tx.Create(&exchange.Prompt).Error; err != nil {
			return dbError(err)
		}
		if err := tx.Create(&exchange.Reply).Error; err != nil {
			return dbError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return exchange, nil
}

func (s *chatService) ensureWelcome(db *gorm.DB, user *models.User, at time.Time) error {
	var count int64
	if err := db.Model(&models.ChatMessage{}).Where("user_id = ?", user.UserID).Count(&count).Error; err != nil {
		return dbError(err)
	}
	if count > 0 {
		return nil
	}

	welcome := &models.ChatMessage{
		UserID:    user.UserID,
		Role:      models.ChatRoleAssistant,
		Content:   fmt.Sprintf(chatWelcomeMessage, user.Username),
		CreatedAt: at,
	}
	if err := db.Create(welcome).Error; err != nil {
		return dbError(err)
	}
	return nil
}

// reply runs the dispatch table. Failures while analyzing are logged and
// answered with a fixed apology instead of failing the exchange.
func (s *chatService) reply(ctx context.Context, user *models.User, prompt string) string {
	lower := strings.ToLower(prompt)
	for _, rule := range chatRules {
		if !rule.matches(lower) {
			continue
		}
		answer, err := rule.answer(s, ctx, user, lower)
		if err != nil {
			logger.Get().Errorw("chat analysis failed", "rule", rule.name, "user_id", user.UserID, "error", err)
			return chatErrorReply
		}
		return answer
	}
	return chatHelpReply
}

func (s *chatService) lastMonthReply(ctx context.Context, user *models.User, _ string) (string, error) {
	start, end := analytics.PreviousMonth(s.now())
	total, err := s.reports.GetTotal(ctx, user.UserID, start, end, models.CurrencyUSD)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Last month, you spent **%s** (converted to USD for consistency).", formatUSD(total)), nil
}

func (s *chatService) topMerchantsReply(ctx context.Context, user *models.User, _ string) (string, error) {
	start, end := analytics.LastDays(s.now(), chatLookbackDays)
	top, err := s.reports.GetTopMerchants(ctx, user.UserID, start, end, models.CurrencyUSD, chatTopMerchants)
	if err != nil {
		return "", err
	}
	if len(top) == 0 {
		return chatNoMerchantReply, nil
	}

	var b strings.Builder
	b.WriteString("Here are your top 5 merchants by spending (in USD):\n")
	for i, m := range top {
		fmt.Fprintf(&b, "%d. %s: %s\n", i+1, m.Merchant, formatUSD(m.Amount))
	}
	return b.String(), nil
}

func (s *chatService) compareMonthsReply(ctx context.Context, user *models.User, prompt string) (string, error) {
	first, second := time.May, time.June
	if months := mentionedMonths(prompt); len(months) >= 2 {
		first, second = months[0], months[1]
	}

	now := s.now()
	firstStart, firstEnd := analytics.MostRecentMonth(now, first)
	secondStart, secondEnd := analytics.MostRecentMonth(now, second)

	firstTotal, err := s.reports.GetTotal(ctx, user.UserID, firstStart, firstEnd, models.CurrencyUSD)
	if err != nil {
		return "", err
	}
	secondTotal, err := s.reports.GetTotal(ctx, user.UserID, secondStart, secondEnd, models.CurrencyUSD)
	if err != nil {
		return "", err
	}

	firstLabel := firstStart.Format("January 2006")
	secondLabel := secondStart.Format("January 2006")

	var verdict string
	switch diff := secondTotal.Sub(firstTotal); {
	case diff.IsPositive():
		verdict = fmt.Sprintf("You spent %s more in %s.", formatUSD(diff), secondLabel)
	case diff.IsNegative():
		verdict = fmt.Sprintf("You spent %s less in %s.", formatUSD(diff.Abs()), secondLabel)
	default:
		verdict = "Your spending was the same in both months."
	}

	return fmt.Sprintf("%s: %s\n%s: %s\n%s",
		firstLabel, formatUSD(firstTotal), secondLabel, formatUSD(secondTotal), verdict), nil
}

// mentionedMonths returns the distinct month names in prompt in order of
// appearance.
func mentionedMonths(prompt string) []time.Month {
	var months []time.Month
	seen := make(map[time.Month]bool)
	for _, name := range monthName.FindAllString(prompt, -1) {
		for m := time.January; m <= time.December; m++ {
			if strings.EqualFold(m.String(), name) && !seen[m] {
				seen[m] = true
				months = append(months, m)
			}
		}
	}
	return months
}

// formatUSD renders d as $1,234.56.
func formatUSD(d decimal.Decimal) string {
	fixed := d.Abs().StringFixed(2)
	whole, frac := fixed[:len(fixed)-3], fixed[len(fixed)-3:]

	var b strings.Builder
	if d.IsNegative() {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteString(frac)
	return b.String()
}
