package handlers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apperrors "smartspend/internal/errors"
	"smartspend/internal/middleware"
	"smartspend/internal/models"
)

// now is the handlers' clock, replaced in tests.
var now = time.Now

// ErrorDetail represents the inner error object in an error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// getUserID extracts the authenticated user ID from the Gin context.
// Returns ErrUnauthorized if not present.
func getUserID(c *gin.Context) (string, error) {
	userID := c.GetString(middleware.UserIDKey)
	if userID == "" {
		return "", apperrors.ErrUnauthorized
	}
	return userID, nil
}

// parseFlexibleTime accepts a calendar date (2006-01-02) or an RFC 3339
// timestamp and returns the calendar date it names.
func parseFlexibleTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return models.DateOnly(t), nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD", s)
}

// parseDateRange reads the from/to query parameters. A missing from defaults
// to the first of the current month and a missing to defaults to today.
func parseDateRange(c *gin.Context) (from, to time.Time, err error) {
	today := models.DateOnly(now())
	from = time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	to = today

	if s := c.Query("from"); s != "" {
		if from, err = parseFlexibleTime(s); err != nil {
			return time.Time{}, time.Time{}, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
		}
	}
	if s := c.Query("to"); s != "" {
		if to, err = parseFlexibleTime(s); err != nil {
			return time.Time{}, time.Time{}, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
		}
	}
	if from.After(to) {
		return time.Time{}, time.Time{}, apperrors.ErrInvalidDateRange
	}
	return from, to, nil
}

// bindError maps a binding failure to the most specific AppError. Failures of
// the taxonomy tags keep their own codes; everything else is INVALID_INPUT.
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		switch fe.Tag() {
		case "currency":
			return apperrors.ErrInvalidCurrency
		case "payment_method":
			return apperrors.ErrInvalidPaymentMethod
		case "expense_category":
			return apperrors.ErrInvalidCategory
		case "max":
			return apperrors.WithMessage(apperrors.ErrFieldTooLong, fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
		}
	}
	return apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
}

// respondWithError records err for middleware.ErrorHandler, which renders the
// JSON error body, and stops the handler chain.
func respondWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
