package handlers

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "smartspend/internal/errors"
	"smartspend/internal/export"
	"smartspend/internal/models"
	"smartspend/internal/pagination"
	"smartspend/internal/services"
)

// ExpenseHandler handles expense-related requests.
type ExpenseHandler struct {
	expenseService services.ExpenseServicer
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(expenseService services.ExpenseServicer) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService}
}

// ExpenseRequest represents the payload for creating or replacing an expense.
// Amount accepts a JSON number or a decimal string.
type ExpenseRequest struct {
	EntryDate     string          `json:"entry_date" binding:"required"`
	Amount        decimal.Decimal `json:"amount" swaggertype:"string" example:"12.50"`
	Currency      string          `json:"currency" binding:"required,currency"`
	MerchantName  string          `json:"merchant_name" binding:"max=30"`
	CategoryLabel string          `json:"category_label" binding:"required,expense_category"`
	SubCategory   string          `json:"sub_category" binding:"required"`
	PaymentMethod string          `json:"payment_method" binding:"required,payment_method"`
	Description   string          `json:"item_description_raw" binding:"max=70"`
}

func (r ExpenseRequest) toInput() (services.ExpenseInput, error) {
	date, err := parseFlexibleTime(r.EntryDate)
	if err != nil {
		return services.ExpenseInput{}, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}
	return services.ExpenseInput{
		EntryDate:     date,
		Amount:        r.Amount,
		Currency:      models.Currency(r.Currency),
		MerchantName:  r.MerchantName,
		CategoryLabel: r.CategoryLabel,
		SubCategory:   r.SubCategory,
		PaymentMethod: r.PaymentMethod,
		Description:   r.Description,
	}, nil
}

func bindExpense(c *gin.Context) (services.ExpenseInput, error) {
	var req ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return services.ExpenseInput{}, bindError(err)
	}
	return req.toInput()
}

// CreateExpense handles recording a new expense
// @Summary     Create an expense
// @Description Record a new expense for the authenticated user
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body ExpenseRequest true "Expense details"
// @Success     201 {object} models.Expense "Expense created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses [post]
func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	in, err := bindExpense(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expense, err := h.expenseService.AddExpense(c.Request.Context(), userID, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"expense": expense})
}

// ListExpenses returns the user's expenses in a date range
// @Summary     List expenses
// @Description List expenses between from and to (inclusive), newest first. Defaults to the current month.
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       from      query string false "Start date (YYYY-MM-DD)"
// @Param       to        query string false "End date (YYYY-MM-DD)"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Expense] "Paginated expenses"
// @Failure     400 {object} ErrorResponse "Invalid date range"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses [get]
func (h *ExpenseHandler) ListExpenses(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	from, to, err := parseDateRange(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	expenses, err := h.expenseService.GetExpensesInRange(c.Request.Context(), userID, from, to)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, pagination.Slice(expenses, page))
}

// GetExpense returns a single expense
// @Summary     Get an expense
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Expense item ID"
// @Success     200 {object} models.Expense "Expense"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Router      /expenses/{id} [get]
func (h *ExpenseHandler) GetExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expense, err := h.expenseService.GetExpenseByID(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	if expense == nil {
		respondWithError(c, apperrors.ErrExpenseNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"expense": expense})
}

// UpdateExpense replaces the editable fields of an expense
// @Summary     Update an expense
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string         true "Expense item ID"
// @Param       request body ExpenseRequest true "Replacement expense details"
// @Success     200 {object} models.Expense "Updated expense"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Router      /expenses/{id} [put]
func (h *ExpenseHandler) UpdateExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	in, err := bindExpense(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	itemID := c.Param("id")
	updated, err := h.expenseService.UpdateExpense(c.Request.Context(), userID, itemID, in)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if !updated {
		respondWithError(c, apperrors.ErrExpenseNotFound)
		return
	}

	expense, err := h.expenseService.GetExpenseByID(c.Request.Context(), userID, itemID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if expense == nil {
		respondWithError(c, apperrors.ErrExpenseNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"expense": expense})
}

// DeleteExpense removes an expense
// @Summary     Delete an expense
// @Description Delete an expense. Deleting a missing or foreign expense reports deleted=false.
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Expense item ID"
// @Success     200 {object} map[string]bool "Deletion result"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/{id} [delete]
func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	deleted, err := h.expenseService.DeleteExpense(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// ExportExpenses streams the range as a CSV download
// @Summary     Export expenses as CSV
// @Tags        expenses
// @Produce     text/csv
// @Security    BearerAuth
// @Param       from query string false "Start date (YYYY-MM-DD)"
// @Param       to   query string false "End date (YYYY-MM-DD)"
// @Success     200 {file} file "CSV file"
// @Failure     400 {object} ErrorResponse "Invalid date range"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /expenses/export [get]
func (h *ExpenseHandler) ExportExpenses(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	from, to, err := parseDateRange(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenses, err := h.expenseService.GetExpensesInRange(c.Request.Context(), userID, from, to)
	if err != nil {
		respondWithError(c, err)
		return
	}

	// Render into a buffer first so a write failure can still become a JSON error.
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, expenses); err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+export.Filename(from, to))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
