package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "smartspend/internal/errors"
	"smartspend/internal/models"
	"smartspend/internal/services"
)

// DashboardHandler serves range aggregates.
type DashboardHandler struct {
	reportService services.ReportServicer
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(reportService services.ReportServicer) *DashboardHandler {
	return &DashboardHandler{reportService: reportService}
}

// TopMerchantsQuery holds the optional query parameters of the merchant ranking.
type TopMerchantsQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=50"`
}

func queryCurrency(c *gin.Context) models.Currency {
	if s := strings.ToUpper(strings.TrimSpace(c.Query("currency"))); s != "" {
		return models.Currency(s)
	}
	return models.CurrencyUSD
}

// GetDashboard returns every dashboard aggregate for a range
// @Summary     Get dashboard
// @Description Totals, daily series, top merchants and category breakdown for a date range, converted to one currency.
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Param       from     query string false "Start date (YYYY-MM-DD, default first of month)"
// @Param       to       query string false "End date (YYYY-MM-DD, default today)"
// @Param       currency query string false "Display currency (USD or KHR, default USD)"
// @Success     200 {object} services.Dashboard "Dashboard"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /dashboard [get]
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
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

	dashboard, err := h.reportService.GetDashboard(c.Request.Context(), userID, from, to, queryCurrency(c))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

// GetTopMerchants ranks merchants by spending for a range
// @Summary     Get top merchants
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Param       from     query string false "Start date (YYYY-MM-DD)"
// @Param       to       query string false "End date (YYYY-MM-DD)"
// @Param       currency query string false "Display currency (default USD)"
// @Param       limit    query int    false "Number of merchants (default 5, max 50)"
// @Success     200 {array}  analytics.MerchantTotal "Merchant ranking"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /dashboard/top-merchants [get]
func (h *DashboardHandler) GetTopMerchants(c *gin.Context) {
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

	var q TopMerchantsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	if q.Limit == 0 {
		q.Limit = 5
	}

	merchants, err := h.reportService.GetTopMerchants(c.Request.Context(), userID, from, to, queryCurrency(c), q.Limit)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"merchants": merchants})
}
