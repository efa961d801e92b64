package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"smartspend/internal/models"
	"smartspend/internal/taxonomy"
)

// TaxonomyResponse lists the accepted values of the classification fields.
type TaxonomyResponse struct {
	Categories     []taxonomy.Category `json:"categories"`
	PaymentMethods []string            `json:"payment_methods"`
	Currencies     []models.Currency   `json:"currencies"`
}

// GetTaxonomy returns the category, payment method and currency tables
// @Summary     Get taxonomy
// @Tags        taxonomy
// @Produce     json
// @Success     200 {object} TaxonomyResponse "Accepted values"
// @Router      /taxonomy [get]
func GetTaxonomy(c *gin.Context) {
	c.JSON(http.StatusOK, TaxonomyResponse{
		Categories:     taxonomy.Categories(),
		PaymentMethods: taxonomy.PaymentMethods(),
		Currencies:     taxonomy.Currencies(),
	})
}
