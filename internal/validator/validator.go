// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"smartspend/internal/taxonomy"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterOn(v)
	}
}

// RegisterOn registers the custom tags on v.
func RegisterOn(v *validator.Validate) {
	_ = v.RegisterValidation("currency", validateCurrency)
	_ = v.RegisterValidation("payment_method", validatePaymentMethod)
	_ = v.RegisterValidation("expense_category", validateExpenseCategory)
}

func validateCurrency(fl validator.FieldLevel) bool {
	return taxonomy.IsCurrency(fl.Field().String())
}

func validatePaymentMethod(fl validator.FieldLevel) bool {
	return taxonomy.IsPaymentMethod(fl.Field().String())
}

func validateExpenseCategory(fl validator.FieldLevel) bool {
	return taxonomy.IsCategory(fl.Field().String())
}
