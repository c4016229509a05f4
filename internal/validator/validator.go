// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"carteira/internal/models"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("bank_code", validateBankCode)
		_ = v.RegisterValidation("account_kind", validateAccountKind)
	}
}

func validateBankCode(fl validator.FieldLevel) bool {
	return models.Bank(fl.Field().String()).Valid()
}

func validateAccountKind(fl validator.FieldLevel) bool {
	return models.AccountKind(fl.Field().String()).Valid()
}
