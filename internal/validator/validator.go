// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"audycon/internal/models"
	"audycon/internal/uuid"
)

// Register installs the custom validators on Gin's binding engine. Call once
// at startup before handling requests.
func Register() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	// role: member of the closed role set (ADMIN, JEFE, CONTADOR, CLIENTE).
	_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return models.Role(fl.Field().String()).Valid()
	})

	// role_filter: a role or the literal "ALL".
	_ = v.RegisterValidation("role_filter", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "ALL" || models.Role(s).Valid()
	})

	// account_status: member of the closed status set.
	_ = v.RegisterValidation("account_status", func(fl validator.FieldLevel) bool {
		return models.Status(fl.Field().String()).Valid()
	})

	// account_id: well-formed UUID, the shape of every account id.
	_ = v.RegisterValidation("account_id", func(fl validator.FieldLevel) bool {
		return uuid.IsValid(fl.Field().String())
	})
}
