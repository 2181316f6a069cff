// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"avrexpense/internal/models"
)

var (
	// E.164: a plus sign followed by up to 15 digits, no leading zero.
	phoneRegex = regexp.MustCompile(`^\+[1-9]\d{6,14}$`)

	// Department names as entered on project budgets, e.g. "Art", "Post-Production".
	departmentRegex = regexp.MustCompile(`^[\p{L}\p{N}][\p{L}\p{N} &/-]{0,63}$`)
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("user_role", validateUserRole)
		_ = v.RegisterValidation("department", validateDepartment)
		_ = v.RegisterValidation("phone", validatePhone)
	}
}

func validateUserRole(fl validator.FieldLevel) bool {
	return models.UserRole(fl.Field().String()).Valid()
}

func validateDepartment(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return s == strings.TrimSpace(s) && departmentRegex.MatchString(s)
}

func validatePhone(fl validator.FieldLevel) bool {
	return phoneRegex.MatchString(fl.Field().String())
}
