package validator

import (
	"testing"

	"github.com/go-playground/validator/v10"
)

func newValidate(t *testing.T) *validator.Validate {
	t.Helper()
	v := validator.New()
	for tag, fn := range map[string]validator.Func{
		"user_role":  validateUserRole,
		"department": validateDepartment,
		"phone":      validatePhone,
	} {
		if err := v.RegisterValidation(tag, fn); err != nil {
			t.Fatalf("register %s: %v", tag, err)
		}
	}
	return v
}

func TestCustomValidators(t *testing.T) {
	v := newValidate(t)

	tests := []struct {
		tag   string
		value string
		valid bool
	}{
		{"user_role", "APPROVER", true},
		{"user_role", "PRODUCTION_HEAD", true},
		{"user_role", "approver", false},
		{"user_role", "", false},
		{"department", "Marketing", true},
		{"department", "Post-Production", true},
		{"department", "Hair & Makeup", true},
		{"department", " Marketing", false},
		{"department", "Marketing ", false},
		{"department", "", false},
		{"department", "-Art", false},
		{"phone", "+15551234567", true},
		{"phone", "+919876543210", true},
		{"phone", "5551234567", false},
		{"phone", "+0123456789", false},
		{"phone", "+1555abc4567", false},
	}
	for _, tt := range tests {
		err := v.Var(tt.value, tt.tag)
		if (err == nil) != tt.valid {
			t.Errorf("%s(%q): valid = %v, want %v", tt.tag, tt.value, err == nil, tt.valid)
		}
	}
}
