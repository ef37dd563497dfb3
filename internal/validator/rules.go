package validator

import (
	"log"
	"strings"

	"finley_backend/internal/models"

	"github.com/go-playground/validator/v10"
)

func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			// a broken rule set is a startup bug
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	mustRegister("is-user-role", validateUserRole)
	mustRegister("is-review-decision", validateReviewDecision)
	mustRegister("safe-filename", validateSafeFilename)
}

// Empty values pass; 'required' handles them.

func validateUserRole(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return models.UserRole(value).Valid()
}

func validateReviewDecision(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	switch models.ReviewDecision(value) {
	case models.ReviewApproved, models.ReviewChangesRequested:
		return true
	default:
		return false
	}
}

func validateSafeFilename(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return !strings.ContainsAny(value, `/\`) && value != "." && value != ".."
}
