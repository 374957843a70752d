package validator

import (
	"log"

	"recruitportal_backend/internal/models"

	"github.com/go-playground/validator/v10"
)

// registerCustomRules регистрирует кастомные правила валидации
func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			// Ошибка времени запуска: приложение не должно стартовать
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	// -----------------------------------------------------------------
	// Правила на основе statuses.go
	// -----------------------------------------------------------------
	mustRegister("billing-cycle", validateBillingCycle)
	mustRegister("role-status", validateRoleStatus)

	// -----------------------------------------------------------------
	// Правила на основе service_tag.go
	// -----------------------------------------------------------------
	mustRegister("service-tag", validateServiceTag)

	// Счетчики кандидатов: только неотрицательные значения
	mustRegister("counter-keys", validateCounterValues)
}

func validateBillingCycle(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // пустые значения проверяет 'required'
	}
	return models.BillingCycle(value).IsValid()
}

func validateRoleStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return models.RoleStatus(value).IsValid()
}

func validateServiceTag(fl validator.FieldLevel) bool {
	return models.ServiceTag(fl.Field().Int()).IsValid()
}

func validateCounterValues(fl validator.FieldLevel) bool {
	iter := fl.Field().MapRange()
	for iter.Next() {
		if iter.Value().Int() < 0 {
			return false
		}
	}
	return true
}
