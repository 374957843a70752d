package apperrors

import (
	"fmt"
	"net/http"
)

/*
Этот файл содержит фабрики и предопределенные переменные
для ошибок бизнес-логики кредитов, подписок и ролей.
*/

// =========================================================================
// Фабричные ФУНКЦИИ (для оборачивания ошибок репозитория)
// =========================================================================

// ErrNotFound - фабрика для ошибки "не найдено" (404)
func ErrNotFound(err error, domain, message string) *AppError {
	return Wrap(err, CodeNotFound, domain, message, http.StatusNotFound)
}

// ErrConflict - общая фабрика для конфликтов (409)
func ErrConflict(err error, domain, message string) *AppError {
	return Wrap(err, CodeConflict, domain, message, http.StatusConflict)
}

// =========================================================================
// Фабричные ФУНКЦИИ (для создания новых ошибок)
// =========================================================================

// ErrInvalidOperation - фабрика для невалидных операций (400)
func ErrInvalidOperation(domain, message string) *AppError {
	return New(CodeInvalidOperation, domain, message, http.StatusBadRequest)
}

// ErrInvalidStatus - переход статуса не разрешен (409)
func ErrInvalidStatus(domain, message string) *AppError {
	return New(CodeInvalidStatus, domain, message, http.StatusConflict)
}

// ErrInsufficientCredits - у пользователя нет кредита на действие (402).
// В деталях возвращается текущий остаток, чтобы клиент мог его показать.
func ErrInsufficientCredits(remaining int) *AppError {
	return New(
		CodeInsufficientCredits,
		"credits",
		fmt.Sprintf("Insufficient credits: %d remaining", remaining),
		http.StatusPaymentRequired,
	).WithDetails(map[string]int{"remainingCredits": remaining})
}

// ErrConsistencyGap - пара роль/индекс разошлась, нужна сверка
func ErrConsistencyGap(err error, message string) *AppError {
	return Wrap(err, CodeConsistencyGap, "role_index", message, http.StatusInternalServerError)
}

// ErrTooManyRequests - сработал ограничитель частоты запросов (429)
func ErrTooManyRequests() *AppError {
	return New(CodeTooManyRequests, "rate_limit", "Too many requests", http.StatusTooManyRequests)
}

// =========================================================================
// Предопределенные ПЕРЕМЕННЫЕ (для частых, статичных ошибок)
// =========================================================================

// --- Plans ---
var ErrPlanNotFound = New(CodeNotFound, "plan", "Plan not found", http.StatusNotFound)
var ErrPlanInactive = New(CodeInvalidOperation, "plan", "Plan is not available for purchase", http.StatusBadRequest)

// --- Ledger ---
var ErrSubscriptionNotFound = New(CodeNotFound, "subscription", "Subscription not found", http.StatusNotFound)
var ErrInvalidBillingCycle = New(CodeValidationFailed, "subscription", "Invalid billing cycle", http.StatusBadRequest)
var ErrInvalidCreditAmount = New(CodeValidationFailed, "subscription", "Credit amount must be positive", http.StatusBadRequest)

// --- Roles ---
var ErrRoleNotFound = New(CodeNotFound, "role", "Role not found", http.StatusNotFound)
var ErrUnknownServiceTag = New(CodeValidationFailed, "role", "Unknown service tag", http.StatusBadRequest)
var ErrUnknownCounter = New(CodeValidationFailed, "role", "Unknown candidate counter", http.StatusBadRequest)

// --- Auth ---
var ErrInsufficientPermissions = New(CodeForbidden, "auth", "Insufficient permissions", http.StatusForbidden)
