// Package businessflow contains the core business logic and use cases for support ticket workflows
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Customer-related errors
	ErrCustomerNotFound = errors.New("customer not found")
	ErrAccountInactive  = errors.New("account is inactive")
	ErrStoreNotFound    = errors.New("store not found")
	ErrStoreInactive    = errors.New("store is inactive")

	// Purchase/product errors
	ErrPurchaseNotFound     = errors.New("purchase not found")
	ErrPurchaseAccessDenied = errors.New("purchase access denied")
	ErrProductNotFound      = errors.New("product not found")

	// Ticket-related errors
	ErrTicketNotFound       = errors.New("ticket not found")
	ErrTicketAccessDenied   = errors.New("ticket access denied")
	ErrDuplicateOpenTicket  = errors.New("an open ticket already exists for this purchase and product")
	ErrCategoryNotFound     = errors.New("support category not found")
	ErrCategoryRequired     = errors.New("a category or a custom category is required")
	ErrCategoryConflict     = errors.New("category and custom category cannot both be set")
	ErrDescriptionRequired  = errors.New("ticket description is required")
	ErrDescriptionTooLong   = errors.New("ticket description is too long")
	ErrCustomCategoryTooLong = errors.New("custom category is too long")
	ErrTooManyImages        = errors.New("too many ticket images")
	ErrInvalidTicketStatus  = errors.New("invalid ticket status")

	// Messaging errors
	ErrEmptyMessage      = errors.New("message has no text or media")
	ErrMessageTooLong    = errors.New("message is too long")
	ErrMessagingDisabled = errors.New("messaging is disabled for this role on this ticket")

	// Filter errors
	ErrInvalidPage     = errors.New("page must be at least 1")
	ErrInvalidPageSize = errors.New("page size must be between 1 and 100")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

func IsCustomerNotFound(err error) bool {
	return errors.Is(err, ErrCustomerNotFound)
}

func IsAccountInactive(err error) bool {
	return errors.Is(err, ErrAccountInactive)
}

func IsStoreNotFound(err error) bool {
	return errors.Is(err, ErrStoreNotFound)
}

func IsStoreInactive(err error) bool {
	return errors.Is(err, ErrStoreInactive)
}

func IsPurchaseNotFound(err error) bool {
	return errors.Is(err, ErrPurchaseNotFound)
}

func IsPurchaseAccessDenied(err error) bool {
	return errors.Is(err, ErrPurchaseAccessDenied)
}

func IsProductNotFound(err error) bool {
	return errors.Is(err, ErrProductNotFound)
}

func IsTicketNotFound(err error) bool {
	return errors.Is(err, ErrTicketNotFound)
}

func IsTicketAccessDenied(err error) bool {
	return errors.Is(err, ErrTicketAccessDenied)
}

func IsDuplicateOpenTicket(err error) bool {
	return errors.Is(err, ErrDuplicateOpenTicket)
}

func IsCategoryNotFound(err error) bool {
	return errors.Is(err, ErrCategoryNotFound)
}

func IsCategoryRequired(err error) bool {
	return errors.Is(err, ErrCategoryRequired)
}

func IsCategoryConflict(err error) bool {
	return errors.Is(err, ErrCategoryConflict)
}

func IsDescriptionRequired(err error) bool {
	return errors.Is(err, ErrDescriptionRequired)
}

func IsDescriptionTooLong(err error) bool {
	return errors.Is(err, ErrDescriptionTooLong)
}

func IsCustomCategoryTooLong(err error) bool {
	return errors.Is(err, ErrCustomCategoryTooLong)
}

func IsTooManyImages(err error) bool {
	return errors.Is(err, ErrTooManyImages)
}

func IsInvalidTicketStatus(err error) bool {
	return errors.Is(err, ErrInvalidTicketStatus)
}

func IsEmptyMessage(err error) bool {
	return errors.Is(err, ErrEmptyMessage)
}

func IsMessageTooLong(err error) bool {
	return errors.Is(err, ErrMessageTooLong)
}

func IsMessagingDisabled(err error) bool {
	return errors.Is(err, ErrMessagingDisabled)
}

func IsInvalidPage(err error) bool {
	return errors.Is(err, ErrInvalidPage)
}

func IsInvalidPageSize(err error) bool {
	return errors.Is(err, ErrInvalidPageSize)
}
