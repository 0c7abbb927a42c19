package domain

import "errors"

// Domain errors
var (
	// Lifecycle errors
	ErrAlreadyInitialized = errors.New("engine already initialized")
	ErrNotInitialized     = errors.New("engine not initialized")

	// Authorization errors
	ErrUnauthorized  = errors.New("caller is not authorized")
	ErrNotEventOwner = errors.New("you are not creator of this event")

	// Event errors
	ErrEventNotFound      = errors.New("event not found")
	ErrEventAlreadyExists = errors.New("event already exists")
	ErrTimestampInPast    = errors.New("timestamp less then current")
	ErrEventDeclined      = errors.New("event is declined")
	ErrEventExpired       = errors.New("event has expired")

	// Settlement errors
	ErrSettlementNotFound = errors.New("settlement not found")

	// Payment errors
	ErrWrongUserAddress      = errors.New("wrong user address")
	ErrInsufficientBalance   = errors.New("insufficient token balance")
	ErrInsufficientAllowance = errors.New("insufficient token allowance")
	ErrOverflow              = errors.New("amount overflows representable range")
	ErrCapacityExceeded      = errors.New("event capacity exceeded")

	// Validation errors
	ErrInvalidEventID     = errors.New("invalid event id")
	ErrInvalidUserID      = errors.New("invalid user id")
	ErrInvalidCreatorID   = errors.New("invalid creator id")
	ErrInvalidAddress     = errors.New("invalid address")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidTicketCount = errors.New("ticket count must be greater than zero")
)

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrEventNotFound) ||
		errors.Is(err, ErrSettlementNotFound)
}

// IsAuthError checks if the error is an authorization error
func IsAuthError(err error) bool {
	return errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrNotEventOwner) ||
		errors.Is(err, ErrWrongUserAddress)
}

// IsConflictError checks if the error is a conflict error
func IsConflictError(err error) bool {
	return errors.Is(err, ErrAlreadyInitialized) ||
		errors.Is(err, ErrEventAlreadyExists) ||
		errors.Is(err, ErrEventDeclined) ||
		errors.Is(err, ErrEventExpired) ||
		errors.Is(err, ErrCapacityExceeded)
}

// IsPaymentError checks if the error came out of the settlement path
func IsPaymentError(err error) bool {
	return errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrInsufficientAllowance) ||
		errors.Is(err, ErrOverflow)
}

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidEventID) ||
		errors.Is(err, ErrInvalidUserID) ||
		errors.Is(err, ErrInvalidCreatorID) ||
		errors.Is(err, ErrInvalidAddress) ||
		errors.Is(err, ErrInvalidRole) ||
		errors.Is(err, ErrInvalidTicketCount) ||
		errors.Is(err, ErrTimestampInPast)
}
