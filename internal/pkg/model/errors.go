package model

import "errors"

// ErrNoRecord indicates no record found error
var ErrNoRecord = errors.New("no record found")

// ErrMissingKey indicates the request carried no API key
var ErrMissingKey = errors.New("missing API key")

// ErrQuotaExceeded indicates the key used up its daily allotment
var ErrQuotaExceeded = errors.New("quota exceeded")

// ErrGlobalLimitReached indicates the shared daily call budget is spent
var ErrGlobalLimitReached = errors.New("global daily limit reached")

// ErrContention indicates the store transaction was aborted by a concurrent writer
var ErrContention = errors.New("transaction contention")

// ErrStoreUnavailable indicates the quota store cannot be reached
var ErrStoreUnavailable = errors.New("store unavailable")

type WrongFieldError struct {
	Field   string
	Message string
}

func (e *WrongFieldError) Error() string {
	return "wrong " + e.Field + ": " + e.Message
}

func NewWrongFieldError(field, message string) *WrongFieldError {
	return &WrongFieldError{Field: field, Message: message}
}
