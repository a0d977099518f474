package domain

import "errors"

var (
	// ErrNotFound is returned when the requested resource does not exist
	// or is not visible to the requester. Payments are only visible to
	// their buyer and seller, so a foreign payment id maps here rather
	// than leaking its existence.
	ErrNotFound = errors.New("resource not found")
	// ErrNotAvailable means the sale exists but cannot be purchased in
	// its current status.
	ErrNotAvailable = errors.New("sale not found or not available")
	// ErrInvalidOperation covers requests that are well formed but never
	// legal, such as buying your own item.
	ErrInvalidOperation = errors.New("invalid operation")
	// ErrInvalidState signals an operation that is not valid for the
	// entity's current lifecycle status, e.g. refunding a pending payment.
	ErrInvalidState = errors.New("invalid state for operation")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
	ErrRateLimited  = errors.New("rate limited")
	// ErrSignatureInvalid is returned when a webhook payload fails
	// signature verification. Nothing may be processed after this error.
	ErrSignatureInvalid = errors.New("webhook signature verification failed")
	// ErrGateway wraps failures of the external payment processor.
	ErrGateway = errors.New("payment gateway error")
)
