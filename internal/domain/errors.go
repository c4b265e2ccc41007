package domain

import "errors"

// Every failure the engine can return is one of these sentinels, possibly
// wrapped with call-site context. Callers match with errors.Is.
var (
	// Validation errors — caller input mistakes, checked before anything else.
	ErrAmountMustBePositive = errors.New("amount must be positive")
	ErrRentalDurationZero   = errors.New("rental duration cannot be zero")
	ErrSelfRentalNotAllowed = errors.New("self rental not allowed")

	// Lookup errors.
	ErrCarNotFound    = errors.New("car not found")
	ErrRentalNotFound = errors.New("rental not found")

	// State-conflict errors.
	ErrCarAlreadyRented = errors.New("car already rented")
	ErrCarAlreadyExists = errors.New("car already listed for owner")

	// Malformed principal address (empty or containing a key separator).
	ErrInvalidPrincipal = errors.New("invalid principal address")

	// Arithmetic errors. A balance update that would wrap aborts the
	// operation instead of corrupting the ledgers.
	ErrOverflow  = errors.New("arithmetic overflow")
	ErrUnderflow = errors.New("arithmetic underflow")

	// Balance-insufficiency errors.
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrBalanceNotAvailable = errors.New("balance not available for amount requested")

	// Authorization failure from the gate.
	ErrNotAuthorized = errors.New("caller not authorized for principal")

	// Lifecycle errors.
	ErrNotInitialized     = errors.New("escrow engine not initialized")
	ErrAlreadyInitialized = errors.New("escrow engine already initialized")
)
