package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrNotFound is returned by catalog lookups that target a single record.
var ErrNotFound = errors.New("record not found")

var (
	// ErrInvalidQuantity is returned when an order quantity is outside [MinQuantity, MaxQuantity].
	ErrInvalidQuantity = errors.New("quantity out of range")

	// ErrInvalidPrice is returned when a product price is not a positive number.
	ErrInvalidPrice = errors.New("price must be positive")

	// ErrNameTooShort is returned when a product name has fewer than MinNameLength characters.
	ErrNameTooShort = errors.New("name too short")

	// ErrImageLimit is returned when a draft already holds MaxProductImages images.
	ErrImageLimit = errors.New("image limit reached")

	// ErrIncompleteDraft is returned by Complete when a required field was never collected.
	ErrIncompleteDraft = errors.New("draft is incomplete")
)
