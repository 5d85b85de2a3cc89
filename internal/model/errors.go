package model

import "errors"

var (
	// ErrNotFound is returned by stores when no row matches the lookup.
	ErrNotFound = errors.New("not found")
	// ErrCodeAlreadyUsed is returned when a conditional redeem finds the code already consumed.
	ErrCodeAlreadyUsed = errors.New("authorization code already used")
)
