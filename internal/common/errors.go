// Package common holds the errors, calendar dates and text helpers shared
// by every feature of the game backend.
//
// Handlers compare against these sentinels with errors.Is to pick the
// HTTP status or the chat reply.
package common

import "errors"

// Daily bonus errors
var (
	// ErrAlreadyClaimed: the bonus for today has already been taken
	ErrAlreadyClaimed = errors.New("daily bonus already claimed")
	// ErrInvalidClaimDate: the claim date is earlier than the last recorded login
	ErrInvalidClaimDate = errors.New("claim date is before the last recorded login")
	// ErrPersistence: the store failed while reading or writing claim state
	ErrPersistence = errors.New("persistence failure")
)

// Ledger and user errors
var (
	// ErrUserNotFound: the user or its resource ledger does not exist
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidAmount: a credit with a negative counter
	ErrInvalidAmount = errors.New("resource amounts must not be negative")
	// ErrTelegramNotLinked: no game account is linked to the Telegram user
	ErrTelegramNotLinked = errors.New("telegram account is not linked to a game user")
)
