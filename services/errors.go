package services

import "errors"

var (
	// ErrNotFound covers a missing game, client, or required ledger entry.
	ErrNotFound = errors.New("not found")
	// ErrInsufficientFunds is reported by Buy when the balance cannot cover
	// the price. Deliberately separate from validation failures.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// errVersionConflict signals a lost optimistic-lock race on the client
	// row; the settlement transaction is retried.
	errVersionConflict = errors.New("client row changed concurrently")
)
