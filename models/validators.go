package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ErrValidation marks any write rejected by a field-level check.
var ErrValidation = errors.New("validation failed")

// ErrNegativeBalance is the store-level guard on client money. It is
// distinct from ErrValidation so the buy path can tell a bad write from a
// bad debit.
var ErrNegativeBalance = errors.New("balance must not be negative")

// CheckPrice rejects negative game prices.
func CheckPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative, got %s", ErrValidation, price)
	}
	return nil
}

// CheckMoney rejects negative client balances at persist time.
func CheckMoney(money decimal.Decimal) error {
	if money.IsNegative() {
		return fmt.Errorf("%w: got %s", ErrNegativeBalance, money)
	}
	return nil
}

// CheckEstimation rejects negative comment ratings.
func CheckEstimation(estimation decimal.Decimal) error {
	if estimation.IsNegative() {
		return fmt.Errorf("%w: estimation must not be negative, got %s", ErrValidation, estimation)
	}
	return nil
}

// CheckDateNotFuture rejects dates that claim something already happened in
// the future (registration, publication).
func CheckDateNotFuture(field string, dt time.Time) error {
	if dt.After(time.Now()) {
		return fmt.Errorf("%w: %s must not be in the future, got %s", ErrValidation, field, dt.Format("2006-01-02"))
	}
	return nil
}
