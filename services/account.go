package services

import (
	"context"
	"errors"
	"fmt"

	"gamestore/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AccountService owns the client balance. The only mutation it exposes is a
// debit; top-ups do not exist in this system.
type AccountService struct {
	db *gorm.DB
}

func NewAccount(db *gorm.DB) *AccountService {
	return &AccountService{db: db}
}

// Debit subtracts amount from the client balance and returns the new balance.
// Fails with models.ErrNegativeBalance if the result would go below zero.
func (s *AccountService) Debit(ctx context.Context, clientID string, amount decimal.Decimal) (decimal.Decimal, error) {
	var balance decimal.Decimal
	for attempt := 0; attempt < settleRetries; attempt++ {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			client, err := findClient(tx, clientID)
			if err != nil {
				return err
			}
			next := client.Money.Sub(amount)
			if next.IsNegative() {
				return fmt.Errorf("debit %s from %s: %w", amount, client.Money, models.ErrNegativeBalance)
			}
			if err := debitTx(tx, client, next); err != nil {
				return err
			}
			balance = next
			return nil
		})
		if errors.Is(err, errVersionConflict) {
			continue
		}
		return balance, err
	}
	return decimal.Decimal{}, fmt.Errorf("debit client %s: %w", clientID, errVersionConflict)
}

// debitTx writes the new balance guarded by the version observed at read
// time. Zero rows affected means a concurrent writer won the race.
func debitTx(tx *gorm.DB, client *models.Client, newBalance decimal.Decimal) error {
	res := tx.Model(&models.Client{}).
		Where("id = ? AND version = ?", client.ID, client.Version).
		Updates(map[string]interface{}{
			"money":   newBalance,
			"version": client.Version + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errVersionConflict
	}
	return nil
}

func findClient(tx *gorm.DB, clientID string) (*models.Client, error) {
	var client models.Client
	if err := tx.First(&client, "id = ?", clientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("client %s: %w", clientID, ErrNotFound)
		}
		return nil, err
	}
	return &client, nil
}

func findGame(tx *gorm.DB, gameID string) (*models.Game, error) {
	var game models.Game
	if err := tx.First(&game, "id = ?", gameID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("game %s: %w", gameID, ErrNotFound)
		}
		return nil, err
	}
	return &game, nil
}
