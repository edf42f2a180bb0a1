package services

import (
	"context"
	"errors"
	"fmt"

	"gamestore/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// settleRetries bounds how often a settlement is replayed after losing the
// optimistic-lock race on the client row.
const settleRetries = 3

// CartService is the cart/purchase workflow. Per (client, game) pair the
// ledger row's two flags encode the state: no row (unseen), in_cart
// (carted), purchased (owned). Buy normalizes the transient
// purchased+in_cart combination away.
type CartService struct {
	db *gorm.DB
}

func NewCart(db *gorm.DB) *CartService {
	return &CartService{db: db}
}

// getOrCreate returns the unique ledger row for the pair, inserting one with
// both flags false if none exists. The insert rides the composite unique
// index: under a concurrent first call exactly one row survives and the
// loser reads the winner's row.
func getOrCreate(tx *gorm.DB, clientID, gameID string) (*models.Ownership, bool, error) {
	entry := models.Ownership{
		ID:       uuid.NewString(),
		ClientID: clientID,
		GameID:   gameID,
	}
	res := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "client_id"}, {Name: "game_id"}},
		DoNothing: true,
	}).Create(&entry)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected > 0 {
		return &entry, true, nil
	}
	var existing models.Ownership
	err := tx.Where("client_id = ? AND game_id = ?", clientID, gameID).First(&existing).Error
	if err != nil {
		return nil, false, err
	}
	return &existing, false, nil
}

// Find returns the ledger row for the pair or ErrNotFound.
func (s *CartService) Find(ctx context.Context, clientID, gameID string) (*models.Ownership, error) {
	var entry models.Ownership
	err := s.db.WithContext(ctx).
		Where("client_id = ? AND game_id = ?", clientID, gameID).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("ledger entry for client %s game %s: %w", clientID, gameID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// AddToCart marks the game as carted for the client, creating the ledger row
// on first contact. Idempotent; purchase status and balance are not
// consulted.
func (s *CartService) AddToCart(ctx context.Context, clientID, gameID string) (*models.Ownership, error) {
	var out *models.Ownership
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findClient(tx, clientID); err != nil {
			return err
		}
		if _, err := findGame(tx, gameID); err != nil {
			return err
		}
		entry, _, err := getOrCreate(tx, clientID, gameID)
		if err != nil {
			return err
		}
		if !entry.InCart {
			if err := tx.Model(&models.Ownership{}).
				Where("id = ?", entry.ID).
				Update("in_cart", true).Error; err != nil {
				return err
			}
			entry.InCart = true
		}
		out = entry
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("add to cart: %w", err)
	}
	return out, nil
}

// RemoveFromCart clears the cart flag. The ledger row must already exist;
// the purchased flag is untouched.
func (s *CartService) RemoveFromCart(ctx context.Context, clientID, gameID string) (*models.Ownership, error) {
	var out *models.Ownership
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findClient(tx, clientID); err != nil {
			return err
		}
		if _, err := findGame(tx, gameID); err != nil {
			return err
		}
		var entry models.Ownership
		err := tx.Where("client_id = ? AND game_id = ?", clientID, gameID).First(&entry).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("ledger entry for client %s game %s: %w", clientID, gameID, ErrNotFound)
		}
		if err != nil {
			return err
		}
		if entry.InCart {
			if err := tx.Model(&models.Ownership{}).
				Where("id = ?", entry.ID).
				Update("in_cart", false).Error; err != nil {
				return err
			}
			entry.InCart = false
		}
		out = &entry
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("remove from cart: %w", err)
	}
	return out, nil
}

// Buy settles the purchase: checks the balance against the price, debits
// exactly the price, and flips the ledger row to purchased with the cart
// flag cleared. All of it happens in one transaction; on insufficient funds
// nothing is mutated. Re-buying an already-owned game is not blocked and
// debits again.
func (s *CartService) Buy(ctx context.Context, clientID, gameID string) (*models.Ownership, decimal.Decimal, error) {
	var (
		out     *models.Ownership
		balance decimal.Decimal
	)
	for attempt := 0; attempt < settleRetries; attempt++ {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			game, err := findGame(tx, gameID)
			if err != nil {
				return err
			}
			client, err := findClient(tx, clientID)
			if err != nil {
				return err
			}
			if client.Money.LessThan(game.Price) {
				return fmt.Errorf("balance %s below price %s: %w",
					client.Money, game.Price, ErrInsufficientFunds)
			}
			newBalance := client.Money.Sub(game.Price)
			if err := debitTx(tx, client, newBalance); err != nil {
				return err
			}
			entry, _, err := getOrCreate(tx, clientID, gameID)
			if err != nil {
				return err
			}
			if err := tx.Model(&models.Ownership{}).
				Where("id = ?", entry.ID).
				Updates(map[string]interface{}{
					"in_cart":   false,
					"purchased": true,
				}).Error; err != nil {
				return err
			}
			entry.InCart = false
			entry.Purchased = true
			out = entry
			balance = newBalance
			return nil
		})
		if errors.Is(err, errVersionConflict) {
			continue
		}
		if err != nil {
			return nil, decimal.Decimal{}, fmt.Errorf("buy: %w", err)
		}
		return out, balance, nil
	}
	return nil, decimal.Decimal{}, fmt.Errorf("buy game %s for client %s: %w", gameID, clientID, errVersionConflict)
}

// ViewCart lists the client's carted entries with the game preloaded. No
// ordering is promised.
func (s *CartService) ViewCart(ctx context.Context, clientID string) ([]models.Ownership, error) {
	if _, err := findClient(s.db.WithContext(ctx), clientID); err != nil {
		return nil, err
	}
	var entries []models.Ownership
	err := s.db.WithContext(ctx).
		Preload("Game").
		Where("client_id = ? AND in_cart = ?", clientID, true).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("view cart: %w", err)
	}
	return entries, nil
}

// Library lists the client's purchased entries.
func (s *CartService) Library(ctx context.Context, clientID string) ([]models.Ownership, error) {
	if _, err := findClient(s.db.WithContext(ctx), clientID); err != nil {
		return nil, err
	}
	var entries []models.Ownership
	err := s.db.WithContext(ctx).
		Preload("Game").
		Where("client_id = ? AND purchased = ?", clientID, true).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("library: %w", err)
	}
	return entries, nil
}

// CartCount returns how many entries sit in the client's cart.
func (s *CartService) CartCount(ctx context.Context, clientID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Ownership{}).
		Where("client_id = ? AND in_cart = ?", clientID, true).
		Count(&count).Error
	return count, err
}

// Remove deletes the ledger row for the pair. Administrative action; the
// workflow itself never deletes entries.
func (s *CartService) Remove(ctx context.Context, clientID, gameID string) error {
	res := s.db.WithContext(ctx).
		Where("client_id = ? AND game_id = ?", clientID, gameID).
		Delete(&models.Ownership{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("ledger entry for client %s game %s: %w", clientID, gameID, ErrNotFound)
	}
	return nil
}
