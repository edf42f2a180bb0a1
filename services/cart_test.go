package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"gamestore/db"
	"gamestore/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	// One connection keeps the shared in-memory database alive and
	// serializes concurrent transactions.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Migrate(gdb))
	return gdb
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func newClient(t *testing.T, gdb *gorm.DB, money string) *models.Client {
	t.Helper()
	client := &models.Client{Nickname: "player-" + t.Name(), Money: dec(t, money)}
	require.NoError(t, gdb.Create(client).Error)
	return client
}

func newGame(t *testing.T, gdb *gorm.DB, title, price string) *models.Game {
	t.Helper()
	game := &models.Game{Title: title, Price: dec(t, price)}
	require.NoError(t, gdb.Create(game).Error)
	return game
}

func reloadClient(t *testing.T, gdb *gorm.DB, id string) *models.Client {
	t.Helper()
	var client models.Client
	require.NoError(t, gdb.First(&client, "id = ?", id).Error)
	return &client
}

func countEntries(t *testing.T, gdb *gorm.DB, clientID, gameID string) int64 {
	t.Helper()
	var count int64
	require.NoError(t, gdb.Model(&models.Ownership{}).
		Where("client_id = ? AND game_id = ?", clientID, gameID).
		Count(&count).Error)
	return count
}

func TestAddToCartCreatesEntry(t *testing.T) {
	gdb := setupDB(t)
	svc := NewCart(gdb)
	client := newClient(t, gdb, "10.00")
	game := newGame(t, gdb, "Chess Royale", "5.00")

	entry, err := svc.AddToCart(context.Background(), client.ID, game.ID)
	require.NoError(t, err)
	assert.True(t, entry.InCart)
	assert.False(t, entry.Purchased)
	assert.Equal(t, int64(1), countEntries(t, gdb, client.ID, game.ID))
}

func TestAddToCartIdempotent(t *testing.T) {
	gdb := setupDB(t)
	svc := NewCart(gdb)
	client := newClient(t, gdb, "10.00")
	game := newGame(t, gdb, "Chess Royale", "5.00")

	_, err := svc.AddToCart(context.Background(), client.ID, game.ID)
	require.NoError(t, err)
	entry, err := svc.AddToCart(context.Background(), client.ID, game.ID)
	require.NoError(t, err)

	assert.True(t, entry.InCart)
	assert.Equal(t, int64(1), countEntries(t, gdb, client.ID, game.ID))
}

func TestAddToCartUnknownGame(t *testing.T) {
	gdb := setupDB(t)
	svc := NewCart(gdb)
	client := newClient(t, gdb, "10.00")

	_, err := svc.AddToCart(context.Background(), client.ID, "2b6d6a3a-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddToCartUnknownClient(t *testing.T) {
	gdb := setupDB(t)
	svc := NewCart(gdb)
	game := newGame(t, gdb, "Chess Royale", "5.00")

	_, err := svc.AddToCart(context.Background(), "2b6d6a3a-0000-0000-0000-000000000000", game.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetOrCreateConcurrent(t *testing.T) {
	gdb := setupDB(t)
	svc := NewCart(gdb)
	client := newClient(t, gdb, "10.00")
	game := newGame(t, gdb, "Chess Royale", "5.00")

	const callers = 20
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AddToCart(context.Background(), client.ID, game.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, int64(1), countEntries(t, gdb, client.ID, game.ID))
}

func TestRemoveFromCartWithoutEntry(t *testing.T) {
	gdb := setupDB(t)
	svc := NewCart(gdb)
	client := newClient(t, gdb, "10.00")
	game := newGame(t, gdb, "Chess Royale", "5.00")

	_, err := svc.RemoveFromCart(context.Background(), client.ID, game.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRemoveFromCartKeepsPurchased(t *testing.T) {
	gdb := setupDB(t)
	svc := NewCart(gdb)
	client := newClient(t, gdb, "10.00")
	game := newGame(t, gdb, "Chess Royale", "5.00")

	_, _, err := svc.Buy(context.Background(), client.ID, game.ID)
	require.NoError(t, err)
	_, err = svc.AddToCart(context.Background(), client.ID, game.ID)
	require.NoError(t, err)

	entry, err := svc.RemoveFromCart(context.Background(), client.ID, game.ID)
	require.NoError(t, err)
	assert.False(t, entry.InCart)
	assert.True(t, entry.Purchased)
}

func TestBuyInsufficientFunds(t *testing.T) {
	gdb := setupDB(t)
	svc := NewCart(gdb)
	client := newClient(t, gdb, "10.00")
	game := newGame(t, gdb, "Chess Royale", "25.00")

	_, _, err := svc.Buy(context.Background(), client.ID, game.ID)
	require.ErrorIs(t, err, ErrInsufficientFunds)

	// No partial effect: balance untouched, no ledger row appeared.
	assert.True(t, reloadClient(t, gdb, client.ID).Money.Equal(dec(t, "10.00")))
	assert.Equal(t, int64(0), countEntries(t, gdb, client.ID, game.ID))
}

func TestBuyInsufficientFundsKeepsCartFlag(t *testing.T) {
	gdb := setupDB(t)
	svc := NewCart(gdb)
	client := newClient(t, gdb, "10.00")
	game := newGame(t, gdb, "Chess Royale", "25.00")

	_, err := svc.AddToCart(context.Background(), client.ID, game.ID)
	require.NoError(t, err)
	_, _, err = svc.Buy(context.Background(), client.ID, game.ID)
	require.ErrorIs(t, err, ErrInsufficientFunds)

	entry, err := svc.Find(context.Background(), client.ID, game.ID)
	require.NoError(t, err)
	assert.True(t, entry.InCart)
	assert.False(t, entry.Purchased)
}

func TestBuyFromCartSettles(t *testing.T) {
	gdb := setupDB(t)
	svc := NewCart(gdb)
	client := newClient(t, gdb, "100.00")
	game := newGame(t, gdb, "Chess Royale", "50.00")

	_, err := svc.AddToCart(context.Background(), client.ID, game.ID)
	require.NoError(t, err)

	entry, balance, err := svc.Buy(context.Background(), client.ID, game.ID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec(t, "50.00")))
	assert.True(t, entry.Purchased)
	assert.False(t, entry.InCart)
	assert.True(t, reloadClient(t, gdb, client.ID).Money.Equal(dec(t, "50.00")))

	cart, err := svc.ViewCart(context.Background(), client.ID)
	require.NoError(t, err)
	assert.Empty(t, cart)

	library, err := svc.Library(context.Background(), client.ID)
	require.NoError(t, err)
	require.Len(t, library, 1)
	assert.Equal(t, game.ID, library[0].GameID)
}

func TestBuyWithoutCart(t *testing.T) {
	gdb := setupDB(t)
	svc := NewCart(gdb)
	client := newClient(t, gdb, "9.99")
	game := newGame(t, gdb, "Chess Royale", "9.99")

	entry, balance, err := svc.Buy(context.Background(), client.ID, game.ID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec(t, "0")))
	assert.True(t, entry.Purchased)
	assert.False(t, entry.InCart)
}

func TestRebuyDebitsAgain(t *testing.T) {
	gdb := setupDB(t)
	svc := NewCart(gdb)
	client := newClient(t, gdb, "100.00")
	game := newGame(t, gdb, "Chess Royale", "30.00")

	_, _, err := svc.Buy(context.Background(), client.ID, game.ID)
	require.NoError(t, err)
	entry, balance, err := svc.Buy(context.Background(), client.ID, game.ID)
	require.NoError(t, err)

	assert.True(t, balance.Equal(dec(t, "40.00")))
	assert.True(t, entry.Purchased)
	assert.Equal(t, int64(1), countEntries(t, gdb, client.ID, game.ID))
}

func TestBuySequenceExhaustsBalance(t *testing.T) {
	gdb := setupDB(t)
	svc := NewCart(gdb)
	client := newClient(t, gdb, "100.00")
	cheap := newGame(t, gdb, "Chess Royale", "50.00")
	pricey := newGame(t, gdb, "Dungeon Saga", "60.00")

	_, balance, err := svc.Buy(context.Background(), client.ID, cheap.ID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec(t, "50.00")))

	_, _, err = svc.Buy(context.Background(), client.ID, pricey.ID)
	require.ErrorIs(t, err, ErrInsufficientFunds)
	assert.True(t, reloadClient(t, gdb, client.ID).Money.Equal(dec(t, "50.00")))
}

func TestTwoClientsSameGame(t *testing.T) {
	gdb := setupDB(t)
	svc := NewCart(gdb)
	game := newGame(t, gdb, "Chess Royale", "5.00")
	alice := &models.Client{Nickname: "alice", Money: dec(t, "10.00")}
	bob := &models.Client{Nickname: "bob", Money: dec(t, "10.00")}
	require.NoError(t, gdb.Create(alice).Error)
	require.NoError(t, gdb.Create(bob).Error)

	_, err := svc.AddToCart(context.Background(), alice.ID, game.ID)
	require.NoError(t, err)
	_, err = svc.AddToCart(context.Background(), bob.ID, game.ID)
	require.NoError(t, err)

	var total int64
	require.NoError(t, gdb.Model(&models.Ownership{}).
		Where("game_id = ?", game.ID).Count(&total).Error)
	assert.Equal(t, int64(2), total)
}

func TestViewCartOnlyCarted(t *testing.T) {
	gdb := setupDB(t)
	svc := NewCart(gdb)
	client := newClient(t, gdb, "100.00")
	carted := newGame(t, gdb, "Chess Royale", "5.00")
	bought := newGame(t, gdb, "Dungeon Saga", "5.00")

	_, err := svc.AddToCart(context.Background(), client.ID, carted.ID)
	require.NoError(t, err)
	_, _, err = svc.Buy(context.Background(), client.ID, bought.ID)
	require.NoError(t, err)

	cart, err := svc.ViewCart(context.Background(), client.ID)
	require.NoError(t, err)
	require.Len(t, cart, 1)
	assert.Equal(t, carted.ID, cart[0].GameID)
	assert.Equal(t, carted.Title, cart[0].Game.Title)
}

func TestRemoveLedgerEntry(t *testing.T) {
	gdb := setupDB(t)
	svc := NewCart(gdb)
	client := newClient(t, gdb, "10.00")
	game := newGame(t, gdb, "Chess Royale", "5.00")

	_, err := svc.AddToCart(context.Background(), client.ID, game.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Remove(context.Background(), client.ID, game.ID))

	_, err = svc.Find(context.Background(), client.ID, game.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	err = svc.Remove(context.Background(), client.ID, game.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDebit(t *testing.T) {
	gdb := setupDB(t)
	acct := NewAccount(gdb)
	client := newClient(t, gdb, "10.00")

	balance, err := acct.Debit(context.Background(), client.ID, dec(t, "3.50"))
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec(t, "6.50")))

	_, err = acct.Debit(context.Background(), client.ID, dec(t, "100.00"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrNegativeBalance))
	assert.True(t, reloadClient(t, gdb, client.ID).Money.Equal(dec(t, "6.50")))
}

func TestClientRejectsNegativeMoney(t *testing.T) {
	gdb := setupDB(t)

	client := &models.Client{Nickname: "broke", Money: dec(t, "-1.00")}
	err := gdb.Create(client).Error
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrNegativeBalance))
}

func TestGameRejectsNegativePrice(t *testing.T) {
	gdb := setupDB(t)

	game := &models.Game{Title: "Freebie", Price: dec(t, "-0.01")}
	err := gdb.Create(game).Error
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrValidation))
}

func TestDebitStaleVersion(t *testing.T) {
	gdb := setupDB(t)
	client := newClient(t, gdb, "10.00")

	// Another writer bumps the version after our snapshot was taken.
	stale := *client
	require.NoError(t, gdb.Model(&models.Client{}).
		Where("id = ?", client.ID).
		Update("version", client.Version+1).Error)

	err := debitTx(gdb, &stale, dec(t, "4.00"))
	assert.ErrorIs(t, err, errVersionConflict)
	assert.True(t, reloadClient(t, gdb, client.ID).Money.Equal(dec(t, "10.00")))
}

func TestConcurrentBuySingleSettlement(t *testing.T) {
	gdb := setupDB(t)
	svc := NewCart(gdb)
	client := newClient(t, gdb, "50.00")
	game := newGame(t, gdb, "Chess Royale", "30.00")

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := svc.Buy(context.Background(), client.ID, game.ID)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var settled, refused int
	for err := range results {
		switch {
		case err == nil:
			settled++
		case errors.Is(err, ErrInsufficientFunds):
			refused++
		default:
			t.Fatalf("unexpected buy error: %v", err)
		}
	}

	// The balance covers exactly one copy: one settlement, one refusal,
	// and the debit lands exactly once.
	assert.Equal(t, 1, settled)
	assert.Equal(t, 1, refused)
	assert.True(t, reloadClient(t, gdb, client.ID).Money.Equal(dec(t, "20.00")))
	assert.Equal(t, int64(1), countEntries(t, gdb, client.ID, game.ID))

	entry, err := svc.Find(context.Background(), client.ID, game.ID)
	require.NoError(t, err)
	assert.True(t, entry.Purchased)
}

func TestCartCount(t *testing.T) {
	gdb := setupDB(t)
	svc := NewCart(gdb)
	client := newClient(t, gdb, "100.00")
	first := newGame(t, gdb, "Chess Royale", "5.00")
	second := newGame(t, gdb, "Dungeon Saga", "5.00")

	_, err := svc.AddToCart(context.Background(), client.ID, first.ID)
	require.NoError(t, err)
	_, err = svc.AddToCart(context.Background(), client.ID, second.ID)
	require.NoError(t, err)

	count, err := svc.CartCount(context.Background(), client.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	_, _, err = svc.Buy(context.Background(), client.ID, first.ID)
	require.NoError(t, err)

	count, err = svc.CartCount(context.Background(), client.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestGameGenreJoin(t *testing.T) {
	gdb := setupDB(t)
	genre := &models.Genre{Title: "Strategy"}
	require.NoError(t, gdb.Create(genre).Error)
	game := newGame(t, gdb, "Chess Royale", "5.00")

	require.NoError(t, gdb.Model(game).Association("Genres").Replace([]models.Genre{*genre}))

	var rows []models.GameGenre
	require.NoError(t, gdb.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.NotEmpty(t, rows[0].ID)
	assert.Equal(t, game.ID, rows[0].GameID)
	assert.Equal(t, genre.ID, rows[0].GenreID)

	var loaded models.Game
	require.NoError(t, gdb.Preload("Genres").First(&loaded, "id = ?", game.ID).Error)
	require.Len(t, loaded.Genres, 1)
	assert.Equal(t, "Strategy", loaded.Genres[0].Title)
}
