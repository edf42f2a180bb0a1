package services

import (
	"context"
	"sync"

	"gamestore/models"
)

type GameDetails struct {
	Game       models.Game
	Comments   []models.Comment
	Statistics GameStatistics
}

type GameStatistics struct {
	TotalComments     int64
	AverageEstimation float64
	TotalOwners       int64
}

// FetchGameDetails loads a game together with its comments and statistics.
// The related queries are independent of each other and run in parallel.
func (s *CartService) FetchGameDetails(ctx context.Context, gameID string) (*GameDetails, error) {
	game, err := findGame(s.db.WithContext(ctx), gameID)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(game).Association("Genres").Find(&game.Genres); err != nil {
		return nil, err
	}

	result := &GameDetails{Game: *game}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	wg.Add(3)

	go func() {
		defer wg.Done()
		var comments []models.Comment
		err := s.db.WithContext(ctx).
			Where("game_id = ?", gameID).
			Find(&comments).Error
		if err != nil {
			fail(err)
			return
		}
		result.Comments = comments
	}()

	go func() {
		defer wg.Done()
		if err := s.db.WithContext(ctx).Model(&models.Comment{}).
			Where("game_id = ?", gameID).
			Count(&result.Statistics.TotalComments).Error; err != nil {
			fail(err)
			return
		}
		var avg struct{ Avg float64 }
		if err := s.db.WithContext(ctx).Model(&models.Comment{}).
			Select("COALESCE(AVG(estimation), 0) as avg").
			Where("game_id = ?", gameID).
			Scan(&avg).Error; err != nil {
			fail(err)
			return
		}
		result.Statistics.AverageEstimation = avg.Avg
	}()

	go func() {
		defer wg.Done()
		if err := s.db.WithContext(ctx).Model(&models.Ownership{}).
			Where("game_id = ? AND purchased = ?", gameID, true).
			Count(&result.Statistics.TotalOwners).Error; err != nil {
			fail(err)
		}
	}()

	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	return result, nil
}

// SearchGames finds games whose title contains the query,
// case-insensitively.
func (s *CartService) SearchGames(ctx context.Context, query string, limit int) ([]models.Game, error) {
	if limit <= 0 {
		limit = 50
	}
	var games []models.Game
	err := s.db.WithContext(ctx).
		Where("LOWER(title) LIKE LOWER(?)", "%"+query+"%").
		Limit(limit).
		Find(&games).Error
	return games, err
}
