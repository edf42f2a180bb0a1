package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gamestore/models"
)

type DashboardStats struct {
	TotalUsers     int64   `json:"total_users"`
	TotalGames     int64   `json:"total_games"`
	TotalClients   int64   `json:"total_clients"`
	TotalComments  int64   `json:"total_comments"`
	TotalPurchases int64   `json:"total_purchases"`
	CartedEntries  int64   `json:"carted_entries"`
	AvgEstimation  float64 `json:"avg_estimation"`
}

// CalculateDashboardStats runs each aggregate query in its own goroutine;
// the counts are independent of each other.
func (s *CartService) CalculateDashboardStats(ctx context.Context) (*DashboardStats, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	stats := &DashboardStats{}
	var wg sync.WaitGroup
	errChan := make(chan error, 7)

	count := func(dest *int64, model interface{}, cond string, args ...interface{}) {
		defer wg.Done()
		q := s.db.WithContext(ctx).Model(model)
		if cond != "" {
			q = q.Where(cond, args...)
		}
		if err := q.Count(dest).Error; err != nil {
			errChan <- fmt.Errorf("dashboard count: %w", err)
		}
	}

	wg.Add(7)
	go count(&stats.TotalUsers, &models.User{}, "")
	go count(&stats.TotalGames, &models.Game{}, "")
	go count(&stats.TotalClients, &models.Client{}, "")
	go count(&stats.TotalComments, &models.Comment{}, "")
	go count(&stats.TotalPurchases, &models.Ownership{}, "purchased = ?", true)
	go count(&stats.CartedEntries, &models.Ownership{}, "in_cart = ?", true)
	go func() {
		defer wg.Done()
		var avg struct{ Avg float64 }
		if err := s.db.WithContext(ctx).Model(&models.Comment{}).
			Select("COALESCE(AVG(estimation), 0) as avg").
			Scan(&avg).Error; err != nil {
			errChan <- fmt.Errorf("average estimation: %w", err)
			return
		}
		stats.AvgEstimation = avg.Avg
	}()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
		close(errChan)
	}()

	select {
	case <-done:
		for err := range errChan {
			if err != nil {
				return nil, err
			}
		}
		return stats, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("timeout calculating stats")
	}
}
