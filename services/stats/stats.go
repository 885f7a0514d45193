package stats

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	reservationRepo "tourspot/database/repository/reservation"
	"tourspot/models"
	"tourspot/utils"
)

const cacheTTL = 5 * time.Minute

// Service serves owner dashboard stats. Computed snapshots are cached in
// redis and invalidated whenever a transition changes the underlying
// reservations.
type Service struct {
	Reservations reservationRepo.Repository
	Cache        *redis.Client
}

func cacheKey(resourceID string) string {
	return "stats:" + resourceID
}

// ResourceStats returns the dashboard summary for a resource, from cache
// when fresh.
func (s *Service) ResourceStats(ctx context.Context, resourceID string) (*models.ResourceStats, error) {
	if s.Cache != nil {
		if raw, err := s.Cache.Get(ctx, cacheKey(resourceID)).Result(); err == nil {
			var cached models.ResourceStats
			if json.Unmarshal([]byte(raw), &cached) == nil {
				return &cached, nil
			}
		}
	}

	computed, err := s.Reservations.StatsByResource(ctx, resourceID)
	if err != nil {
		return nil, err
	}

	if s.Cache != nil {
		if raw, err := json.Marshal(computed); err == nil {
			if err := s.Cache.Set(ctx, cacheKey(resourceID), raw, cacheTTL).Err(); err != nil {
				utils.GetLogger().Warn("failed to cache stats",
					zap.String("resourceID", resourceID), zap.Error(err))
			}
		}
	}
	return computed, nil
}

// Invalidate drops the cached snapshot so the next read recomputes.
func (s *Service) Invalidate(resourceID string) {
	if s.Cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Cache.Del(ctx, cacheKey(resourceID)).Err(); err != nil {
		utils.GetLogger().Warn("failed to invalidate stats cache",
			zap.String("resourceID", resourceID), zap.Error(err))
	}
}
