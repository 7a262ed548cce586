package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"tutorhub/models"
)

const confirmationCacheTTL = 60 * time.Second

func confirmationCacheKey(email, eventID string) string {
	return fmt.Sprintf("confirmation:%s:%s", email, eventID)
}

// LastSix returns the most recent 6 sessions for (email, eventID), ascending
// by start time. A missing group yields an empty list, not an error. Results
// are cached briefly in Redis and invalidated on every merge for the pair.
func (s *DefaultBookingGroupService) LastSix(ctx context.Context, email, eventID string) (models.SessionList, error) {
	key := confirmationCacheKey(email, eventID)

	if s.CacheClient != nil {
		if cached, err := s.CacheClient.Get(ctx, key).Result(); err == nil {
			var list models.SessionList
			if err := json.Unmarshal([]byte(cached), &list); err == nil {
				return list, nil
			}
		}
	}

	group, err := s.Repo.GetGroup(ctx, email, eventID)
	if err != nil {
		return nil, err
	}

	lastSix := models.SessionList{}
	if group != nil {
		list := append(models.SessionList{}, group.SessionStartTimes...)
		list.SortAscending()
		lastSix = list.LastN(BlockSize)
	}

	if s.CacheClient != nil {
		if data, err := json.Marshal(lastSix); err == nil {
			if err := s.CacheClient.Set(ctx, key, data, confirmationCacheTTL).Err(); err != nil {
				s.Logger.Debug("confirmation cache write failed", zap.Error(err))
			}
		}
	}
	return lastSix, nil
}

func (s *DefaultBookingGroupService) invalidateConfirmationCache(ctx context.Context, email, eventID string) {
	if s.CacheClient == nil {
		return
	}
	if err := s.CacheClient.Del(ctx, confirmationCacheKey(email, eventID)).Err(); err != nil {
		s.Logger.Debug("confirmation cache invalidation failed", zap.Error(err))
	}
}
