package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/godilite/gradebook/internal/grades"
	"github.com/godilite/gradebook/pkg/cache"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const defaultCacheTTL = 10 * time.Minute

// StatsQuerier is the read side shared by StatsService and its caching decorator.
type StatsQuerier interface {
	GetClassAverages(ctx context.Context, learnerID int64) ([]grades.ClassAverage, error)
	GetOverallAverage(ctx context.Context, learnerID int64) (grades.LearnerAverage, error)
	GetWeightedComposite(ctx context.Context, learnerID int64, classID *int64) (grades.WeightedScore, error)
	GetCohortStats(ctx context.Context, classID *int64) (grades.CohortStats, error)
}

type CacheKeyType string

const (
	cacheKeyClassAverages  CacheKeyType = "grades:class_averages"
	cacheKeyOverallAverage CacheKeyType = "grades:overall_average"
	cacheKeyComposite      CacheKeyType = "grades:composite"
	cacheKeyCohort         CacheKeyType = "grades:cohort"
)

func scopeKey(classID *int64) string {
	if classID == nil {
		return "all"
	}
	return strconv.FormatInt(*classID, 10)
}

func learnerKey(prefix CacheKeyType, learnerID int64) string {
	return fmt.Sprintf("%s:%d", prefix, learnerID)
}

func compositeKey(learnerID int64, classID *int64) string {
	return fmt.Sprintf("%s:%d:%s", cacheKeyComposite, learnerID, scopeKey(classID))
}

func cohortKey(classID *int64) string {
	return fmt.Sprintf("%s:%s", cacheKeyCohort, scopeKey(classID))
}

// CachingStatsService serves StatsQuerier results through a read-through cache.
type CachingStatsService struct {
	next     StatsQuerier
	cache    cache.Cacher
	sfGroup  singleflight.Group
	fence    cache.Fence
	cacheTTL time.Duration
	logger   *zap.Logger
	recorder cache.HitRecorder
}

// NewCachingStatsService wraps next. A nil cache disables caching entirely.
func NewCachingStatsService(next StatsQuerier, c cache.Cacher, ttl time.Duration, logger *zap.Logger, recorder cache.HitRecorder) *CachingStatsService {
	if next == nil {
		panic("nil StatsQuerier provided to NewCachingStatsService")
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachingStatsService{
		next:     next,
		cache:    c,
		cacheTTL: ttl,
		logger:   logger.Named("stats-cache"),
		recorder: recorder,
	}
}

func find[T any](ctx context.Context, s *CachingStatsService, key string, fn cache.FetchFunc[T]) (T, error) {
	if s.cache == nil {
		return fn(ctx)
	}
	return cache.FindAndCache(ctx, s.cache, &s.sfGroup, &s.fence, key, s.cacheTTL, s.logger, s.recorder, fn)
}

func (s *CachingStatsService) GetClassAverages(ctx context.Context, learnerID int64) ([]grades.ClassAverage, error) {
	return find(ctx, s, learnerKey(cacheKeyClassAverages, learnerID), func(ctx context.Context) ([]grades.ClassAverage, error) {
		return s.next.GetClassAverages(ctx, learnerID)
	})
}

func (s *CachingStatsService) GetOverallAverage(ctx context.Context, learnerID int64) (grades.LearnerAverage, error) {
	return find(ctx, s, learnerKey(cacheKeyOverallAverage, learnerID), func(ctx context.Context) (grades.LearnerAverage, error) {
		return s.next.GetOverallAverage(ctx, learnerID)
	})
}

func (s *CachingStatsService) GetWeightedComposite(ctx context.Context, learnerID int64, classID *int64) (grades.WeightedScore, error) {
	return find(ctx, s, compositeKey(learnerID, classID), func(ctx context.Context) (grades.WeightedScore, error) {
		return s.next.GetWeightedComposite(ctx, learnerID, classID)
	})
}

func (s *CachingStatsService) GetCohortStats(ctx context.Context, classID *int64) (grades.CohortStats, error) {
	return find(ctx, s, cohortKey(classID), func(ctx context.Context) (grades.CohortStats, error) {
		return s.next.GetCohortStats(ctx, classID)
	})
}

// invalidationKeys lists every key whose value depends on records of
// learnerID in classID.
func invalidationKeys(learnerID, classID int64) []string {
	return []string{
		learnerKey(cacheKeyClassAverages, learnerID),
		learnerKey(cacheKeyOverallAverage, learnerID),
		compositeKey(learnerID, nil),
		compositeKey(learnerID, &classID),
		cohortKey(nil),
		cohortKey(&classID),
	}
}

// Invalidate implements Invalidator. Lookups already fetching these keys
// will not write their results back. Delete failures are logged; entries
// then expire with their TTL.
func (s *CachingStatsService) Invalidate(ctx context.Context, learnerID, classID int64) {
	if s.cache == nil {
		return
	}
	keys := invalidationKeys(learnerID, classID)
	if err := cache.Invalidate(ctx, s.cache, &s.sfGroup, &s.fence, keys...); err != nil {
		s.logger.Warn("cache invalidation failed",
			zap.Int64("learner_id", learnerID),
			zap.Int64("class_id", classID),
			zap.Error(err))
		return
	}
	s.logger.Debug("cache invalidated", zap.Strings("keys", keys))
}
