package service

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/godilite/gradebook/internal/grades"
	"github.com/godilite/gradebook/internal/service/mocks"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewCachingStatsService(t *testing.T) {
	t.Run("nil querier panics", func(t *testing.T) {
		assert.Panics(t, func() {
			NewCachingStatsService(nil, nil, time.Minute, zap.NewNop(), nil)
		})
	})

	t.Run("zero TTL uses default", func(t *testing.T) {
		svc := NewCachingStatsService(&mocks.MockStatsQuerier{}, &mocks.MockCacher{}, 0, nil, nil)
		assert.Equal(t, defaultCacheTTL, svc.cacheTTL)
	})
}

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "grades:class_averages:4", learnerKey(cacheKeyClassAverages, 4))
	assert.Equal(t, "grades:overall_average:4", learnerKey(cacheKeyOverallAverage, 4))
	assert.Equal(t, "grades:composite:4:all", compositeKey(4, nil))
	assert.Equal(t, "grades:composite:4:10", compositeKey(4, grades.ID(10)))
	assert.Equal(t, "grades:cohort:all", cohortKey(nil))
	assert.Equal(t, "grades:cohort:10", cohortKey(grades.ID(10)))

	assert.ElementsMatch(t, []string{
		"grades:class_averages:4",
		"grades:overall_average:4",
		"grades:composite:4:all",
		"grades:composite:4:10",
		"grades:cohort:all",
		"grades:cohort:10",
	}, invalidationKeys(4, 10))
}

func TestCachingStatsService_Hit(t *testing.T) {
	cached := []grades.ClassAverage{{ClassID: 10, Average: grades.NaN()}}
	raw, err := json.Marshal(map[string]any{
		"value":      cached,
		"refresh_at": time.Now().Add(time.Minute),
	})
	require.NoError(t, err)

	mockCache := &mocks.MockCacher{
		GetFunc: func(ctx context.Context, key string, dest any) error {
			if key != "grades:class_averages:1" {
				return redis.Nil
			}
			return json.Unmarshal(raw, dest)
		},
	}
	var calls atomic.Int32
	next := &mocks.MockStatsQuerier{
		GetClassAveragesFunc: func(ctx context.Context, learnerID int64) ([]grades.ClassAverage, error) {
			calls.Add(1)
			return cached, nil
		},
	}
	svc := NewCachingStatsService(next, mockCache, time.Minute, zap.NewNop(), nil)

	got, err := svc.GetClassAverages(context.Background(), 1)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(10), got[0].ClassID)
	assert.False(t, got[0].Average.Defined(), "NaN survives the cache round trip")
	assert.Never(t, func() bool { return calls.Load() > 0 }, 100*time.Millisecond, 10*time.Millisecond)
}

// mapCacher is a JSON map behind the MockCacher funcs.
func mapCacher() (*mocks.MockCacher, func(key string) ([]byte, bool)) {
	var mu sync.Mutex
	data := map[string][]byte{}
	c := &mocks.MockCacher{
		GetFunc: func(ctx context.Context, key string, dest any) error {
			mu.Lock()
			defer mu.Unlock()
			raw, ok := data[key]
			if !ok {
				return redis.Nil
			}
			return json.Unmarshal(raw, dest)
		},
		SetFunc: func(ctx context.Context, key string, value any, expiration time.Duration) error {
			raw, err := json.Marshal(value)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			data[key] = raw
			return nil
		},
		DeleteFunc: func(ctx context.Context, keys ...string) error {
			mu.Lock()
			defer mu.Unlock()
			for _, k := range keys {
				delete(data, k)
			}
			return nil
		},
	}
	lookup := func(key string) ([]byte, bool) {
		mu.Lock()
		defer mu.Unlock()
		raw, ok := data[key]
		return raw, ok
	}
	return c, lookup
}

func TestCachingStatsService_RefreshRacingInvalidate(t *testing.T) {
	ctx := context.Background()
	mockCache, lookup := mapCacher()
	require.NoError(t, mockCache.Set(ctx, "grades:overall_average:1", map[string]any{
		"value":      grades.LearnerAverage{LearnerID: 1, OverallAverage: 40},
		"refresh_at": time.Now().Add(-time.Second),
	}, time.Minute))

	var mu sync.Mutex
	stored := grades.Number(40)
	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	next := &mocks.MockStatsQuerier{
		GetOverallAverageFunc: func(ctx context.Context, learnerID int64) (grades.LearnerAverage, error) {
			mu.Lock()
			v := stored
			mu.Unlock()
			if calls.Add(1) == 1 {
				close(started)
				<-release
			}
			return grades.LearnerAverage{LearnerID: learnerID, OverallAverage: v}, nil
		},
	}
	core, logs := observer.New(zap.DebugLevel)
	svc := NewCachingStatsService(next, mockCache, time.Minute, zap.New(core), nil)

	got, err := svc.GetOverallAverage(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, grades.Number(40), got.OverallAverage)

	select {
	case <-started:
	case <-time.After(3 * time.Second):
		t.Fatal("background refresh did not start")
	}

	// the refresh already read 40; the record changes under it
	mu.Lock()
	stored = 90
	mu.Unlock()
	svc.Invalidate(ctx, 1, 10)
	close(release)

	require.Eventually(t, func() bool {
		return logs.FilterMessage("stale cache write discarded").Len() == 1
	}, 2*time.Second, 10*time.Millisecond)
	_, ok := lookup("grades:overall_average:1")
	assert.False(t, ok, "the stale refresh result must not be cached")

	got, err = svc.GetOverallAverage(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, grades.Number(90), got.OverallAverage)
	assert.Equal(t, int32(2), calls.Load())
}

func TestCachingStatsService_MissErrorsPropagate(t *testing.T) {
	next := &mocks.MockStatsQuerier{
		GetWeightedCompositeFunc: func(ctx context.Context, learnerID int64, classID *int64) (grades.WeightedScore, error) {
			return grades.WeightedScore{}, ErrNotFound
		},
	}
	svc := NewCachingStatsService(next, &mocks.MockCacher{}, time.Minute, zap.NewNop(), nil)

	_, err := svc.GetWeightedComposite(context.Background(), 1, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCachingStatsService_NilCache(t *testing.T) {
	calls := 0
	next := &mocks.MockStatsQuerier{
		GetCohortStatsFunc: func(ctx context.Context, classID *int64) (grades.CohortStats, error) {
			calls++
			return grades.CohortStats{Scope: grades.ScopeGlobal, TotalCount: 3}, nil
		},
	}
	svc := NewCachingStatsService(next, nil, time.Minute, zap.NewNop(), nil)

	for i := 0; i < 2; i++ {
		got, err := svc.GetCohortStats(context.Background(), nil)
		require.NoError(t, err)
		assert.Equal(t, 3, got.TotalCount)
	}
	assert.Equal(t, 2, calls)

	// no cache, nothing to invalidate
	svc.Invalidate(context.Background(), 1, 2)
}

func TestCachingStatsService_Invalidate(t *testing.T) {
	var deleted []string
	mockCache := &mocks.MockCacher{
		DeleteFunc: func(ctx context.Context, keys ...string) error {
			deleted = append(deleted, keys...)
			return nil
		},
	}
	svc := NewCachingStatsService(&mocks.MockStatsQuerier{}, mockCache, time.Minute, zap.NewNop(), nil)

	svc.Invalidate(context.Background(), 8, 30)

	assert.ElementsMatch(t, invalidationKeys(8, 30), deleted)
}
