package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func testHelper(t *testing.T) (*CacheHelper, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewCacheHelper(client, "analytics:"), mr
}

func TestCacheHelperSetGet(t *testing.T) {
	ctx := context.Background()
	helper, _ := testHelper(t)

	counts := map[string]int64{"Easy": 3, "Hard": 1}
	if err := helper.Set(ctx, "difficulty", counts, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	var got map[string]int64
	if err := helper.Get(ctx, "difficulty", &got); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got["Easy"] != 3 || got["Hard"] != 1 {
		t.Errorf("Get() = %v, want %v", got, counts)
	}
}

func TestCacheHelperGetMissing(t *testing.T) {
	helper, _ := testHelper(t)

	var got map[string]int64
	if err := helper.Get(context.Background(), "absent", &got); !errors.Is(err, ErrCacheNotFound) {
		t.Errorf("Get() error = %v, want ErrCacheNotFound", err)
	}
}

func TestCacheHelperNilClient(t *testing.T) {
	ctx := context.Background()
	helper := NewCacheHelper(nil, "analytics:")

	var got map[string]int64
	if err := helper.Get(ctx, "anything", &got); !errors.Is(err, ErrCacheNotAvailable) {
		t.Errorf("Get() error = %v, want ErrCacheNotAvailable", err)
	}
	if err := helper.Set(ctx, "anything", got, time.Minute); err != nil {
		t.Errorf("Set() error = %v, want graceful nil", err)
	}
	if err := helper.Delete(ctx, "anything"); err != nil {
		t.Errorf("Delete() error = %v, want graceful nil", err)
	}
}

func TestCacheHelperCacheOrExecute(t *testing.T) {
	ctx := context.Background()
	helper, _ := testHelper(t)

	t.Run("miss calls fetch", func(t *testing.T) {
		calls := 0
		var got map[string]int64
		err := helper.CacheOrExecute(ctx, "difficulty", &got, time.Minute, func() (interface{}, error) {
			calls++
			return map[string]int64{"Easy": 5}, nil
		})
		if err != nil {
			t.Fatalf("CacheOrExecute() error = %v", err)
		}
		if calls != 1 {
			t.Errorf("fetch calls = %d, want 1", calls)
		}
		if got["Easy"] != 5 {
			t.Errorf("dest = %v, want Easy 5", got)
		}
	})

	t.Run("hit skips fetch", func(t *testing.T) {
		if err := helper.Set(ctx, "subject", map[string]int64{"CS101": 7}, time.Minute); err != nil {
			t.Fatalf("Set() error = %v", err)
		}

		var got map[string]int64
		err := helper.CacheOrExecute(ctx, "subject", &got, time.Minute, func() (interface{}, error) {
			t.Error("fetch called despite cached value")
			return nil, nil
		})
		if err != nil {
			t.Fatalf("CacheOrExecute() error = %v", err)
		}
		if got["CS101"] != 7 {
			t.Errorf("dest = %v, want CS101 7", got)
		}
	})

	t.Run("fetch failure propagates", func(t *testing.T) {
		var got map[string]int64
		err := helper.CacheOrExecute(ctx, "broken", &got, time.Minute, func() (interface{}, error) {
			return nil, errors.New("repository down")
		})
		if err == nil {
			t.Fatal("CacheOrExecute() = nil, want fetch error")
		}
	})
}

func TestCacheHelperInvalidatePattern(t *testing.T) {
	ctx := context.Background()
	helper, _ := testHelper(t)

	for _, key := range []string{"difficulty", "subject", "co"} {
		if err := helper.Set(ctx, key, map[string]int64{"x": 1}, time.Minute); err != nil {
			t.Fatalf("Set(%q) error = %v", key, err)
		}
	}

	if err := helper.InvalidatePattern(ctx, "*"); err != nil {
		t.Fatalf("InvalidatePattern() error = %v", err)
	}

	var got map[string]int64
	for _, key := range []string{"difficulty", "subject", "co"} {
		if err := helper.Get(ctx, key, &got); !errors.Is(err, ErrCacheNotFound) {
			t.Errorf("Get(%q) after invalidation error = %v, want ErrCacheNotFound", key, err)
		}
	}
}

func TestCacheManagerHealthCheck(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cm := NewCacheManager(client)
	if err := cm.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}

	degraded := NewCacheManager(nil)
	if err := degraded.HealthCheck(context.Background()); !errors.Is(err, ErrCacheNotAvailable) {
		t.Errorf("HealthCheck() without client error = %v, want ErrCacheNotAvailable", err)
	}
}
