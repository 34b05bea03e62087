package services

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/SAP-F-2025/question-bank-service/internal/cache"
	"github.com/SAP-F-2025/question-bank-service/internal/models"
)

func testCacheManager(t *testing.T) *cache.CacheManager {
	t.Helper()
	mr := miniredis.RunT(t)
	return cache.NewCacheManager(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
}

func seedAnalyticsBank(t *testing.T, f *fakeRepo) {
	t.Helper()
	_, _, topicID := seedHierarchy(t, f)
	seedQuestion(t, f, topicID, "Easy one.", models.DifficultyEasy, 1)
	seedQuestion(t, f, topicID, "Easy two.", models.DifficultyEasy, 1)
	seedQuestion(t, f, topicID, "Hard one.", models.DifficultyHard, 1)
}

func TestAnalyticsServiceAggregate(t *testing.T) {
	ctx := context.Background()
	f := newFakeRepo()
	seedAnalyticsBank(t, f)
	svc := NewAnalyticsService(f, testCacheManager(t), testLogger())

	tests := []struct {
		name      string
		dimension string
		wantKey   string
		wantCount int64
	}{
		{name: "by difficulty", dimension: DimensionDifficulty, wantKey: "Easy", wantCount: 2},
		{name: "by subject", dimension: DimensionSubject, wantKey: "CS101", wantCount: 3},
		{name: "by cognitive level", dimension: DimensionCognitiveLevel, wantKey: "Apply", wantCount: 3},
		{name: "by co", dimension: DimensionCO, wantKey: "CO1", wantCount: 3},
		{name: "by po", dimension: DimensionPO, wantKey: "PO2", wantCount: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.Aggregate(ctx, tt.dimension)
			if err != nil {
				t.Fatalf("Aggregate(%q) error = %v", tt.dimension, err)
			}
			if resp.Dimension != tt.dimension {
				t.Errorf("Dimension = %q, want %q", resp.Dimension, tt.dimension)
			}
			if resp.Counts[tt.wantKey] != tt.wantCount {
				t.Errorf("Counts[%q] = %d, want %d", tt.wantKey, resp.Counts[tt.wantKey], tt.wantCount)
			}
		})
	}
}

func TestAnalyticsServiceAggregateUnknownDimension(t *testing.T) {
	f := newFakeRepo()
	svc := NewAnalyticsService(f, testCacheManager(t), testLogger())

	_, err := svc.Aggregate(context.Background(), "color")
	var unknown *UnknownDimensionError
	if !errors.As(err, &unknown) {
		t.Fatalf("Aggregate() error = %v, want UnknownDimensionError", err)
	}
	if unknown.Dimension != "color" {
		t.Errorf("Dimension = %q, want color", unknown.Dimension)
	}
}

func TestAnalyticsServiceServesCachedCounts(t *testing.T) {
	ctx := context.Background()
	f := newFakeRepo()
	seedAnalyticsBank(t, f)

	cm := testCacheManager(t)
	stale := map[string]int64{"Easy": 42}
	if err := cm.Analytics.Set(ctx, DimensionDifficulty, stale, cache.AnalyticsCacheConfig.TTL); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	svc := NewAnalyticsService(f, cm, testLogger())
	resp, err := svc.Aggregate(ctx, DimensionDifficulty)
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	if resp.Counts["Easy"] != 42 {
		t.Errorf("Counts[Easy] = %d, want cached 42", resp.Counts["Easy"])
	}
}

func TestAnalyticsServiceWorksWithoutCache(t *testing.T) {
	ctx := context.Background()
	f := newFakeRepo()
	seedAnalyticsBank(t, f)

	// A nil redis client degrades to fetching on every call.
	svc := NewAnalyticsService(f, cache.NewCacheManager(nil), testLogger())
	resp, err := svc.Aggregate(ctx, DimensionDifficulty)
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	if resp.Counts["Hard"] != 1 {
		t.Errorf("Counts[Hard] = %d, want 1", resp.Counts["Hard"])
	}
}

func TestAnalyticsServiceSubjectSummaries(t *testing.T) {
	ctx := context.Background()
	f := newFakeRepo()
	seedAnalyticsBank(t, f)
	svc := NewAnalyticsService(f, testCacheManager(t), testLogger())

	summaries, err := svc.SubjectSummaries(ctx)
	if err != nil {
		t.Fatalf("SubjectSummaries() error = %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("summaries = %d, want 1", len(summaries))
	}
	s := summaries[0]
	if s.SubjectCode != "CS101" || s.Total != 3 {
		t.Errorf("summary = %+v, want CS101 with 3 questions", s)
	}
	if s.ByDifficulty["Easy"] != 2 || s.ByDifficulty["Hard"] != 1 {
		t.Errorf("ByDifficulty = %v, want Easy 2 Hard 1", s.ByDifficulty)
	}
}
