package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/question-bank-service/internal/cache"
	"github.com/SAP-F-2025/question-bank-service/internal/models"
	"github.com/SAP-F-2025/question-bank-service/internal/repositories"
)

// Aggregation dimensions accepted by Aggregate.
const (
	DimensionSubject        = "subject"
	DimensionDifficulty     = "difficulty"
	DimensionCognitiveLevel = "cognitive_level"
	DimensionCO             = "co"
	DimensionPO             = "po"
)

type analyticsService struct {
	repo   repositories.Repository
	cache  *cache.CacheManager
	logger *slog.Logger
}

func NewAnalyticsService(
	repo repositories.Repository,
	cacheManager *cache.CacheManager,
	logger *slog.Logger,
) AnalyticsService {
	return &analyticsService{
		repo:   repo,
		cache:  cacheManager,
		logger: logger,
	}
}

func (s *analyticsService) Aggregate(ctx context.Context, dimension string) (*models.AnalyticsResponse, error) {
	fetch, err := s.fetcherFor(dimension)
	if err != nil {
		return nil, err
	}

	var counts map[string]int64
	err = s.cache.Analytics.CacheOrExecute(ctx, dimension, &counts, cache.AnalyticsCacheConfig.TTL,
		func() (interface{}, error) {
			return fetch(ctx)
		})
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate by %s: %w", dimension, err)
	}

	return &models.AnalyticsResponse{
		Dimension: dimension,
		Counts:    counts,
	}, nil
}

func (s *analyticsService) SubjectSummaries(ctx context.Context) ([]*models.SubjectSummary, error) {
	var summaries []*models.SubjectSummary
	err := s.cache.Analytics.CacheOrExecute(ctx, "subject_summaries", &summaries, cache.AnalyticsCacheConfig.TTL,
		func() (interface{}, error) {
			return s.repo.Analytics().SubjectSummaries(ctx, nil)
		})
	if err != nil {
		return nil, fmt.Errorf("failed to build subject summaries: %w", err)
	}
	return summaries, nil
}

func (s *analyticsService) fetcherFor(dimension string) (func(context.Context) (map[string]int64, error), error) {
	analytics := s.repo.Analytics()
	switch dimension {
	case DimensionSubject:
		return func(ctx context.Context) (map[string]int64, error) {
			return analytics.CountBySubject(ctx, nil)
		}, nil
	case DimensionDifficulty:
		return func(ctx context.Context) (map[string]int64, error) {
			return analytics.CountByDifficulty(ctx, nil)
		}, nil
	case DimensionCognitiveLevel:
		return func(ctx context.Context) (map[string]int64, error) {
			return analytics.CountByCognitiveLevel(ctx, nil)
		}, nil
	case DimensionCO:
		return func(ctx context.Context) (map[string]int64, error) {
			return analytics.CountByCO(ctx, nil)
		}, nil
	case DimensionPO:
		return func(ctx context.Context) (map[string]int64, error) {
			return analytics.CountByPO(ctx, nil)
		}, nil
	default:
		return nil, &UnknownDimensionError{Dimension: dimension}
	}
}
