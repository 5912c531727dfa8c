package service

import (
	"context"
	"time"

	"coswig/internal/domain"
	"coswig/internal/order/repository"

	"go.uber.org/zap"
)

type Repository interface {
	List(ctx context.Context, filter repository.ListFilter, sort repository.Sort) ([]domain.Order, error)
}

// Overview bundles the figures the dashboard page shows in one response.
type Overview struct {
	Summary        Summary               `json:"summary"`
	StatusCounts   map[domain.Status]int `json:"status_counts"`
	PendingRevenue PendingRevenue        `json:"pending_revenue"`
}

type AnalyticsService struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
}

func NewAnalyticsService(repo Repository, logger *zap.Logger) *AnalyticsService {
	return &AnalyticsService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

func (s *AnalyticsService) snapshot(ctx context.Context) ([]domain.Order, error) {
	return s.repo.List(ctx, repository.ListFilter{}, repository.Sort{Key: repository.SortByNeededDate})
}

func (s *AnalyticsService) Overview(ctx context.Context) (*Overview, error) {
	orders, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	return &Overview{
		Summary:        Summarize(orders),
		StatusCounts:   StatusBreakdown(orders),
		PendingRevenue: OutstandingRevenue(orders),
	}, nil
}

func (s *AnalyticsService) Platforms(ctx context.Context) ([]PlatformStat, error) {
	orders, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return PlatformBreakdown(orders), nil
}

func (s *AnalyticsService) Monthly(ctx context.Context) ([]MonthlyPoint, error) {
	orders, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return MonthlyRevenue(orders), nil
}

func (s *AnalyticsService) Pending(ctx context.Context) (PendingRevenue, error) {
	orders, err := s.snapshot(ctx)
	if err != nil {
		return PendingRevenue{}, err
	}
	return OutstandingRevenue(orders), nil
}

func (s *AnalyticsService) Calendar(ctx context.Context) ([]CalendarEntry, error) {
	orders, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return CalendarView(orders, s.now()), nil
}
