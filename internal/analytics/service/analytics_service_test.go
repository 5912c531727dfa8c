package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"coswig/internal/domain"
	"coswig/internal/order/repository"
)

type mockRepository struct {
	ListFunc func(ctx context.Context, filter repository.ListFilter, sort repository.Sort) ([]domain.Order, error)
}

func (m *mockRepository) List(ctx context.Context, filter repository.ListFilter, sort repository.Sort) ([]domain.Order, error) {
	return m.ListFunc(ctx, filter, sort)
}

func TestAnalyticsService_Overview(t *testing.T) {
	repo := &mockRepository{
		ListFunc: func(ctx context.Context, filter repository.ListFilter, sort repository.Sort) ([]domain.Order, error) {
			// The snapshot must not be pre-filtered.
			assert.Empty(t, filter.ExcludeStatuses)
			assert.Empty(t, filter.IncludeStatuses)
			assert.Empty(t, filter.Platform)
			return []domain.Order{
				order(domain.StatusPending, "2024-06-01", 100),
				order(domain.StatusCompleted, "2024-06-02", 200),
			}, nil
		},
	}
	svc := NewAnalyticsService(repo, zap.NewNop())

	overview, err := svc.Overview(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, overview.Summary.TotalOrders)
	assert.Equal(t, 1, overview.Summary.CompletedOrders)
	assert.Equal(t, 200.0, overview.Summary.TotalRevenue)
	assert.Equal(t, 1, overview.StatusCounts[domain.StatusPending])
	assert.Equal(t, 1, overview.PendingRevenue.Orders)
	assert.Equal(t, 100.0, overview.PendingRevenue.Amount)
}

func TestAnalyticsService_Calendar_UsesInjectedClock(t *testing.T) {
	repo := &mockRepository{
		ListFunc: func(ctx context.Context, filter repository.ListFilter, sort repository.Sort) ([]domain.Order, error) {
			return []domain.Order{order(domain.StatusPending, "2024-06-15", 100)}, nil
		},
	}
	svc := NewAnalyticsService(repo, zap.NewNop())
	svc.now = func() time.Time { return date("2024-06-10") }

	entries, err := svc.Calendar(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 5, entries[0].DaysLeft)
	assert.Equal(t, UrgencyUrgent, entries[0].Urgency)
}
