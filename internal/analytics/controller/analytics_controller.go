package controller

import (
	"context"
	"encoding/json"
	"net/http"

	"coswig/internal/analytics/service"
	"coswig/internal/domain"

	"go.uber.org/zap"
)

type AnalyticsUseCase interface {
	Overview(ctx context.Context) (*service.Overview, error)
	Platforms(ctx context.Context) ([]service.PlatformStat, error)
	Monthly(ctx context.Context) ([]service.MonthlyPoint, error)
	Pending(ctx context.Context) (service.PendingRevenue, error)
	Calendar(ctx context.Context) ([]service.CalendarEntry, error)
}

type CalendarEntryDTO struct {
	ID          int64   `json:"id"`
	CN          string  `json:"cn"`
	Character   string  `json:"character"`
	Contact     string  `json:"contact"`
	NeededDate  string  `json:"needed_date"`
	FinalAmount float64 `json:"final_amount"`
	Status      string  `json:"status"`
	DaysLeft    int     `json:"days_left"`
	Urgency     string  `json:"urgency"`
}

type Controller struct {
	useCase AnalyticsUseCase
	logger  *zap.Logger
}

func NewController(useCase AnalyticsUseCase, logger *zap.Logger) *Controller {
	return &Controller{
		useCase: useCase,
		logger:  logger,
	}
}

func (c *Controller) HandleOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := c.useCase.Overview(r.Context())
	if err != nil {
		c.writeError(w, err)
		return
	}
	c.writeJSON(w, http.StatusOK, overview)
}

func (c *Controller) HandlePlatforms(w http.ResponseWriter, r *http.Request) {
	stats, err := c.useCase.Platforms(r.Context())
	if err != nil {
		c.writeError(w, err)
		return
	}
	c.writeJSON(w, http.StatusOK, stats)
}

func (c *Controller) HandleMonthly(w http.ResponseWriter, r *http.Request) {
	points, err := c.useCase.Monthly(r.Context())
	if err != nil {
		c.writeError(w, err)
		return
	}
	c.writeJSON(w, http.StatusOK, points)
}

func (c *Controller) HandlePending(w http.ResponseWriter, r *http.Request) {
	pending, err := c.useCase.Pending(r.Context())
	if err != nil {
		c.writeError(w, err)
		return
	}
	c.writeJSON(w, http.StatusOK, pending)
}

func (c *Controller) HandleCalendar(w http.ResponseWriter, r *http.Request) {
	entries, err := c.useCase.Calendar(r.Context())
	if err != nil {
		c.writeError(w, err)
		return
	}

	dtos := make([]CalendarEntryDTO, 0, len(entries))
	for _, e := range entries {
		dtos = append(dtos, CalendarEntryDTO{
			ID:          e.Order.ID,
			CN:          e.Order.CN,
			Character:   e.Order.Character,
			Contact:     e.Order.Contact,
			NeededDate:  e.Order.NeededDate.Format(domain.DateFormat),
			FinalAmount: e.Order.FinalAmount,
			Status:      string(e.Order.Status),
			DaysLeft:    e.DaysLeft,
			Urgency:     string(e.Urgency),
		})
	}
	c.writeJSON(w, http.StatusOK, dtos)
}

func (c *Controller) writeError(w http.ResponseWriter, err error) {
	c.logger.Error("analytics query failed", zap.Error(err))
	c.writeJSON(w, http.StatusInternalServerError, map[string]any{
		"success": false,
		"error":   "INTERNAL_ERROR",
		"message": "an unexpected error occurred",
	})
}

func (c *Controller) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}
