package controller

import (
	"context"
	"encoding/json"
	"net/http"

	"coswig/internal/dataio/service"
	"coswig/internal/domain"
	apperrors "coswig/internal/errors"

	"go.uber.org/zap"
)

type DataUseCase interface {
	Info(ctx context.Context) (*service.DatabaseInfo, error)
}

type databaseInfoDTO struct {
	Path         string           `json:"path"`
	SizeBytes    int64            `json:"size_bytes"`
	ModifiedAt   string           `json:"modified_at"`
	TotalOrders  int64            `json:"total_orders"`
	StatusCounts map[string]int64 `json:"status_counts"`
}

type Controller struct {
	useCase DataUseCase
	logger  *zap.Logger
}

func NewController(useCase DataUseCase, logger *zap.Logger) *Controller {
	return &Controller{
		useCase: useCase,
		logger:  logger,
	}
}

func (c *Controller) HandleInfo(w http.ResponseWriter, r *http.Request) {
	info, err := c.useCase.Info(r.Context())
	if err != nil {
		if ioe, ok := apperrors.IsIOError(err); ok {
			c.writeJSON(w, http.StatusNotFound, map[string]any{
				"success": false,
				"error":   "IO_ERROR",
				"message": ioe.Message,
			})
			return
		}
		c.logger.Error("database info failed", zap.Error(err))
		c.writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   "INTERNAL_ERROR",
			"message": "an unexpected error occurred",
		})
		return
	}

	counts := make(map[string]int64, len(info.StatusCounts))
	for status, n := range info.StatusCounts {
		counts[string(status)] = n
	}

	c.writeJSON(w, http.StatusOK, databaseInfoDTO{
		Path:         info.Path,
		SizeBytes:    info.SizeBytes,
		ModifiedAt:   info.ModifiedAt.Format(domain.TimestampFormat),
		TotalOrders:  info.TotalOrders,
		StatusCounts: counts,
	})
}

func (c *Controller) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}
