package analytics

import (
	"database/sql"

	"coswig/internal/analytics/controller"
	"coswig/internal/analytics/service"
	"coswig/internal/order/repository"

	"go.uber.org/zap"
)

func NewModule(db *sql.DB, logger *zap.Logger) *controller.Controller {
	repo := repository.NewSQLiteOrderRepository(db)
	svc := service.NewAnalyticsService(repo, logger)
	return controller.NewController(svc, logger)
}
