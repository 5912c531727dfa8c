package order

import (
	"database/sql"

	"coswig/internal/order/controller"
	"coswig/internal/order/repository"
	"coswig/internal/order/service"

	"go.uber.org/zap"
)

func NewModule(db *sql.DB, logger *zap.Logger) *controller.Controller {
	repo := repository.NewSQLiteOrderRepository(db)
	svc := service.NewOrderService(repo, logger)
	return controller.NewController(svc, logger)
}
