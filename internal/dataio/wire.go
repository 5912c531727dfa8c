package dataio

import (
	"database/sql"

	"coswig/internal/config"
	"coswig/internal/dataio/controller"
	"coswig/internal/dataio/service"
	"coswig/internal/order/repository"

	"go.uber.org/zap"
)

func NewModule(db *sql.DB, cfg *config.Config, logger *zap.Logger) (*service.DataService, *controller.Controller) {
	repo := repository.NewSQLiteOrderRepository(db)
	svc := service.NewDataService(repo, cfg.Database.Path, cfg.Data, logger)
	return svc, controller.NewController(svc, logger)
}
