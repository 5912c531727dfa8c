package service

import (
	"context"
	"time"

	"coswig/internal/config"
	"coswig/internal/domain"
	"coswig/internal/order/repository"

	"go.uber.org/zap"
)

type Repository interface {
	List(ctx context.Context, filter repository.ListFilter, sort repository.Sort) ([]domain.Order, error)
	InsertBatch(ctx context.Context, orders []domain.Order) (int64, error)
	DeleteAll(ctx context.Context) error
	Count(ctx context.Context, filter repository.ListFilter) (int64, error)
	CountByStatus(ctx context.Context) (map[domain.Status]int64, error)
}

// DataService owns everything that moves the order set across the process
// boundary: JSON/CSV exports, JSON imports, and whole-file snapshots of the
// store itself.
type DataService struct {
	repo      Repository
	dbPath    string
	backupDir string
	exportDir string
	logger    *zap.Logger
	now       func() time.Time
}

func NewDataService(repo Repository, dbPath string, data config.DataConfig, logger *zap.Logger) *DataService {
	return &DataService{
		repo:      repo,
		dbPath:    dbPath,
		backupDir: data.BackupDir,
		exportDir: data.ExportDir,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *DataService) timestamp() string {
	return s.now().Format("20060102_150405")
}

func (s *DataService) snapshot(ctx context.Context) ([]domain.Order, error) {
	return s.repo.List(ctx, repository.ListFilter{}, repository.Sort{Key: repository.SortByNeededDate})
}

// orderRecord is the wire shape of one order in JSON exports and imports,
// field names and date layouts fixed by the historical backup format.
type orderRecord struct {
	ID               int64   `json:"id"`
	CN               string  `json:"cn"`
	Character        string  `json:"character"`
	Contact          string  `json:"contact"`
	NeededDate       string  `json:"needed_date"`
	OrderDate        string  `json:"order_date"`
	DepositPaid      bool    `json:"deposit_paid"`
	FinalAmount      float64 `json:"final_amount"`
	ShippingIncluded bool    `json:"shipping_included"`
	BlankPurchased   bool    `json:"blank_purchased"`
	CakeBox          string  `json:"cake_box"`
	CreatedAt        string  `json:"created_at"`
	Status           string  `json:"status"`
}

func toRecord(o domain.Order) orderRecord {
	return orderRecord{
		ID:               o.ID,
		CN:               o.CN,
		Character:        o.Character,
		Contact:          o.Contact,
		NeededDate:       o.NeededDate.Format(domain.DateFormat),
		OrderDate:        o.OrderDate.Format(domain.DateFormat),
		DepositPaid:      o.DepositPaid,
		FinalAmount:      o.FinalAmount,
		ShippingIncluded: o.ShippingIncluded,
		BlankPurchased:   o.BlankPurchased,
		CakeBox:          o.CakeBox,
		CreatedAt:        o.CreatedAt.Format(domain.TimestampFormat),
		Status:           string(o.Status),
	}
}
