package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"coswig/internal/config"
	"coswig/internal/dataio/service"
	"coswig/internal/domain"
	"coswig/internal/infrastructure/logger"
	"coswig/internal/infrastructure/sqlite"
	"coswig/internal/order/repository"

	"github.com/olekukonko/tablewriter"
	"go.uber.org/zap"
)

func main() {
	var (
		op    = flag.String("op", "info", "operation: info, export-json, export-csv, import, backup, restore")
		file  = flag.String("file", "", "target file (export output, import source, restore backup)")
		clear = flag.Bool("clear", false, "clear existing orders before import")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	ctx := context.Background()

	switch *op {
	case "info":
		svc := openService(cfg, zapLogger)
		runInfo(ctx, svc)
	case "export-json":
		svc := openService(cfg, zapLogger)
		path, count, err := svc.ExportJSON(ctx, *file)
		if err != nil {
			log.Fatalf("export failed: %v", err)
		}
		fmt.Printf("exported %d orders to %s\n", count, path)
	case "export-csv":
		svc := openService(cfg, zapLogger)
		path, count, err := svc.ExportCSV(ctx, *file)
		if err != nil {
			log.Fatalf("export failed: %v", err)
		}
		fmt.Printf("exported %d orders to %s\n", count, path)
	case "import":
		if *file == "" {
			log.Fatal("import requires -file")
		}
		svc := openService(cfg, zapLogger)
		result, err := svc.ImportJSON(ctx, *file, *clear)
		if err != nil {
			log.Fatalf("import failed: %v", err)
		}
		fmt.Printf("imported %d orders, skipped %d\n", result.Imported, result.Skipped)
	case "backup":
		// No connection here: opening the store would create an empty file
		// and mask a missing database.
		svc := service.NewDataService(nil, cfg.Database.Path, cfg.Data, zapLogger)
		path, err := svc.Backup()
		if err != nil {
			log.Fatalf("backup failed: %v", err)
		}
		fmt.Printf("database backed up to %s\n", path)
	case "restore":
		if *file == "" {
			log.Fatal("restore requires -file")
		}
		svc := service.NewDataService(nil, cfg.Database.Path, cfg.Data, zapLogger)
		safetyCopy, err := svc.Restore(*file)
		if err != nil {
			log.Fatalf("restore failed: %v", err)
		}
		if safetyCopy != "" {
			fmt.Printf("previous database saved as %s\n", safetyCopy)
		}
		fmt.Printf("database restored from %s\n", *file)
	default:
		log.Fatalf("unknown operation %q", *op)
	}
}

func openService(cfg *config.Config, zapLogger *zap.Logger) *service.DataService {
	db, err := sqlite.NewConnection(cfg.Database)
	if err != nil {
		log.Fatalf("opening database: %v", err)
	}
	repo := repository.NewSQLiteOrderRepository(db)
	return service.NewDataService(repo, cfg.Database.Path, cfg.Data, zapLogger)
}

func runInfo(ctx context.Context, svc *service.DataService) {
	info, err := svc.Info(ctx)
	if err != nil {
		log.Fatalf("database info failed: %v", err)
	}

	table := tablewriter.NewTable(os.Stdout)
	table.Header("Field", "Value")
	table.Append([]string{"Path", info.Path})
	table.Append([]string{"Size", fmt.Sprintf("%d bytes (%.2f KB)", info.SizeBytes, float64(info.SizeBytes)/1024)})
	table.Append([]string{"Last modified", info.ModifiedAt.Format(domain.TimestampFormat)})
	table.Append([]string{"Total orders", strconv.FormatInt(info.TotalOrders, 10)})
	if err := table.Render(); err != nil {
		log.Fatalf("rendering info table: %v", err)
	}

	if info.TotalOrders == 0 {
		return
	}

	statusTable := tablewriter.NewTable(os.Stdout)
	statusTable.Header("Status", "Orders")
	for _, status := range domain.KnownStatuses {
		if count := info.StatusCounts[status]; count > 0 {
			statusTable.Append([]string{string(status), strconv.FormatInt(count, 10)})
		}
	}
	if err := statusTable.Render(); err != nil {
		log.Fatalf("rendering status table: %v", err)
	}
}
