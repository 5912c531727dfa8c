package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	apperrors "coswig/internal/errors"

	"go.uber.org/zap"
)

// utf8BOM makes spreadsheet tools decode the CSV as UTF-8 so the Chinese
// headers and labels render correctly.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var csvHeader = []string{
	"ID", "CN", "动漫角色", "联系方式", "客户排单", "DDL",
	"定金已付", "尾款金额", "尾款含邮", "毛坯已购", "创建时间", "订单状态",
}

func yesNo(b bool) string {
	if b {
		return "是"
	}
	return "否"
}

func (s *DataService) exportPath(filename, defaultName string) string {
	if filename == "" {
		return filepath.Join(s.exportDir, defaultName)
	}
	return filename
}

// ExportJSON writes every order to a JSON array file and returns the
// filename used plus the record count.
func (s *DataService) ExportJSON(ctx context.Context, filename string) (string, int, error) {
	orders, err := s.snapshot(ctx)
	if err != nil {
		return "", 0, err
	}

	records := make([]orderRecord, 0, len(orders))
	for _, o := range orders {
		records = append(records, toRecord(o))
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", 0, apperrors.NewInternalError("encoding orders to JSON", err)
	}

	path := s.exportPath(filename, "orders_backup_"+s.timestamp()+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", 0, apperrors.NewIOError("writing JSON export file", err)
	}

	s.logger.Info("orders exported to JSON",
		zap.String("file", path),
		zap.Int("count", len(records)))

	return path, len(records), nil
}

// ExportCSV writes every order to a spreadsheet-friendly CSV file with the
// shop's Chinese column labels and 是/否 boolean tokens.
func (s *DataService) ExportCSV(ctx context.Context, filename string) (string, int, error) {
	orders, err := s.snapshot(ctx)
	if err != nil {
		return "", 0, err
	}

	var buf bytes.Buffer
	buf.Write(utf8BOM)

	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return "", 0, apperrors.NewInternalError("writing CSV header", err)
	}
	for _, o := range orders {
		rec := toRecord(o)
		row := []string{
			strconv.FormatInt(rec.ID, 10),
			rec.CN,
			rec.Character,
			rec.Contact,
			rec.NeededDate,
			rec.OrderDate,
			yesNo(rec.DepositPaid),
			strconv.FormatFloat(rec.FinalAmount, 'f', -1, 64),
			yesNo(rec.ShippingIncluded),
			yesNo(rec.BlankPurchased),
			rec.CreatedAt,
			rec.Status,
		}
		if err := w.Write(row); err != nil {
			return "", 0, apperrors.NewInternalError("writing CSV row", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", 0, apperrors.NewInternalError("flushing CSV writer", err)
	}

	path := s.exportPath(filename, "orders_export_"+s.timestamp()+".csv")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", 0, apperrors.NewIOError("writing CSV export file", err)
	}

	s.logger.Info("orders exported to CSV",
		zap.String("file", path),
		zap.Int("count", len(orders)))

	return path, len(orders), nil
}
