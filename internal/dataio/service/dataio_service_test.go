package service

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"coswig/internal/config"
	"coswig/internal/domain"
	apperrors "coswig/internal/errors"
	"coswig/internal/order/repository"
	"coswig/internal/testutil"
)

func date(s string) time.Time {
	d, err := time.Parse(domain.DateFormat, s)
	if err != nil {
		panic(err)
	}
	return d
}

func setup(t *testing.T) (*DataService, *repository.SQLiteOrderRepository, string) {
	t.Helper()

	db, dbPath := testutil.SetupTestDB(t)
	repo := repository.NewSQLiteOrderRepository(db)

	dir := t.TempDir()
	svc := NewDataService(repo, dbPath, config.DataConfig{
		BackupDir: filepath.Join(dir, "backups"),
		ExportDir: dir,
	}, zap.NewNop())
	svc.now = func() time.Time {
		return time.Date(2024, 6, 10, 15, 4, 5, 0, time.UTC)
	}

	return svc, repo, dbPath
}

func seedOrder(t *testing.T, repo *repository.SQLiteOrderRepository, cn, character, neededDate string, status domain.Status, amount float64) int64 {
	t.Helper()
	id, err := repo.Insert(context.Background(), domain.Order{
		CN:          cn,
		Character:   character,
		Contact:     "QQ",
		NeededDate:  date(neededDate),
		OrderDate:   date("2024-05-01"),
		CreatedAt:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		FinalAmount: amount,
		CakeBox:     domain.DefaultCakeBox,
		Status:      status,
	})
	require.NoError(t, err)
	return id
}

func TestExportJSON(t *testing.T) {
	svc, repo, _ := setup(t)
	seedOrder(t, repo, "小明", "雷电将军", "2024-06-15", domain.StatusPending, 299.5)
	seedOrder(t, repo, "小红", "八重神子", "2024-07-01", domain.StatusCompleted, 450)

	path, count, err := svc.ExportJSON(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, "orders_backup_20240610_150405.json", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var records []map[string]any
	require.NoError(t, json.Unmarshal(data, &records))
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "小明", first["cn"])
	assert.Equal(t, "雷电将军", first["character"])
	assert.Equal(t, "2024-06-15", first["needed_date"])
	assert.Equal(t, "2024-05-01", first["order_date"])
	assert.Equal(t, "2024-05-01 12:00:00", first["created_at"])
	assert.Equal(t, 299.5, first["final_amount"])
	assert.Equal(t, "待制作", first["status"])
	assert.Equal(t, false, first["deposit_paid"])
}

func TestExportCSV(t *testing.T) {
	svc, repo, _ := setup(t)
	seedOrder(t, repo, "小明", "雷电将军", "2024-06-15", domain.StatusPending, 299.5)

	path, count, err := svc.ExportCSV(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, "orders_export_20240610_150405.csv", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	// Byte-order mark for spreadsheet compatibility.
	assert.True(t, strings.HasPrefix(string(data), "\xEF\xBB\xBF"))

	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(string(data), "\xEF\xBB\xBF")), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "ID,CN,动漫角色,联系方式,客户排单,DDL,定金已付,尾款金额,尾款含邮,毛坯已购,创建时间,订单状态", lines[0])
	assert.Contains(t, lines[1], "否")
	assert.Contains(t, lines[1], "299.5")
	assert.Contains(t, lines[1], "待制作")
}

func TestImportJSON_RoundTrip(t *testing.T) {
	svc, repo, _ := setup(t)
	seedOrder(t, repo, "小明", "雷电将军", "2024-06-15", domain.StatusPending, 299.5)
	seedOrder(t, repo, "小红", "八重神子", "2024-07-01", domain.StatusCompleted, 450)

	exported, _, err := svc.ExportJSON(context.Background(), "")
	require.NoError(t, err)

	before, err := repo.List(context.Background(), repository.ListFilter{}, repository.Sort{Key: repository.SortByNeededDate})
	require.NoError(t, err)

	result, err := svc.ImportJSON(context.Background(), exported, true)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 0, result.Skipped)

	after, err := repo.List(context.Background(), repository.ListFilter{}, repository.Sort{Key: repository.SortByNeededDate})
	require.NoError(t, err)
	require.Len(t, after, 2)

	for i := range before {
		// Identical field values except possibly id.
		b, a := before[i], after[i]
		b.ID, a.ID = 0, 0
		assert.Equal(t, b, a)
	}
}

func TestImportJSON_SkipsDuplicates(t *testing.T) {
	svc, repo, _ := setup(t)
	seedOrder(t, repo, "小明", "雷电将军", "2024-06-15", domain.StatusPending, 299.5)

	records := []map[string]any{
		{
			// Duplicate of the seeded order on (cn, character, needed_date).
			"cn": "小明", "character": "雷电将军", "contact": "微信",
			"needed_date": "2024-06-15", "order_date": "2024-05-02", "final_amount": 999.0,
		},
		{
			"cn": "小红", "character": "八重神子", "contact": "QQ",
			"needed_date": "2024-07-01", "order_date": "2024-05-01", "final_amount": 450.0,
		},
		{
			"cn": "小刚", "character": "钟离", "contact": "闲鱼",
			"needed_date": "2024-07-10", "order_date": "2024-05-03", "final_amount": 600.0,
		},
	}
	path := writeImportFile(t, records)

	result, err := svc.ImportJSON(context.Background(), path, false)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 1, result.Skipped)

	total, err := repo.Count(context.Background(), repository.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
}

func TestImportJSON_SkipsRecordsMissingRequiredFields(t *testing.T) {
	svc, repo, _ := setup(t)

	records := []map[string]any{
		{
			// cn missing.
			"character": "雷电将军", "contact": "QQ",
			"needed_date": "2024-06-15", "order_date": "2024-05-01", "final_amount": 100.0,
		},
		{
			// unparseable date.
			"cn": "小红", "character": "八重神子", "contact": "QQ",
			"needed_date": "15/06/2024", "order_date": "2024-05-01", "final_amount": 100.0,
		},
		{
			"cn": "小刚", "character": "钟离", "contact": "闲鱼",
			"needed_date": "2024-07-10", "order_date": "2024-05-03", "final_amount": 600.0,
		},
	}
	path := writeImportFile(t, records)

	result, err := svc.ImportJSON(context.Background(), path, false)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 2, result.Skipped)

	total, err := repo.Count(context.Background(), repository.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestImportJSON_AppliesDefaultsAndPreservesCreatedAt(t *testing.T) {
	svc, repo, _ := setup(t)

	records := []map[string]any{
		{
			"cn": "小明", "character": "雷电将军", "contact": "QQ",
			"needed_date": "2024-06-15", "order_date": "2024-05-01", "final_amount": 100.0,
			"created_at": "2023-12-01 08:30:00",
		},
		{
			"cn": "小红", "character": "八重神子", "contact": "QQ",
			"needed_date": "2024-07-01", "order_date": "2024-05-01", "final_amount": 200.0,
			"created_at": "not a timestamp",
		},
	}
	path := writeImportFile(t, records)

	result, err := svc.ImportJSON(context.Background(), path, false)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)

	orders, err := repo.List(context.Background(), repository.ListFilter{}, repository.Sort{Key: repository.SortByNeededDate})
	require.NoError(t, err)
	require.Len(t, orders, 2)

	assert.Equal(t, time.Date(2023, 12, 1, 8, 30, 0, 0, time.UTC), orders[0].CreatedAt)
	assert.Equal(t, domain.DefaultCakeBox, orders[0].CakeBox)
	assert.Equal(t, domain.StatusPending, orders[0].Status)
	assert.False(t, orders[0].DepositPaid)

	// Unparseable created_at falls back to the import time.
	assert.Equal(t, time.Date(2024, 6, 10, 15, 4, 5, 0, time.UTC), orders[1].CreatedAt)
}

func TestImportJSON_MissingFile(t *testing.T) {
	svc, _, _ := setup(t)

	_, err := svc.ImportJSON(context.Background(), "/nonexistent/orders.json", false)
	_, ok := apperrors.IsIOError(err)
	assert.True(t, ok)
}

func TestImportJSON_NotAnArray(t *testing.T) {
	svc, _, _ := setup(t)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"cn":"x"}`), 0o644))

	_, err := svc.ImportJSON(context.Background(), path, false)
	_, ok := apperrors.IsValidationError(err)
	assert.True(t, ok)
}

func TestBackup(t *testing.T) {
	svc, repo, dbPath := setup(t)
	seedOrder(t, repo, "小明", "雷电将军", "2024-06-15", domain.StatusPending, 299.5)

	backupPath, err := svc.Backup()
	require.NoError(t, err)
	assert.Equal(t, "coswig_orders_backup_20240610_150405.db", filepath.Base(backupPath))

	src, err := os.ReadFile(dbPath)
	require.NoError(t, err)
	dst, err := os.ReadFile(backupPath)
	require.NoError(t, err)
	assert.Equal(t, src, dst)
}

func TestBackup_MissingSource(t *testing.T) {
	svc, _, _ := setup(t)
	svc.dbPath = filepath.Join(t.TempDir(), "does_not_exist.db")

	_, err := svc.Backup()
	_, ok := apperrors.IsIOError(err)
	assert.True(t, ok)
}

func TestRestore(t *testing.T) {
	svc, repo, dbPath := setup(t)
	seedOrder(t, repo, "小明", "雷电将军", "2024-06-15", domain.StatusPending, 299.5)

	backupPath, err := svc.Backup()
	require.NoError(t, err)

	// Change the live store after the backup.
	seedOrder(t, repo, "小红", "八重神子", "2024-07-01", domain.StatusPending, 450)
	liveBefore, err := os.ReadFile(dbPath)
	require.NoError(t, err)

	safetyCopy, err := svc.Restore(backupPath)
	require.NoError(t, err)
	assert.Equal(t, "coswig_orders_before_restore_20240610_150405.db", filepath.Base(safetyCopy))

	// The safety copy preserves the pre-restore live bytes; the live file
	// now matches the backup.
	saved, err := os.ReadFile(safetyCopy)
	require.NoError(t, err)
	assert.Equal(t, liveBefore, saved)

	backup, err := os.ReadFile(backupPath)
	require.NoError(t, err)
	live, err := os.ReadFile(dbPath)
	require.NoError(t, err)
	assert.Equal(t, backup, live)
}

func TestRestore_MissingBackupLeavesStoreUntouched(t *testing.T) {
	svc, repo, dbPath := setup(t)
	seedOrder(t, repo, "小明", "雷电将军", "2024-06-15", domain.StatusPending, 299.5)

	before, err := os.ReadFile(dbPath)
	require.NoError(t, err)

	_, err = svc.Restore(filepath.Join(t.TempDir(), "no_such_backup.db"))
	_, ok := apperrors.IsIOError(err)
	require.True(t, ok)

	after, err := os.ReadFile(dbPath)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestInfo(t *testing.T) {
	svc, repo, dbPath := setup(t)
	seedOrder(t, repo, "小明", "雷电将军", "2024-06-15", domain.StatusPending, 299.5)
	seedOrder(t, repo, "小红", "八重神子", "2024-07-01", domain.StatusShipped, 450)

	info, err := svc.Info(context.Background())
	require.NoError(t, err)

	assert.Equal(t, dbPath, info.Path)
	assert.Greater(t, info.SizeBytes, int64(0))
	assert.False(t, info.ModifiedAt.IsZero())
	assert.Equal(t, int64(2), info.TotalOrders)
	assert.Equal(t, int64(1), info.StatusCounts[domain.StatusPending])
	assert.Equal(t, int64(1), info.StatusCounts[domain.StatusShipped])
}

func TestInfo_MissingFile(t *testing.T) {
	svc, _, _ := setup(t)
	svc.dbPath = filepath.Join(t.TempDir(), "gone.db")

	_, err := svc.Info(context.Background())
	_, ok := apperrors.IsIOError(err)
	assert.True(t, ok)
}

func writeImportFile(t *testing.T, records []map[string]any) string {
	t.Helper()
	data, err := json.Marshal(records)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "import.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}
