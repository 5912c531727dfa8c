package service

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"coswig/internal/domain"
	apperrors "coswig/internal/errors"
	"coswig/internal/order/repository"

	"go.uber.org/zap"
)

// copyFile reads the source fully before touching the destination, so a
// missing or unreadable source never damages an existing target file.
func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}

// Backup copies the store file into the backup directory under a
// timestamped name and returns the backup path.
func (s *DataService) Backup() (string, error) {
	if _, err := os.Stat(s.dbPath); err != nil {
		return "", apperrors.NewIOError("database file does not exist", err)
	}

	if err := os.MkdirAll(s.backupDir, 0o755); err != nil {
		return "", apperrors.NewIOError("creating backup directory", err)
	}

	backupPath := filepath.Join(s.backupDir, "coswig_orders_backup_"+s.timestamp()+".db")
	if err := copyFile(s.dbPath, backupPath); err != nil {
		return "", apperrors.NewIOError("copying database to backup", err)
	}

	s.logger.Info("database backed up", zap.String("file", backupPath))
	return backupPath, nil
}

// Restore overwrites the live store file with the named backup. If a live
// file exists it is first copied aside under a timestamped
// before-restore name; that safety copy's path is returned.
func (s *DataService) Restore(backupFile string) (string, error) {
	if _, err := os.Stat(backupFile); err != nil {
		return "", apperrors.NewIOError("backup file does not exist", err)
	}

	var safetyCopy string
	if _, err := os.Stat(s.dbPath); err == nil {
		if err := os.MkdirAll(s.backupDir, 0o755); err != nil {
			return "", apperrors.NewIOError("creating backup directory", err)
		}
		safetyCopy = filepath.Join(s.backupDir, "coswig_orders_before_restore_"+s.timestamp()+".db")
		if err := copyFile(s.dbPath, safetyCopy); err != nil {
			return "", apperrors.NewIOError("snapshotting current database", err)
		}
		s.logger.Info("current database snapshotted before restore", zap.String("file", safetyCopy))
	}

	if err := copyFile(backupFile, s.dbPath); err != nil {
		return safetyCopy, apperrors.NewIOError("restoring database from backup", err)
	}

	s.logger.Info("database restored", zap.String("from", backupFile))
	return safetyCopy, nil
}

type DatabaseInfo struct {
	Path         string
	SizeBytes    int64
	ModifiedAt   time.Time
	TotalOrders  int64
	StatusCounts map[domain.Status]int64
}

// Info reports the store file's size and mtime along with order counts.
// Read-only; no side effects.
func (s *DataService) Info(ctx context.Context) (*DatabaseInfo, error) {
	stat, err := os.Stat(s.dbPath)
	if err != nil {
		return nil, apperrors.NewIOError("database file does not exist", err)
	}

	total, err := s.repo.Count(ctx, repository.ListFilter{})
	if err != nil {
		return nil, err
	}

	statusCounts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	return &DatabaseInfo{
		Path:         s.dbPath,
		SizeBytes:    stat.Size(),
		ModifiedAt:   stat.ModTime(),
		TotalOrders:  total,
		StatusCounts: statusCounts,
	}, nil
}
