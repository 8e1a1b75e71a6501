package db

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// StartOrphanFileCleaner periodically removes files from the upload
// directory that no images row references. Files newer than retention
// are kept so an upload racing the scan is never deleted.
func StartOrphanFileCleaner(
	ctx context.Context,
	db *sql.DB,
	uploadDir string,
	interval time.Duration,
	retention time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed, err := cleanOrphanFiles(ctx, db, uploadDir, retention)
				if err != nil {
					log.Error("failed to clean orphan upload files", zap.Error(err))
					continue
				}
				if removed > 0 {
					log.Info("cleaned orphan upload files", zap.Int("removed", removed))
				}
			}
		}
	}()
}

func cleanOrphanFiles(ctx context.Context, db *sql.DB, uploadDir string, retention time.Duration) (int, error) {
	rows, err := db.QueryContext(ctx, `SELECT image_url FROM images`)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	referenced := make(map[string]bool)
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return 0, err
		}
		referenced[filepath.Base(url)] = true
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	entries, err := os.ReadDir(uploadDir)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-retention)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || referenced[entry.Name()] {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(uploadDir, entry.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}
