package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"kubelearn/internal/state"
)

// LevelRow is one catalog entry joined with stored progress.
type LevelRow struct {
	Index          int
	LevelID        string
	Title          string
	Lines          int
	CompletedCount int
	BestScore      int
	BestTimeMS     int64
	LastPlayed     time.Time
}

// ListLevels loads and verifies the catalog. Progress is read from the data
// directory when a state database already exists there.
func ListLevels(ctx context.Context, cfg Config) ([]LevelRow, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	catalog, err := LoadCatalog(ctx, cfg.LevelsDir)
	if err != nil {
		return nil, err
	}

	progress := map[string]state.LevelProgress{}
	dbPath := filepath.Join(cfg.DataDir, "state.db")
	if _, err := os.Stat(dbPath); err == nil {
		store, err := state.NewSQLite(dbPath)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		if progress, err = store.GetLevelProgressMap(ctx); err != nil {
			return nil, fmt.Errorf("load level progress: %w", err)
		}
	}

	rows := make([]LevelRow, 0, len(catalog))
	for i, l := range catalog {
		p := progress[l.LevelID]
		rows = append(rows, LevelRow{
			Index:          i,
			LevelID:        l.LevelID,
			Title:          l.Title,
			Lines:          len(l.Lines),
			CompletedCount: p.CompletedCount,
			BestScore:      p.BestScore,
			BestTimeMS:     p.BestTimeMS,
			LastPlayed:     p.LastPlayedTS,
		})
	}
	return rows, nil
}
