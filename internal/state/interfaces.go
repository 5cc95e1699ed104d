package state

import (
	"context"
	"time"
)

// Store keeps run statistics. Placement state is never persisted.
type Store interface {
	EnsureSchema(ctx context.Context) error
	StartLevelRun(ctx context.Context, run LevelRun) (int64, error)
	RecordDrop(ctx context.Context, runID int64, drop Drop) error
	IncrementReset(ctx context.Context, runID int64) error
	CompleteLevelRun(ctx context.Context, runID int64, score int) error
	UpsertLevelProgress(ctx context.Context, update LevelProgressUpdate) error
	GetLevelProgressMap(ctx context.Context) (map[string]LevelProgress, error)
	SaveSettings(ctx context.Context, values map[string]string) error
	LoadSettings(ctx context.Context) (map[string]string, error)
	GetSummary(ctx context.Context) (Summary, error)
	GetLastRun(ctx context.Context) (*LastRun, error)
	Close() error
}

type LevelRun struct {
	SessionID string
	LevelID   string
	StartTS   time.Time
}

// Drop is one counted move. Slot is -1 when the line went back to the pool.
type Drop struct {
	LineID  string
	Slot    int
	Correct bool
}

type Summary struct {
	LevelRuns   int
	Completions int
	Moves       int
	Mistakes    int
	Resets      int
}

type LastRun struct {
	SessionID string
	LevelID   string
	StartTS   time.Time
	Completed bool
	Moves     int
	Mistakes  int
	Resets    int
	Score     int
}

type LevelProgress struct {
	LevelID         string
	CompletedCount  int
	BestScore       int
	BestTimeMS      int64
	LastPlayedTS    time.Time
	LastCompletedTS time.Time
}

type LevelProgressUpdate struct {
	LevelID      string
	Completed    bool
	Score        int
	DurationMS   int64
	LastPlayedTS time.Time
}
