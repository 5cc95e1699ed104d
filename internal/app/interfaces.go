package app

import (
	"context"

	"kubelearn/internal/grading"
	"kubelearn/internal/state"
)

type Logger interface {
	Info(msg string, fields map[string]any)
	Error(msg string, fields map[string]any)
}

type Store interface {
	StartLevelRun(ctx context.Context, run state.LevelRun) (int64, error)
	RecordDrop(ctx context.Context, runID int64, drop state.Drop) error
	IncrementReset(ctx context.Context, runID int64) error
	CompleteLevelRun(ctx context.Context, runID int64, score int) error
	UpsertLevelProgress(ctx context.Context, update state.LevelProgressUpdate) error
	GetLevelProgressMap(ctx context.Context) (map[string]state.LevelProgress, error)
}

type Grader interface {
	Grade(ctx context.Context, req grading.Request) (grading.Result, error)
}
