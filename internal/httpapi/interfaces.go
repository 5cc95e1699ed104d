package httpapi

import (
	"context"

	"kubelearn/internal/playground"
)

// Game is the session the HTTP surface drives. Implementations serialise
// access themselves.
type Game interface {
	Snapshot(ctx context.Context) (playground.Snapshot, error)
	Drag(ctx context.Context, sourceID, targetID string) (playground.Snapshot, error)
	Reset(ctx context.Context) (playground.Snapshot, error)
	Advance(ctx context.Context) (playground.Snapshot, error)
	Restart(ctx context.Context) (playground.Snapshot, error)
	Manifest(ctx context.Context) (ManifestView, error)
	Levels(ctx context.Context) ([]LevelInfo, error)
}

type Logger interface {
	Info(msg string, fields map[string]any)
	Error(msg string, fields map[string]any)
}
