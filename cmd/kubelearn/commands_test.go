package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"kubelearn/internal/app"
)

func TestPrintLevels(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := []app.LevelRow{
		{Index: 0, LevelID: "build-first-pod", Title: "Build Your First Pod", Lines: 11, CompletedCount: 2, BestScore: 1000, BestTimeMS: 42_000, LastPlayed: now.Add(-2 * time.Hour)},
		{Index: 1, LevelID: "multi-container-pod", Title: "Multi-container Pod", Lines: 14},
	}
	var buf bytes.Buffer
	if err := printLevels(&buf, rows, now); err != nil {
		t.Fatalf("print: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"build-first-pod", "1,000", "42s", "2 hours ago", "never"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestLevelsCommandListsBuiltinCatalog(t *testing.T) {
	t.Setenv("KUBELEARN_DATA_DIR", t.TempDir())
	cfg := app.DefaultConfig()
	cmd := newRootCmd(&cfg)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"levels"})
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("levels: %v", err)
	}
	if !strings.Contains(buf.String(), "build-first-pod") {
		t.Fatalf("expected builtin level in output:\n%s", buf.String())
	}
}

func TestFlagsWinOverEnvironment(t *testing.T) {
	t.Setenv("KUBELEARN_DATA_DIR", "/from/env")
	t.Setenv("KUBELEARN_SEED", "9")
	dir := t.TempDir()

	cfg := app.DefaultConfig()
	cmd := newRootCmd(&cfg)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"levels", "--data-dir", dir})
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if cfg.DataDir != dir {
		t.Fatalf("expected flag data dir %q, got %q", dir, cfg.DataDir)
	}
	if cfg.Seed != 9 {
		t.Fatalf("expected seed from environment, got %d", cfg.Seed)
	}
}
