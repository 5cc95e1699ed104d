package app

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"kubelearn/internal/grading"
	"kubelearn/internal/levels"
	"kubelearn/internal/playground"
	"kubelearn/internal/state"
)

type nopLogger struct{}

func (nopLogger) Info(string, map[string]any)  {}
func (nopLogger) Error(string, map[string]any) {}

type inOrder struct{}

func (inOrder) Shuffle(lines []levels.Line) []levels.Line {
	return append([]levels.Line(nil), lines...)
}

func newTestSession(t *testing.T) (*Session, *state.SQLiteStore) {
	t.Helper()
	ctx := context.Background()
	catalog, err := LoadCatalog(ctx, "")
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	engine, err := playground.NewEngine(catalog, playground.WithShuffler(inOrder{}))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	store, err := state.NewSQLite(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if err := store.EnsureSchema(ctx); err != nil {
		t.Fatalf("schema: %v", err)
	}
	return NewSession(ctx, engine, store, grading.NewGrader(), nopLogger{}), store
}

func solve(t *testing.T, s *Session) playground.Snapshot {
	t.Helper()
	var snap playground.Snapshot
	for _, line := range s.Level().Solution() {
		var err error
		snap, err = s.Drag(context.Background(), playground.PoolItemID(line.ID), playground.SlotID(line.Position))
		if err != nil {
			t.Fatalf("drag %s: %v", line.ID, err)
		}
	}
	return snap
}

func TestSolvingLevelGradesAndRecordsProgress(t *testing.T) {
	s, store := newTestSession(t)
	ctx := context.Background()

	var (
		mu       sync.Mutex
		finished int
		last     Update
	)
	s.Subscribe(func(u Update) {
		mu.Lock()
		defer mu.Unlock()
		if u.Finished {
			finished++
		}
		last = u
	})

	snap := solve(t, s)
	if !snap.Complete {
		t.Fatalf("expected level complete, got %d/%d", snap.Correct, snap.Total)
	}

	mu.Lock()
	defer mu.Unlock()
	if finished != 1 {
		t.Fatalf("expected one finished update, got %d", finished)
	}
	if last.Result == nil || !last.Result.Passed {
		t.Fatalf("expected passing result, got %+v", last.Result)
	}
	if last.Result.Score.TotalPoints != 1000 {
		t.Fatalf("expected 1000 points, got %d", last.Result.Score.TotalPoints)
	}
	if last.Best != 1000 {
		t.Fatalf("expected best 1000, got %d", last.Best)
	}
	if last.Explanation == "" {
		t.Fatalf("expected explanation of last correct line")
	}

	progress, err := store.GetLevelProgressMap(ctx)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	p := progress[snap.LevelID]
	if p.CompletedCount != 1 || p.BestScore != 1000 {
		t.Fatalf("unexpected progress %+v", p)
	}
	run, err := store.GetLastRun(ctx)
	if err != nil || run == nil {
		t.Fatalf("last run: %v %v", run, err)
	}
	if !run.Completed || run.Moves != snap.Total || run.Mistakes != 0 {
		t.Fatalf("unexpected run %+v", run)
	}
}

func TestMistakesLowerScore(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()
	sol := s.Level().Solution()

	if _, err := s.Drag(ctx, playground.PoolItemID(sol[0].ID), playground.SlotID(1)); err != nil {
		t.Fatalf("drag: %v", err)
	}
	snap, _ := s.Snapshot(ctx)
	if snap.Mistakes != 1 {
		t.Fatalf("expected one mistake, got %d", snap.Mistakes)
	}
	solve(t, s)
	u := s.Current()
	if u.Result == nil {
		t.Fatalf("expected a result")
	}
	if u.Result.Score.TotalPoints != 975 {
		t.Fatalf("expected 975 points, got %d", u.Result.Score.TotalPoints)
	}
}

func TestMalformedDragIsNoop(t *testing.T) {
	s, _ := newTestSession(t)
	before, _ := s.Snapshot(context.Background())
	after, err := s.Drag(context.Background(), "no-such-line", "slot-0")
	if err != nil {
		t.Fatalf("drag: %v", err)
	}
	if after.Moves != before.Moves || after.Feedback != before.Feedback {
		t.Fatalf("expected no change, got %+v", after)
	}
}

func TestResetCountsAgainstRun(t *testing.T) {
	s, store := newTestSession(t)
	ctx := context.Background()
	snap, err := s.Reset(ctx)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if snap.Resets != 1 {
		t.Fatalf("expected one reset, got %d", snap.Resets)
	}
	run, err := store.GetLastRun(ctx)
	if err != nil || run == nil || run.Resets != 1 {
		t.Fatalf("expected stored reset, got %+v (%v)", run, err)
	}
}

func TestReplayAfterCompletionStartsFreshRun(t *testing.T) {
	s, store := newTestSession(t)
	ctx := context.Background()
	solve(t, s)
	snap, err := s.Reset(ctx)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if snap.Complete || snap.Moves != 0 || snap.Resets != 0 {
		t.Fatalf("expected fresh level, got %+v", snap)
	}
	if s.Current().Result != nil {
		t.Fatalf("expected result cleared")
	}
	sum, err := store.GetSummary(ctx)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if sum.LevelRuns != 2 || sum.Completions != 1 {
		t.Fatalf("unexpected summary %+v", sum)
	}
}

func TestAdvanceAndRestart(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()
	total := len(s.engine.Levels())
	for i := 1; i < total; i++ {
		snap, err := s.Advance(ctx)
		if err != nil {
			t.Fatalf("advance: %v", err)
		}
		if snap.LevelIndex != i {
			t.Fatalf("expected level %d, got %d", i, snap.LevelIndex)
		}
	}
	solve(t, s)
	snap, _ := s.Advance(ctx)
	if snap.LevelIndex != total-1 || !snap.Complete {
		t.Fatalf("expected advance on last level to change nothing, got %+v", snap)
	}
	snap, _ = s.Restart(ctx)
	if snap.LevelIndex != 0 || snap.Correct != 0 || snap.Moves != 0 {
		t.Fatalf("expected fresh first level, got %+v", snap)
	}
}

func TestManifestSummaryOnCompletion(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()
	view, err := s.Manifest(ctx)
	if err != nil {
		t.Fatalf("manifest: %v", err)
	}
	if view.Complete || view.Summary != nil {
		t.Fatalf("expected no summary before completion")
	}
	solve(t, s)
	view, err = s.Manifest(ctx)
	if err != nil {
		t.Fatalf("manifest: %v", err)
	}
	if view.Summary == nil || view.Summary.Kind != "Pod" {
		t.Fatalf("expected Pod summary, got %+v (%s)", view.Summary, view.Error)
	}
}

func TestLevelsListsProgress(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()
	solve(t, s)
	infos, err := s.Levels(ctx)
	if err != nil {
		t.Fatalf("levels: %v", err)
	}
	if len(infos) < 2 {
		t.Fatalf("expected several levels, got %d", len(infos))
	}
	if !infos[0].Current || infos[0].CompletedCount != 1 || infos[0].BestScore != 1000 {
		t.Fatalf("unexpected first level %+v", infos[0])
	}
	if infos[1].Current || infos[1].CompletedCount != 0 {
		t.Fatalf("unexpected second level %+v", infos[1])
	}
}

func TestStoredRunMatchesEngineCountersAfterSwapAndClear(t *testing.T) {
	s, store := newTestSession(t)
	ctx := context.Background()
	sol := s.Level().Solution()

	steps := [][2]string{
		{playground.PoolItemID(sol[0].ID), playground.SlotID(1)},
		{playground.PoolItemID(sol[1].ID), playground.SlotID(0)},
		{playground.PlacedItemID(sol[0].ID, 1), playground.SlotID(0)},
		{playground.PoolItemID(sol[2].ID), playground.SlotID(3)},
		{playground.PlacedItemID(sol[2].ID, 3), playground.PoolZoneID},
	}
	var snap playground.Snapshot
	for _, step := range steps {
		var err error
		if snap, err = s.Drag(ctx, step[0], step[1]); err != nil {
			t.Fatalf("drag %s: %v", step[0], err)
		}
	}
	if snap.Moves != 5 || snap.Mistakes != 3 {
		t.Fatalf("expected 5 moves and 3 mistakes, got %d and %d", snap.Moves, snap.Mistakes)
	}
	run, err := store.GetLastRun(ctx)
	if err != nil || run == nil {
		t.Fatalf("last run: %v %v", run, err)
	}
	if run.Moves != snap.Moves || run.Mistakes != snap.Mistakes {
		t.Fatalf("expected stored %d moves and %d mistakes, got %d and %d", snap.Moves, snap.Mistakes, run.Moves, run.Mistakes)
	}
}

func TestSubscriberCanReadSession(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()

	var seen []int
	s.Subscribe(func(u Update) {
		snap, err := s.Snapshot(ctx)
		if err != nil {
			t.Errorf("snapshot: %v", err)
			return
		}
		if snap.Moves != u.Snapshot.Moves {
			t.Errorf("expected snapshot moves %d, got %d", u.Snapshot.Moves, snap.Moves)
		}
		seen = append(seen, s.Current().Snapshot.Moves)
	})

	sol := s.Level().Solution()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for _, line := range sol {
			if _, err := s.Drag(ctx, playground.PoolItemID(line.ID), playground.SlotID(line.Position)); err != nil {
				t.Errorf("drag %s: %v", line.ID, err)
				return
			}
		}
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("expected subscriber reads not to block the session")
	}
	if len(seen) != len(sol) {
		t.Fatalf("expected %d updates, got %d", len(sol), len(seen))
	}
	for i, moves := range seen {
		if moves != i+1 {
			t.Fatalf("expected updates in order, got %v", seen)
		}
	}
}
