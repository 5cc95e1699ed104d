package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"kubelearn/internal/grading"
	"kubelearn/internal/httpapi"
	"kubelearn/internal/levels"
	"kubelearn/internal/manifest"
	"kubelearn/internal/playground"
	"kubelearn/internal/state"

	"github.com/google/uuid"
)

// Update is what subscribers see after every change to the session.
type Update struct {
	Snapshot    playground.Snapshot
	Explanation string
	Best        int
	Result      *grading.Result
	// Finished is set only on the update that completed the level.
	Finished bool
}

// Session owns the game state for one player. The terminal view and the
// HTTP surface both drive it. mu guards the state. pubMu serialises
// changes with their delivery to subscribers.
type Session struct {
	mu     sync.Mutex
	engine *playground.Engine
	state  playground.State
	store  Store
	grader Grader
	log    Logger
	now    func() time.Time

	id          string
	runID       int64
	runStart    time.Time
	explanation string
	result      *grading.Result
	best        map[string]int

	pubMu       sync.Mutex
	subscribers []func(Update)
}

func NewSession(ctx context.Context, engine *playground.Engine, store Store, grader Grader, log Logger) *Session {
	s := &Session{
		engine: engine,
		store:  store,
		grader: grader,
		log:    log,
		now:    time.Now,
		id:     uuid.NewString(),
		best:   map[string]int{},
	}
	s.state = engine.Start()
	s.loadBest(ctx)
	s.startRun(ctx)
	return s
}

func (s *Session) ID() string { return s.id }

// Subscribe registers fn for every later update. Updates are delivered in
// order after the state lock is released, so fn may read the session
// (Current, Snapshot, Level, Manifest, Levels) but must not change it.
func (s *Session) Subscribe(fn func(Update)) {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// Current returns the latest update without changing anything.
func (s *Session) Current() Update {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateLocked(false)
}

func (s *Session) Level() levels.Level {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Level(s.state)
}

func (s *Session) Snapshot(ctx context.Context) (playground.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Snapshot(s.state), ctx.Err()
}

func (s *Session) DragStart(ctx context.Context, sourceID string) {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()
	s.mu.Lock()
	s.state = s.engine.DragStart(s.state, sourceID)
	u := s.updateLocked(false)
	s.mu.Unlock()
	s.publish(u)
}

func (s *Session) CancelDrag(ctx context.Context) {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()
	s.mu.Lock()
	s.state = s.engine.CancelDrag(s.state)
	u := s.updateLocked(false)
	s.mu.Unlock()
	s.publish(u)
}

// Drag applies one finished gesture. An empty targetID drops on nothing.
func (s *Session) Drag(ctx context.Context, sourceID, targetID string) (playground.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return playground.Snapshot{}, err
	}
	s.pubMu.Lock()
	defer s.pubMu.Unlock()
	s.mu.Lock()

	wasComplete := s.engine.Complete(s.state)
	next, t := s.engine.DragEnd(s.state, sourceID, targetID)
	s.state = next
	s.recordTransition(ctx, t)

	finished := false
	if !wasComplete && s.engine.Complete(s.state) && s.result == nil {
		s.finishLocked(ctx)
		finished = true
	}
	u := s.updateLocked(finished)
	s.mu.Unlock()
	s.publish(u)
	return u.Snapshot, nil
}

// Reset reshuffles the current level. After a completed run it starts a
// fresh run with zeroed counters instead.
func (s *Session) Reset(ctx context.Context) (playground.Snapshot, error) {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()
	s.mu.Lock()

	s.explanation = ""
	if s.result != nil {
		next := s.engine.Reset(s.state)
		next.Moves, next.Mistakes, next.Resets = 0, 0, 0
		s.state = next
		s.startRun(ctx)
	} else {
		s.state = s.engine.Reset(s.state)
		if err := s.store.IncrementReset(ctx, s.runID); err != nil {
			s.log.Error("store.increment_reset_failed", map[string]any{"run": s.runID, "error": err})
		}
	}
	s.log.Info("game.reset", map[string]any{"level": s.engine.Level(s.state).LevelID, "resets": s.state.Resets})
	u := s.updateLocked(false)
	s.mu.Unlock()
	s.publish(u)
	return u.Snapshot, nil
}

// Advance moves to the next level. On the last level nothing changes.
func (s *Session) Advance(ctx context.Context) (playground.Snapshot, error) {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()
	s.mu.Lock()

	if !s.engine.HasNext(s.state) {
		defer s.mu.Unlock()
		return s.engine.Snapshot(s.state), nil
	}
	s.state = s.engine.Advance(s.state)
	s.explanation = ""
	s.startRun(ctx)
	s.log.Info("game.advance", map[string]any{"level": s.engine.Level(s.state).LevelID})
	u := s.updateLocked(false)
	s.mu.Unlock()
	s.publish(u)
	return u.Snapshot, nil
}

func (s *Session) Restart(ctx context.Context) (playground.Snapshot, error) {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()
	s.mu.Lock()

	s.state = s.engine.Restart(s.state)
	s.explanation = ""
	s.startRun(ctx)
	s.log.Info("game.restart", map[string]any{"level": s.engine.Level(s.state).LevelID})
	u := s.updateLocked(false)
	s.mu.Unlock()
	s.publish(u)
	return u.Snapshot, nil
}

// Manifest renders the editor as text. Once the level is complete the text
// is decoded and summarised as well.
func (s *Session) Manifest(ctx context.Context) (httpapi.ManifestView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	level := s.engine.Level(s.state)
	view := httpapi.ManifestView{
		LevelID:  level.LevelID,
		Text:     manifest.Assemble(level, s.state.Placement),
		Complete: s.engine.Complete(s.state),
	}
	if view.Complete {
		summary, err := manifest.Inspect(view.Text)
		if err != nil {
			view.Error = err.Error()
		} else {
			view.Summary = &summary
		}
	}
	return view, ctx.Err()
}

func (s *Session) Levels(ctx context.Context) ([]httpapi.LevelInfo, error) {
	progress, err := s.store.GetLevelProgressMap(ctx)
	if err != nil {
		return nil, fmt.Errorf("load level progress: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.engine.Levels()
	out := make([]httpapi.LevelInfo, 0, len(all))
	for i, l := range all {
		p := progress[l.LevelID]
		out = append(out, httpapi.LevelInfo{
			Index:          i,
			LevelID:        l.LevelID,
			Title:          l.Title,
			Lines:          len(l.Lines),
			Current:        i == s.state.LevelIndex,
			BestScore:      p.BestScore,
			CompletedCount: p.CompletedCount,
		})
	}
	return out, nil
}

func (s *Session) recordTransition(ctx context.Context, t playground.Transition) {
	level := s.engine.Level(s.state).LevelID
	switch t := t.(type) {
	case playground.Place:
		s.recordDrop(ctx, t.Line.ID, t.To, t.Line.Position == t.To)
		if t.Line.Position == t.To {
			s.explanation = t.Line.Explanation
		}
		s.log.Info("game.place", map[string]any{"level": level, "line": t.Line.ID, "slot": t.To, "evicted": t.Evicted})
	case playground.Swap:
		s.recordDrop(ctx, t.Dragged.ID, t.To, t.Dragged.Position == t.To)
		switch {
		case t.Dragged.Position == t.To:
			s.explanation = t.Dragged.Explanation
		case t.Occupant.Position == t.From:
			s.explanation = t.Occupant.Explanation
		}
		s.log.Info("game.swap", map[string]any{"level": level, "from": t.From, "to": t.To})
	case playground.Clear:
		s.recordDrop(ctx, t.LineID, -1, true)
		s.log.Info("game.clear", map[string]any{"level": level, "line": t.LineID, "slot": t.From})
	case playground.Reject:
		s.log.Info("game.reject", map[string]any{"level": level, "line": t.LineID, "slot": t.Position})
	}
}

// recordDrop mirrors one engine move into the run so the stored moves and
// mistakes match the engine counters.
func (s *Session) recordDrop(ctx context.Context, lineID string, slot int, correct bool) {
	err := s.store.RecordDrop(ctx, s.runID, state.Drop{LineID: lineID, Slot: slot, Correct: correct})
	if err != nil {
		s.log.Error("store.record_drop_failed", map[string]any{"run": s.runID, "line": lineID, "error": err})
	}
}

func (s *Session) startRun(ctx context.Context) {
	s.result = nil
	s.runStart = s.now()
	level := s.engine.Level(s.state)
	runID, err := s.store.StartLevelRun(ctx, state.LevelRun{SessionID: s.id, LevelID: level.LevelID, StartTS: s.runStart})
	if err != nil {
		s.log.Error("store.start_run_failed", map[string]any{"level": level.LevelID, "error": err})
		s.runID = 0
		return
	}
	s.runID = runID
	if err := s.store.UpsertLevelProgress(ctx, state.LevelProgressUpdate{LevelID: level.LevelID, LastPlayedTS: s.runStart}); err != nil {
		s.log.Error("store.level_progress_failed", map[string]any{"level": level.LevelID, "error": err})
	}
}

func (s *Session) finishLocked(ctx context.Context) {
	level := s.engine.Level(s.state)
	finished := s.now()
	result, err := s.grader.Grade(ctx, grading.Request{
		LevelID:              level.LevelID,
		RunID:                fmt.Sprintf("%s-%d", s.id, s.runID),
		StartedAt:            s.runStart,
		FinishedAt:           finished,
		Manifest:             manifest.Assemble(level, s.state.Placement),
		Correct:              s.engine.CorrectCount(s.state),
		Total:                len(level.Lines),
		Moves:                s.state.Moves,
		Mistakes:             s.state.Mistakes,
		Resets:               s.state.Resets,
		BasePoints:           level.Scoring.BasePoints,
		MistakePenaltyPoints: level.Scoring.MistakePenaltyPoints,
		ResetPenaltyPoints:   level.Scoring.ResetPenaltyPoints,
	})
	if err != nil {
		s.log.Error("grading.failed", map[string]any{"level": level.LevelID, "error": err})
		return
	}
	s.result = &result
	score := result.Score.TotalPoints

	if err := s.store.CompleteLevelRun(ctx, s.runID, score); err != nil {
		s.log.Error("store.complete_run_failed", map[string]any{"run": s.runID, "error": err})
	}
	update := state.LevelProgressUpdate{LevelID: level.LevelID, Completed: result.Passed, Score: score, LastPlayedTS: finished}
	if result.Passed {
		update.DurationMS = result.Run.DurationMS
	}
	err = s.store.UpsertLevelProgress(ctx, update)
	if err != nil {
		s.log.Error("store.level_progress_failed", map[string]any{"level": level.LevelID, "error": err})
	}
	if result.Passed && score > s.best[level.LevelID] {
		s.best[level.LevelID] = score
	}
	s.log.Info("level.completed", map[string]any{
		"level":    level.LevelID,
		"passed":   result.Passed,
		"score":    score,
		"moves":    s.state.Moves,
		"mistakes": s.state.Mistakes,
		"resets":   s.state.Resets,
	})
}

func (s *Session) loadBest(ctx context.Context) {
	progress, err := s.store.GetLevelProgressMap(ctx)
	if err != nil {
		s.log.Error("store.level_progress_load_failed", map[string]any{"error": err})
		return
	}
	for id, p := range progress {
		s.best[id] = p.BestScore
	}
}

func (s *Session) updateLocked(finished bool) Update {
	snap := s.engine.Snapshot(s.state)
	return Update{
		Snapshot:    snap,
		Explanation: s.explanation,
		Best:        s.best[snap.LevelID],
		Result:      s.result,
		Finished:    finished,
	}
}

// publish delivers u to every subscriber. Callers hold pubMu but not mu.
func (s *Session) publish(u Update) {
	for _, fn := range s.subscribers {
		fn(u)
	}
}
