package playground

import (
	"context"
	"testing"

	"kubelearn/internal/levels"
)

// reverseShuffler reverses the lines so tests know the pool order.
type reverseShuffler struct{ calls int }

func (r *reverseShuffler) Shuffle(lines []levels.Line) []levels.Line {
	r.calls++
	out := make([]levels.Line, len(lines))
	for i, l := range lines {
		out[len(lines)-1-i] = l
	}
	return out
}

type recordingLogger struct{ events []string }

func (r *recordingLogger) Error(msg string, _ map[string]any) { r.events = append(r.events, msg) }

func builtinLevels(t *testing.T) []levels.Level {
	t.Helper()
	lv, err := levels.NewLoader().LoadCatalog(context.Background(), "")
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	return lv
}

func newTestEngine(t *testing.T) (*Engine, *recordingLogger) {
	t.Helper()
	log := &recordingLogger{}
	e, err := NewEngine(builtinLevels(t), WithShuffler(&reverseShuffler{}), WithLogger(log))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return e, log
}

func lineAt(t *testing.T, level levels.Level, position int) levels.Line {
	t.Helper()
	for _, l := range level.Lines {
		if l.Position == position {
			return l
		}
	}
	t.Fatalf("no line at position %d", position)
	return levels.Line{}
}

func mustPlace(t *testing.T, p Placement, pos int, line levels.Line) Placement {
	t.Helper()
	next, err := p.Place(pos, line)
	if err != nil {
		t.Fatalf("place %s at %d: %v", line.ID, pos, err)
	}
	return next
}
