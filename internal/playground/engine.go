package playground

import (
	"errors"
	"fmt"

	"kubelearn/internal/levels"
)

// State is the whole game at one instant. Engine methods take a State and
// return the next one; a State is never modified after it is returned.
type State struct {
	LevelIndex int
	Placement  Placement
	Order      []levels.Line
	Feedback   Feedback
	Dragging   *Source

	Moves    int
	Mistakes int
	Resets   int
}

type Engine struct {
	levels  []levels.Level
	shuffle Shuffler
	log     Logger
}

type Option func(*Engine)

func WithShuffler(s Shuffler) Option {
	return func(e *Engine) {
		if s != nil {
			e.shuffle = s
		}
	}
}

func WithLogger(l Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

func NewEngine(catalog []levels.Level, opts ...Option) (*Engine, error) {
	if len(catalog) == 0 {
		return nil, errors.New("catalog has no levels")
	}
	for _, l := range catalog {
		if err := l.Validate(); err != nil {
			return nil, fmt.Errorf("level %q: %w", l.LevelID, err)
		}
	}
	e := &Engine{
		levels:  append([]levels.Level(nil), catalog...),
		shuffle: NewShuffler(0),
		log:     nopLogger{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func (e *Engine) Levels() []levels.Level { return e.levels }

func (e *Engine) Level(s State) levels.Level { return e.levels[e.clampIndex(s.LevelIndex)] }

// Start loads the first level.
func (e *Engine) Start() State {
	return e.load(0, e.levelIntro(0))
}

func (e *Engine) load(index int, fb Feedback) State {
	index = e.clampIndex(index)
	level := e.levels[index]
	return State{
		LevelIndex: index,
		Placement:  NewPlacement(len(level.Lines)),
		Order:      e.shuffle.Shuffle(level.Lines),
		Feedback:   fb,
	}
}

func (e *Engine) levelIntro(index int) Feedback {
	level := e.levels[e.clampIndex(index)]
	return Feedback{
		Kind: FeedbackInfo,
		Text: fmt.Sprintf("Level %d: %s. Drag the lines into the editor in the correct order.", index+1, level.Title),
	}
}

// DragStart records the in-flight source. Unknown ids are logged and ignored.
func (e *Engine) DragStart(s State, sourceID string) State {
	src, err := ParseSource(sourceID, e.Level(s), s.Placement)
	if err != nil {
		e.log.Error("game.drag_start_invalid", map[string]any{"source": sourceID, "error": err.Error()})
		s.Dragging = nil
		return s
	}
	s.Dragging = &src
	return s
}

// CancelDrag ends a gesture without a drop.
func (e *Engine) CancelDrag(s State) State {
	s.Dragging = nil
	return s
}

// DragEnd resolves wire ids and applies the drop. An empty targetID means
// the gesture ended outside every droppable and changes nothing. A source
// that differs from the one given to DragStart is logged and the drop is
// applied to the source named here.
func (e *Engine) DragEnd(s State, sourceID, targetID string) (State, Transition) {
	started := s.Dragging
	s.Dragging = nil
	level := e.Level(s)
	src, err := ParseSource(sourceID, level, s.Placement)
	if err != nil {
		e.log.Error("game.drag_end_invalid_source", map[string]any{"source": sourceID, "error": err.Error()})
		return s, Noop{}
	}
	if started != nil && *started != src {
		e.log.Error("game.drag_end_source_mismatch", map[string]any{"started": started.WireID(), "source": sourceID})
	}
	tgt, err := ParseTarget(targetID, level)
	if err != nil {
		e.log.Error("game.drag_end_invalid_target", map[string]any{"target": targetID, "error": err.Error()})
		return s, Noop{}
	}
	return e.Drop(s, src, tgt)
}

// Drop applies one gesture given as typed descriptors.
func (e *Engine) Drop(s State, src Source, tgt Target) (State, Transition) {
	s.Dragging = nil
	t, err := Decide(e.Level(s), s.Placement, src, tgt)
	if err != nil {
		e.log.Error("game.drop_invalid", map[string]any{"line": src.LineID, "error": err.Error()})
		return s, Noop{}
	}
	next, err := Apply(s.Placement, t)
	if err != nil {
		e.log.Error("game.apply_failed", map[string]any{"line": src.LineID, "error": err.Error()})
		return s, Noop{}
	}
	switch t.(type) {
	case Place, Swap, Clear:
		s.Moves++
	}
	if misplaced(t) {
		s.Mistakes++
	}
	s.Placement = next
	s.Feedback = FeedbackFor(t, s.Feedback)
	return s, t
}

func (e *Engine) CorrectCount(s State) int { return s.Placement.CorrectCount() }

func (e *Engine) Complete(s State) bool {
	return s.Placement.CorrectCount() == len(e.Level(s).Lines)
}

func (e *Engine) HasNext(s State) bool { return s.LevelIndex+1 < len(e.levels) }

// Advance moves to the next level. On the last level it returns s unchanged.
func (e *Engine) Advance(s State) State {
	if !e.HasNext(s) {
		return s
	}
	next := s.LevelIndex + 1
	return e.load(next, e.levelIntro(next))
}

// Reset replays the current level with a fresh shuffle.
func (e *Engine) Reset(s State) State {
	out := e.load(s.LevelIndex, Feedback{Kind: FeedbackInfo, Text: "Level reset. The lines have been reshuffled."})
	out.Moves = s.Moves
	out.Mistakes = s.Mistakes
	out.Resets = s.Resets + 1
	return out
}

// Restart returns to the first level.
func (e *Engine) Restart(s State) State {
	return e.load(0, Feedback{
		Kind: FeedbackInfo,
		Text: fmt.Sprintf("Back to level 1: %s. The lines have been reshuffled.", e.levels[0].Title),
	})
}

func (e *Engine) clampIndex(i int) int {
	if i < 0 {
		return 0
	}
	if i >= len(e.levels) {
		return len(e.levels) - 1
	}
	return i
}

type Slot struct {
	ID       string      `json:"id"`
	ItemID   string      `json:"item_id,omitempty"`
	Position int         `json:"position"`
	Occupied bool        `json:"occupied"`
	Locked   bool        `json:"locked"`
	Line     levels.Line `json:"line"`
}

// Snapshot is everything a presentation layer needs to draw one frame.
type Snapshot struct {
	LevelIndex  int    `json:"level_index"`
	LevelCount  int    `json:"level_count"`
	LevelID     string `json:"level_id"`
	Title       string `json:"title"`
	Description string `json:"description"`

	PoolZoneID string        `json:"pool_zone_id"`
	Slots      []Slot        `json:"slots"`
	Pool       []levels.Line `json:"pool"`
	Feedback   Feedback      `json:"feedback"`
	Dragging   *Source       `json:"-"`
	DraggingID string        `json:"dragging,omitempty"`

	Correct  int  `json:"correct"`
	Total    int  `json:"total"`
	Complete bool `json:"complete"`
	HasNext  bool `json:"has_next"`

	Moves    int `json:"moves"`
	Mistakes int `json:"mistakes"`
	Resets   int `json:"resets"`
}

func (e *Engine) Snapshot(s State) Snapshot {
	level := e.Level(s)
	slots := make([]Slot, len(level.Lines))
	for i := range slots {
		slots[i] = Slot{ID: SlotID(i), Position: i}
		if r, ok := s.Placement.At(i); ok {
			slots[i].ItemID = PlacedItemID(r.ID, i)
			slots[i].Occupied = true
			slots[i].Locked = r.Locked()
			slots[i].Line = r.Line
		}
	}
	pool := make([]levels.Line, 0, len(s.Order))
	for _, line := range s.Order {
		if at, ok := s.Placement.Find(line.ID); ok && s.Placement.IsLocked(at) {
			continue
		}
		pool = append(pool, line)
	}
	var (
		dragging   *Source
		draggingID string
	)
	if s.Dragging != nil {
		d := *s.Dragging
		dragging = &d
		draggingID = d.WireID()
	}
	correct := s.Placement.CorrectCount()
	return Snapshot{
		LevelIndex:  s.LevelIndex,
		LevelCount:  len(e.levels),
		LevelID:     level.LevelID,
		Title:       level.Title,
		Description: level.Description,
		PoolZoneID:  PoolZoneID,
		Slots:       slots,
		Pool:        pool,
		Feedback:    s.Feedback,
		Dragging:    dragging,
		DraggingID:  draggingID,
		Correct:     correct,
		Total:       len(level.Lines),
		Complete:    correct == len(level.Lines),
		HasNext:     e.HasNext(s),
		Moves:       s.Moves,
		Mistakes:    s.Mistakes,
		Resets:      s.Resets,
	}
}
