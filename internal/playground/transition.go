package playground

import (
	"fmt"

	"kubelearn/internal/levels"
)

// Transition is the outcome of classifying one drag gesture. It is one of
// Noop, Reject, Clear, Place or Swap.
type Transition interface {
	isTransition()
}

// Noop leaves state and feedback untouched.
type Noop struct{}

type RejectReason int

const (
	RejectLockedSource RejectReason = iota
	RejectLockedSwap
	RejectLockedSlot
)

// Reject refuses a gesture that would disturb a locked line.
type Reject struct {
	Reason   RejectReason
	LineID   string
	Position int
}

// Clear returns the line at From to the pool.
type Clear struct {
	From   int
	LineID string
}

// Place puts Line into To. Vacate is the slot the line leaves (-1 when it
// was not in the editor). Evicted is the unlocked occupant of To that goes
// back to the pool, empty when To was free.
type Place struct {
	Line    levels.Line
	To      int
	Vacate  int
	Evicted string
}

// Swap exchanges the dragged line at From with the occupant of To.
type Swap struct {
	From     int
	To       int
	Dragged  levels.Line
	Occupant levels.Line
}

func (Noop) isTransition()   {}
func (Reject) isTransition() {}
func (Clear) isTransition()  {}
func (Place) isTransition()  {}
func (Swap) isTransition()   {}

// Decide classifies a drop against the current placement. A non-nil error
// means the descriptors are inconsistent with the level or placement; the
// returned transition is then Noop.
func Decide(level levels.Level, p Placement, src Source, tgt Target) (Transition, error) {
	line, ok := level.LineByID(src.LineID)
	if !ok {
		return Noop{}, fmt.Errorf("decide: unknown line %q", src.LineID)
	}
	if tgt.Kind == TargetSlot && (tgt.Position < 0 || tgt.Position >= p.Size()) {
		return Noop{}, fmt.Errorf("decide: target slot %d: %w", tgt.Position, ErrSlotOutOfRange)
	}
	if tgt.Kind == TargetNone {
		return Noop{}, nil
	}

	switch src.Kind {
	case SourceEditor:
		return decideFromEditor(p, line, src.Position, tgt)
	case SourcePool:
		return decideFromPool(p, line, tgt), nil
	}
	return Noop{}, fmt.Errorf("decide: unknown source kind %d", src.Kind)
}

func decideFromEditor(p Placement, line levels.Line, from int, tgt Target) (Transition, error) {
	r, ok := p.At(from)
	if !ok || r.ID != line.ID {
		return Noop{}, fmt.Errorf("decide: line %q is not at slot %d", line.ID, from)
	}
	if p.IsLocked(from) {
		return Reject{Reason: RejectLockedSource, LineID: line.ID, Position: from}, nil
	}
	if tgt.Kind == TargetPool {
		return Clear{From: from, LineID: line.ID}, nil
	}
	to := tgt.Position
	if to == from {
		return Noop{}, nil
	}
	occupant, occupied := p.At(to)
	if occupied && p.IsLocked(to) {
		return Reject{Reason: RejectLockedSwap, LineID: line.ID, Position: to}, nil
	}
	if occupied {
		return Swap{From: from, To: to, Dragged: line, Occupant: occupant.Line}, nil
	}
	return Place{Line: line, To: to, Vacate: from}, nil
}

func decideFromPool(p Placement, line levels.Line, tgt Target) Transition {
	if tgt.Kind == TargetPool {
		return Noop{}
	}
	vacate := -1
	if at, ok := p.Find(line.ID); ok {
		if p.IsLocked(at) {
			return Reject{Reason: RejectLockedSource, LineID: line.ID, Position: at}
		}
		vacate = at
	}
	to := tgt.Position
	occupant, occupied := p.At(to)
	if occupied && p.IsLocked(to) {
		return Reject{Reason: RejectLockedSlot, LineID: line.ID, Position: to}
	}
	if vacate == to {
		return Noop{}
	}
	evicted := ""
	if occupied {
		evicted = occupant.ID
	}
	return Place{Line: line, To: to, Vacate: vacate, Evicted: evicted}
}

// Apply is the single dispatch that turns a transition into a new placement.
func Apply(p Placement, t Transition) (Placement, error) {
	switch t := t.(type) {
	case Noop, Reject:
		return p, nil
	case Clear:
		return p.Clear(t.From), nil
	case Place:
		next := p
		if t.Vacate >= 0 {
			next = next.Clear(t.Vacate)
		}
		return next.Place(t.To, t.Line)
	case Swap:
		next, err := p.Place(t.From, t.Occupant)
		if err != nil {
			return p, err
		}
		return next.Place(t.To, t.Dragged)
	}
	return p, fmt.Errorf("apply: unknown transition %T", t)
}

// FeedbackFor derives the message shown after t. Noop keeps prev.
func FeedbackFor(t Transition, prev Feedback) Feedback {
	switch t := t.(type) {
	case Reject:
		return Feedback{Kind: FeedbackError, Text: rejectText(t.Reason)}
	case Clear:
		return Feedback{Kind: FeedbackInfo, Text: "Line removed from the editor."}
	case Place:
		return placementFeedback(t.Line, t.To)
	case Swap:
		return placementFeedback(t.Dragged, t.To)
	}
	return prev
}

func placementFeedback(line levels.Line, at int) Feedback {
	if line.Position == at {
		return Feedback{Kind: FeedbackSuccess, Text: line.Explanation}
	}
	return Feedback{Kind: FeedbackError, Text: Hint(line, at)}
}

func rejectText(reason RejectReason) string {
	switch reason {
	case RejectLockedSwap:
		return "You can't swap with a line that is already locked in place."
	case RejectLockedSlot:
		return "That slot is already correct and locked."
	default:
		return "This line is already locked in place."
	}
}

// misplaced reports whether t put the dragged line somewhere wrong.
func misplaced(t Transition) bool {
	switch t := t.(type) {
	case Place:
		return t.Line.Position != t.To
	case Swap:
		return t.Dragged.Position != t.To
	}
	return false
}
