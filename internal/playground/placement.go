package playground

import (
	"errors"
	"fmt"
	"sort"

	"kubelearn/internal/levels"
)

var ErrSlotOutOfRange = errors.New("slot out of range")

// Placement maps editor slots to the records placed in them. It is a value:
// every mutation returns a new Placement and leaves the receiver untouched.
type Placement struct {
	size  int
	slots map[int]Record
}

func NewPlacement(size int) Placement {
	if size < 0 {
		size = 0
	}
	return Placement{size: size, slots: map[int]Record{}}
}

func (p Placement) Size() int { return p.size }

// Occupied returns the number of filled slots.
func (p Placement) Occupied() int { return len(p.slots) }

func (p Placement) At(position int) (Record, bool) {
	r, ok := p.slots[position]
	return r, ok
}

// Find returns the slot currently holding lineID.
func (p Placement) Find(lineID string) (int, bool) {
	for pos, r := range p.slots {
		if r.ID == lineID {
			return pos, true
		}
	}
	return -1, false
}

func (p Placement) IsLocked(position int) bool {
	r, ok := p.slots[position]
	return ok && r.Position == position
}

// CorrectCount counts locked slots.
func (p Placement) CorrectCount() int {
	n := 0
	for pos := range p.slots {
		if p.IsLocked(pos) {
			n++
		}
	}
	return n
}

// Place puts line at position with a fresh record, replacing any occupant.
func (p Placement) Place(position int, line levels.Line) (Placement, error) {
	if position < 0 || position >= p.size {
		return p, fmt.Errorf("place %q at %d (size %d): %w", line.ID, position, p.size, ErrSlotOutOfRange)
	}
	next := p.clone()
	next.slots[position] = Record{Line: line, PlacedAt: position}
	return next, nil
}

func (p Placement) Clear(position int) Placement {
	if _, ok := p.slots[position]; !ok {
		return p
	}
	next := p.clone()
	delete(next.slots, position)
	return next
}

func (p Placement) Reset() Placement {
	return NewPlacement(p.size)
}

// Records returns the placed records ordered by slot.
func (p Placement) Records() []Record {
	out := make([]Record, 0, len(p.slots))
	for _, r := range p.slots {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlacedAt < out[j].PlacedAt })
	return out
}

// Equal reports whether both placements hold the same lines in the same slots.
func (p Placement) Equal(other Placement) bool {
	if p.size != other.size || len(p.slots) != len(other.slots) {
		return false
	}
	for pos, r := range p.slots {
		o, ok := other.slots[pos]
		if !ok || o.ID != r.ID || o.PlacedAt != r.PlacedAt {
			return false
		}
	}
	return true
}

func (p Placement) clone() Placement {
	out := Placement{size: p.size, slots: make(map[int]Record, len(p.slots)+1)}
	for k, v := range p.slots {
		out.slots[k] = v
	}
	return out
}
