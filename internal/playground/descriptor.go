package playground

import (
	"fmt"
	"strconv"
	"strings"

	"kubelearn/internal/levels"
)

type SourceKind int

const (
	SourcePool SourceKind = iota
	SourceEditor
)

// Source describes where an in-flight drag started.
type Source struct {
	Kind     SourceKind
	LineID   string
	Position int
}

func FromPool(lineID string) Source { return Source{Kind: SourcePool, LineID: lineID, Position: -1} }

func FromEditor(lineID string, position int) Source {
	return Source{Kind: SourceEditor, LineID: lineID, Position: position}
}

// WireID is the id the presentation layer rendered for the source.
func (s Source) WireID() string {
	if s.Kind == SourceEditor {
		return PlacedItemID(s.LineID, s.Position)
	}
	return PoolItemID(s.LineID)
}

type TargetKind int

const (
	TargetNone TargetKind = iota
	TargetPool
	TargetSlot
)

// Target describes where a drag ended.
type Target struct {
	Kind     TargetKind
	Position int
}

func NoTarget() Target           { return Target{Kind: TargetNone, Position: -1} }
func ToPool() Target             { return Target{Kind: TargetPool, Position: -1} }
func ToSlot(position int) Target { return Target{Kind: TargetSlot, Position: position} }

const (
	PoolZoneID    = levels.PoolZoneID
	slotPrefix    = levels.SlotIDPrefix
	placedPrefix  = levels.PlacedIDPrefix
	placedDivider = "-"
)

// PoolItemID is the wire id of a line rendered in the pool.
func PoolItemID(lineID string) string { return lineID }

func SlotID(position int) string { return slotPrefix + strconv.Itoa(position) }

// PlacedItemID is the wire id of an unlocked line rendered inside the editor.
func PlacedItemID(lineID string, position int) string {
	return placedPrefix + lineID + placedDivider + strconv.Itoa(position)
}

// ParseSource resolves a drag-start id against the level and the current
// placement. Pool ids are matched first since they are raw line ids.
func ParseSource(id string, level levels.Level, placement Placement) (Source, error) {
	if _, ok := level.LineByID(id); ok {
		return FromPool(id), nil
	}
	if lineID, pos, ok := splitPlacedID(id); ok {
		if _, known := level.LineByID(lineID); !known {
			return Source{}, fmt.Errorf("source %q: unknown line %q", id, lineID)
		}
		r, occupied := placement.At(pos)
		if !occupied || r.ID != lineID {
			return Source{}, fmt.Errorf("source %q: line %q is not at slot %d", id, lineID, pos)
		}
		return FromEditor(lineID, pos), nil
	}
	return Source{}, fmt.Errorf("source %q: unrecognised id", id)
}

// ParseTarget resolves a drop id. An empty id means the drag ended outside
// any droppable. Dropping onto an editor item targets its slot and dropping
// onto a pool item targets the pool.
func ParseTarget(id string, level levels.Level) (Target, error) {
	if id == "" {
		return NoTarget(), nil
	}
	if id == PoolZoneID {
		return ToPool(), nil
	}
	if strings.HasPrefix(id, slotPrefix) {
		pos, err := strconv.Atoi(strings.TrimPrefix(id, slotPrefix))
		if err != nil || pos < 0 || pos >= len(level.Lines) {
			return Target{}, fmt.Errorf("target %q: invalid slot", id)
		}
		return ToSlot(pos), nil
	}
	if _, ok := level.LineByID(id); ok {
		return ToPool(), nil
	}
	if lineID, pos, ok := splitPlacedID(id); ok {
		if _, known := level.LineByID(lineID); !known || pos >= len(level.Lines) {
			return Target{}, fmt.Errorf("target %q: unknown editor item", id)
		}
		return ToSlot(pos), nil
	}
	return Target{}, fmt.Errorf("target %q: unrecognised id", id)
}

// splitPlacedID splits on the last divider so line ids may contain it.
func splitPlacedID(id string) (string, int, bool) {
	if !strings.HasPrefix(id, placedPrefix) {
		return "", 0, false
	}
	rest := strings.TrimPrefix(id, placedPrefix)
	cut := strings.LastIndex(rest, placedDivider)
	if cut <= 0 || cut == len(rest)-1 {
		return "", 0, false
	}
	pos, err := strconv.Atoi(rest[cut+1:])
	if err != nil || pos < 0 {
		return "", 0, false
	}
	return rest[:cut], pos, true
}
