package playground

import (
	"sort"
	"strings"
	"testing"

	"kubelearn/internal/levels"
)

func TestDragKindIntoFirstSlotGivesHint(t *testing.T) {
	e, _ := newTestEngine(t)
	s := e.Start()

	s = e.DragStart(s, "line-2")
	if s.Dragging == nil || s.Dragging.Kind != SourcePool {
		t.Fatalf("expected pool drag in flight, got %#v", s.Dragging)
	}
	s, tr := e.DragEnd(s, "line-2", SlotID(0))
	if _, ok := tr.(Place); !ok {
		t.Fatalf("expected Place, got %T", tr)
	}
	if s.Dragging != nil {
		t.Fatalf("expected drag cleared")
	}
	r, ok := s.Placement.At(0)
	if !ok || r.ID != "line-2" || r.PlacedAt != 0 {
		t.Fatalf("unexpected record %#v ok=%v", r, ok)
	}
	if s.Placement.IsLocked(0) {
		t.Fatalf("slot 0 must not lock for kind line")
	}
	if s.Feedback.Kind != FeedbackError || !strings.Contains(s.Feedback.Text, "apiVersion") {
		t.Fatalf("unexpected feedback %#v", s.Feedback)
	}
	if s.Mistakes != 1 || s.Moves != 1 {
		t.Fatalf("expected 1 move and 1 mistake, got %d/%d", s.Moves, s.Mistakes)
	}
}

func TestDragKindIntoCorrectSlotLocksWithExplanation(t *testing.T) {
	e, _ := newTestEngine(t)
	s := e.Start()
	kind, _ := e.Level(s).LineByID("line-2")

	s, _ = e.DragEnd(s, "line-2", SlotID(1))
	if !s.Placement.IsLocked(1) {
		t.Fatalf("expected slot 1 locked")
	}
	if s.Feedback.Kind != FeedbackSuccess || s.Feedback.Text != kind.Explanation {
		t.Fatalf("expected verbatim explanation, got %#v", s.Feedback)
	}
	snap := e.Snapshot(s)
	for _, l := range snap.Pool {
		if l.ID == "line-2" {
			t.Fatalf("locked line must not be in the pool")
		}
	}
}

func TestDropWithoutTargetIsNoop(t *testing.T) {
	e, _ := newTestEngine(t)
	s := e.Start()
	s, _ = e.DragEnd(s, "line-3", SlotID(5))
	before := s

	after, tr := e.DragEnd(s, PlacedItemID("line-3", 5), "")
	if _, ok := tr.(Noop); !ok {
		t.Fatalf("expected Noop, got %T", tr)
	}
	if !after.Placement.Equal(before.Placement) || after.Feedback != before.Feedback || after.Moves != before.Moves {
		t.Fatalf("state changed on cancelled drop")
	}
}

func TestDropOntoOwnSlotIsIdempotent(t *testing.T) {
	e, _ := newTestEngine(t)
	s := e.Start()
	s, _ = e.DragEnd(s, "line-3", SlotID(5))
	before := s

	after, tr := e.DragEnd(s, PlacedItemID("line-3", 5), SlotID(5))
	if _, ok := tr.(Noop); !ok {
		t.Fatalf("expected Noop, got %T", tr)
	}
	if !after.Placement.Equal(before.Placement) || after.Feedback != before.Feedback {
		t.Fatalf("self drop changed state")
	}
}

func TestSwapIsSymmetricAndPreservesLines(t *testing.T) {
	e, _ := newTestEngine(t)
	s := e.Start()
	s, _ = e.DragEnd(s, "line-5", SlotID(2)) // spec: belongs at 4
	s, _ = e.DragEnd(s, "line-6", SlotID(6)) // containers: belongs at 5

	s, tr := e.DragEnd(s, PlacedItemID("line-5", 2), SlotID(6))
	sw, ok := tr.(Swap)
	if !ok {
		t.Fatalf("expected Swap, got %T", tr)
	}
	if sw.From != 2 || sw.To != 6 {
		t.Fatalf("unexpected swap %#v", sw)
	}
	at2, _ := s.Placement.At(2)
	at6, _ := s.Placement.At(6)
	if at2.ID != "line-6" || at2.PlacedAt != 2 || at6.ID != "line-5" || at6.PlacedAt != 6 {
		t.Fatalf("swap did not exchange lines: %#v %#v", at2, at6)
	}
	if s.Placement.Occupied() != 2 {
		t.Fatalf("expected 2 occupied slots, got %d", s.Placement.Occupied())
	}
}

func TestSwapIntoCorrectSlotReportsSuccess(t *testing.T) {
	e, _ := newTestEngine(t)
	s := e.Start()
	s, _ = e.DragEnd(s, "line-5", SlotID(0))
	s, _ = e.DragEnd(s, "line-1", SlotID(4))

	s, _ = e.DragEnd(s, PlacedItemID("line-5", 0), SlotID(4))
	if !s.Placement.IsLocked(4) || !s.Placement.IsLocked(0) {
		t.Fatalf("expected both slots locked after swap")
	}
	if s.Feedback.Kind != FeedbackSuccess {
		t.Fatalf("expected success, got %#v", s.Feedback)
	}
}

func TestLockedSlotsAreDragImmune(t *testing.T) {
	e, _ := newTestEngine(t)
	s := e.Start()
	s, _ = e.DragEnd(s, "line-1", SlotID(0))
	s, _ = e.DragEnd(s, "line-3", SlotID(4))

	cases := []struct {
		name   string
		source string
		target string
		reason RejectReason
	}{
		{"pool onto locked", "line-2", SlotID(0), RejectLockedSlot},
		{"editor swap with locked", PlacedItemID("line-3", 4), SlotID(0), RejectLockedSwap},
		{"editor drop onto locked item", PlacedItemID("line-3", 4), PlacedItemID("line-1", 0), RejectLockedSwap},
		{"locked line from pool id", "line-1", SlotID(3), RejectLockedSource},
		{"locked line from editor", PlacedItemID("line-1", 0), PoolZoneID, RejectLockedSource},
	}
	for _, tc := range cases {
		after, tr := e.DragEnd(s, tc.source, tc.target)
		rej, ok := tr.(Reject)
		if !ok {
			t.Fatalf("%s: expected Reject, got %T", tc.name, tr)
		}
		if rej.Reason != tc.reason {
			t.Fatalf("%s: expected reason %d, got %d", tc.name, tc.reason, rej.Reason)
		}
		if !after.Placement.Equal(s.Placement) {
			t.Fatalf("%s: placement changed", tc.name)
		}
		if after.Feedback.Kind != FeedbackError {
			t.Fatalf("%s: expected error feedback, got %#v", tc.name, after.Feedback)
		}
	}
}

func TestPoolDropOntoUnlockedOccupantEvictsIt(t *testing.T) {
	e, _ := newTestEngine(t)
	s := e.Start()
	s, _ = e.DragEnd(s, "line-8", SlotID(3))

	s, tr := e.DragEnd(s, "line-4", SlotID(3))
	pl, ok := tr.(Place)
	if !ok || pl.Evicted != "line-8" {
		t.Fatalf("expected Place evicting line-8, got %#v", tr)
	}
	if _, placed := s.Placement.Find("line-8"); placed {
		t.Fatalf("evicted line must go back to the pool, not another slot")
	}
	if !s.Placement.IsLocked(3) {
		t.Fatalf("expected slot 3 locked")
	}
}

func TestPoolDragOfPlacedLineMovesInsteadOfDuplicating(t *testing.T) {
	e, _ := newTestEngine(t)
	s := e.Start()
	s, _ = e.DragEnd(s, "line-7", SlotID(1))
	s, _ = e.DragEnd(s, "line-7", SlotID(6))

	if s.Placement.Occupied() != 1 {
		t.Fatalf("expected one occupied slot, got %d", s.Placement.Occupied())
	}
	if !s.Placement.IsLocked(6) {
		t.Fatalf("expected line-7 locked at 6")
	}
}

func TestEditorToPoolClearsSlot(t *testing.T) {
	e, _ := newTestEngine(t)
	s := e.Start()
	s, _ = e.DragEnd(s, "line-7", SlotID(1))
	s, tr := e.DragEnd(s, PlacedItemID("line-7", 1), PoolZoneID)
	if _, ok := tr.(Clear); !ok {
		t.Fatalf("expected Clear, got %T", tr)
	}
	if s.Placement.Occupied() != 0 || s.Feedback.Kind != FeedbackInfo {
		t.Fatalf("unexpected state after clear: occupied=%d feedback=%#v", s.Placement.Occupied(), s.Feedback)
	}
}

func TestEditorMoveToEmptySlot(t *testing.T) {
	e, _ := newTestEngine(t)
	s := e.Start()
	s, _ = e.DragEnd(s, "line-7", SlotID(1))
	s, tr := e.DragEnd(s, PlacedItemID("line-7", 1), SlotID(6))
	if _, ok := tr.(Place); !ok {
		t.Fatalf("expected Place, got %T", tr)
	}
	if _, ok := s.Placement.At(1); ok {
		t.Fatalf("expected slot 1 vacated")
	}
	if !s.Placement.IsLocked(6) {
		t.Fatalf("expected slot 6 locked")
	}
}

func TestMalformedIDsAreLoggedNoops(t *testing.T) {
	e, log := newTestEngine(t)
	s := e.Start()
	for _, ids := range [][2]string{
		{"nope", SlotID(0)},
		{"line-1", "slot-42"},
		{PlacedItemID("line-1", 3), SlotID(0)},
	} {
		after, tr := e.DragEnd(s, ids[0], ids[1])
		if _, ok := tr.(Noop); !ok {
			t.Fatalf("%v: expected Noop, got %T", ids, tr)
		}
		if !after.Placement.Equal(s.Placement) {
			t.Fatalf("%v: placement changed", ids)
		}
	}
	if len(log.events) != 3 {
		t.Fatalf("expected 3 logged violations, got %v", log.events)
	}
	if got := e.DragStart(s, "bogus"); got.Dragging != nil {
		t.Fatalf("expected no drag for bogus id")
	}
}

func TestCompletionAndCorrectCount(t *testing.T) {
	e, _ := newTestEngine(t)
	s := e.Start()
	level := e.Level(s)
	for i := 0; i < len(level.Lines); i++ {
		if e.Complete(s) {
			t.Fatalf("complete too early at %d", i)
		}
		line := lineAt(t, level, i)
		s, _ = e.DragEnd(s, line.ID, SlotID(i))
		if e.CorrectCount(s) > len(level.Lines) {
			t.Fatalf("correct count exceeds line count")
		}
	}
	snap := e.Snapshot(s)
	if !snap.Complete || snap.Correct != 8 || snap.Total != 8 || len(snap.Pool) != 0 {
		t.Fatalf("unexpected snapshot %#v", snap)
	}
	if !snap.HasNext {
		t.Fatalf("expected next level available")
	}
}

func TestResetReshufflesAndEmptiesPlacement(t *testing.T) {
	shuffler := &reverseShuffler{}
	e, err := NewEngine(builtinLevels(t), WithShuffler(shuffler))
	if err != nil {
		t.Fatal(err)
	}
	s := e.Start()
	s, _ = e.DragEnd(s, "line-1", SlotID(0))
	s, _ = e.DragEnd(s, "line-4", SlotID(1))
	calls := shuffler.calls

	s = e.Reset(s)
	if s.Placement.Occupied() != 0 {
		t.Fatalf("expected empty placement after reset")
	}
	if shuffler.calls != calls+1 {
		t.Fatalf("expected a fresh shuffle on reset")
	}
	if s.Resets != 1 || s.Feedback.Kind != FeedbackInfo {
		t.Fatalf("unexpected reset bookkeeping %#v", s)
	}
	ids := make([]string, 0, len(s.Order))
	for _, l := range s.Order {
		ids = append(ids, l.ID)
	}
	sort.Strings(ids)
	want := make([]string, 0)
	for _, l := range e.Level(s).Lines {
		want = append(want, l.ID)
	}
	sort.Strings(want)
	if strings.Join(ids, ",") != strings.Join(want, ",") {
		t.Fatalf("order must contain each line once: got %v want %v", ids, want)
	}
}

func TestAdvanceAndRestart(t *testing.T) {
	e, _ := newTestEngine(t)
	s := e.Start()
	s = e.Advance(s)
	if s.LevelIndex != 1 || s.Placement.Size() != 12 {
		t.Fatalf("expected level 2 with 12 slots, got index=%d size=%d", s.LevelIndex, s.Placement.Size())
	}
	s = e.Advance(s)
	if s.LevelIndex != 2 {
		t.Fatalf("expected last level, got %d", s.LevelIndex)
	}
	s, _ = e.DragEnd(s, "dep-api", SlotID(0))
	last := e.Advance(s)
	if last.LevelIndex != 2 || !last.Placement.Equal(s.Placement) || last.Feedback != s.Feedback {
		t.Fatalf("advance past the last level must be a no-op")
	}
	if e.HasNext(last) {
		t.Fatalf("expected no next level")
	}
	r := e.Restart(last)
	if r.LevelIndex != 0 || r.Placement.Occupied() != 0 || r.Placement.Size() != 8 {
		t.Fatalf("unexpected restart state %#v", r)
	}
}

func TestNewEngineRejectsInvalidCatalog(t *testing.T) {
	if _, err := NewEngine(nil); err == nil {
		t.Fatalf("expected error for empty catalog")
	}
	bad := []levels.Level{{LevelID: "bad-level", Title: "x", Lines: []levels.Line{{ID: "a", Code: "a: b", Position: 3}}}}
	if _, err := NewEngine(bad); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestNewEngineRejectsReservedLineIDs(t *testing.T) {
	for _, id := range []string{"slot-0", "pool-zone", "placed-plain-1"} {
		lv := []levels.Level{{LevelID: "reserved-ids", Title: "x", Lines: []levels.Line{
			{ID: id, Code: "apiVersion: v1", Position: 0},
			{ID: "plain", Code: "kind: Pod", Position: 1},
		}}}
		if _, err := NewEngine(lv); err == nil {
			t.Fatalf("expected line id %q to be rejected", id)
		}
	}
}

func TestDragEndLogsSourceMismatch(t *testing.T) {
	e, log := newTestEngine(t)
	s := e.Start()
	first, second := lineAt(t, e.Level(s), 0), lineAt(t, e.Level(s), 1)

	s = e.DragStart(s, PoolItemID(first.ID))
	s, tr := e.DragEnd(s, PoolItemID(second.ID), SlotID(1))
	place, ok := tr.(Place)
	if !ok || place.Line.ID != second.ID {
		t.Fatalf("expected Place of the ended source, got %#v", tr)
	}
	if len(log.events) != 1 || log.events[0] != "game.drag_end_source_mismatch" {
		t.Fatalf("expected one mismatch violation, got %v", log.events)
	}
	if s.Dragging != nil {
		t.Fatalf("expected drag cleared")
	}

	s = e.DragStart(s, PoolItemID(first.ID))
	_, tr = e.DragEnd(s, PoolItemID(first.ID), SlotID(0))
	if _, ok := tr.(Place); !ok {
		t.Fatalf("expected Place, got %T", tr)
	}
	if len(log.events) != 1 {
		t.Fatalf("expected no violation for a matching gesture, got %v", log.events)
	}
}

func TestRandShufflerIsSeededPermutation(t *testing.T) {
	lines := builtinLevels(t)[1].Lines
	a := NewShuffler(42).Shuffle(lines)
	b := NewShuffler(42).Shuffle(lines)
	if len(a) != len(lines) {
		t.Fatalf("expected %d lines, got %d", len(lines), len(a))
	}
	seen := map[string]bool{}
	for i := range a {
		if a[i].ID != b[i].ID {
			t.Fatalf("same seed produced different order at %d", i)
		}
		seen[a[i].ID] = true
	}
	if len(seen) != len(lines) {
		t.Fatalf("shuffle lost or duplicated lines")
	}
	if solved(a) {
		t.Fatalf("shuffle returned the solved order")
	}
}

func TestSnapshotCarriesWireIDs(t *testing.T) {
	e, _ := newTestEngine(t)
	s := e.Start()
	level := e.Level(s)
	apiVersion := lineAt(t, level, 0)
	kind := lineAt(t, level, 1)

	s, _ = e.DragEnd(s, PoolItemID(apiVersion.ID), SlotID(0))
	s, _ = e.DragEnd(s, PoolItemID(kind.ID), SlotID(3))
	s = e.DragStart(s, PlacedItemID(kind.ID, 3))

	snap := e.Snapshot(s)
	if snap.PoolZoneID != PoolZoneID {
		t.Fatalf("expected pool zone id, got %q", snap.PoolZoneID)
	}
	if snap.Slots[0].ID != "slot-0" || snap.Slots[0].ItemID != PlacedItemID(apiVersion.ID, 0) {
		t.Fatalf("unexpected slot 0 ids: %#v", snap.Slots[0])
	}
	if snap.Slots[1].ItemID != "" || snap.Slots[1].Occupied {
		t.Fatalf("expected empty slot 1, got %#v", snap.Slots[1])
	}
	if snap.DraggingID != PlacedItemID(kind.ID, 3) {
		t.Fatalf("expected dragging id for placed kind line, got %q", snap.DraggingID)
	}
	for _, line := range snap.Pool {
		if line.ID == apiVersion.ID {
			t.Fatalf("expected locked line to leave the pool")
		}
	}
}
