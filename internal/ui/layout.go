package ui

const (
	headerRows = 1
	footerRows = 2
	minCols    = 80
	minRows    = 24
	wideCols   = 120
)

type Rect struct {
	X, Y, W, H int
}

func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

func (r Rect) Inner() Rect {
	return Rect{X: r.X + 1, Y: r.Y + 1, W: max(0, r.W-2), H: max(0, r.H-2)}
}

type RegionKind int

const (
	RegionPoolItem RegionKind = iota
	RegionPlacedItem
	RegionSlot
	RegionPoolZone
)

// Draggable reports whether a gesture may start on the region.
func (k RegionKind) Draggable() bool {
	return k == RegionPoolItem || k == RegionPlacedItem
}

type Region struct {
	ID    string
	Kind  RegionKind
	Rect  Rect
	Index int
}

type Layout struct {
	Mode    LayoutMode
	Pool    Rect
	Editor  Rect
	Info    Rect
	Regions []Region
}

// DetermineLayoutMode needs room for every editor slot on screen at once.
func DetermineLayoutMode(cols, rows, lines int) LayoutMode {
	if cols < minCols || rows < max(minRows, lines+headerRows+footerRows+2) {
		return LayoutTooSmall
	}
	if cols >= wideCols {
		return LayoutWide
	}
	return LayoutMedium
}

// ComputeLayout places the panels and lists every hit region. Item regions
// come before the pool zone so HitTest prefers the more specific target.
func ComputeLayout(cols, rows int, board BoardState) Layout {
	l := Layout{Mode: DetermineLayoutMode(cols, rows, len(board.Slots))}
	if l.Mode == LayoutTooSmall {
		return l
	}
	bodyH := rows - headerRows - footerRows
	infoW := 0
	if l.Mode == LayoutWide {
		infoW = min(44, cols/4)
	}
	poolW := (cols - infoW) * 2 / 5
	editorW := cols - infoW - poolW

	l.Pool = Rect{X: 0, Y: headerRows, W: poolW, H: bodyH}
	l.Editor = Rect{X: poolW, Y: headerRows, W: editorW, H: bodyH}
	if infoW > 0 {
		l.Info = Rect{X: poolW + editorW, Y: headerRows, W: infoW, H: bodyH}
	}

	in := l.Pool.Inner()
	for i, item := range board.Pool {
		if i >= in.H {
			break
		}
		l.Regions = append(l.Regions, Region{
			ID:    item.ID,
			Kind:  RegionPoolItem,
			Rect:  Rect{X: in.X, Y: in.Y + i, W: in.W, H: 1},
			Index: i,
		})
	}
	in = l.Editor.Inner()
	for i, slot := range board.Slots {
		if i >= in.H {
			break
		}
		region := Region{
			ID:    slot.SlotID,
			Kind:  RegionSlot,
			Rect:  Rect{X: in.X, Y: in.Y + i, W: in.W, H: 1},
			Index: i,
		}
		if slot.Occupied {
			region.ID = slot.ItemID
			region.Kind = RegionPlacedItem
		}
		l.Regions = append(l.Regions, region)
	}
	if board.PoolZoneID != "" {
		l.Regions = append(l.Regions, Region{ID: board.PoolZoneID, Kind: RegionPoolZone, Rect: l.Pool, Index: -1})
	}
	return l
}

func (l Layout) HitTest(x, y int) (Region, bool) {
	for _, region := range l.Regions {
		if region.Rect.Contains(x, y) {
			return region, true
		}
	}
	return Region{}, false
}
