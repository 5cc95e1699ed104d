package ui

// Controller receives gestures from the view. Ids are wire ids produced by
// the game, passed back untouched.
type Controller interface {
	OnDragStart(sourceID string)
	OnDragEnd(sourceID, targetID string)
	OnReset()
	OnAdvance()
	OnRestart()
	OnQuit()
}

type View interface {
	Run() error
	Stop()
	SetController(Controller)
	SetBoard(BoardState)
	SetResult(ResultState)
	SetSetupError(msg, details string)
	FlashStatus(msg string)
}

type LayoutMode int

const (
	LayoutWide LayoutMode = iota
	LayoutMedium
	LayoutTooSmall
)

type BoardState struct {
	LevelIndex  int
	LevelCount  int
	LevelID     string
	Title       string
	Description string

	// PoolZoneID is the drop target for the pool panel as a whole.
	PoolZoneID string
	Pool       []PoolRow
	Slots      []SlotRow

	Feedback     string
	FeedbackKind string
	// Explanation is the last explanation shown for a correct placement.
	Explanation string
	Dragging    string

	Correct  int
	Total    int
	Complete bool
	HasNext  bool
	Moves    int
	Mistakes int
	Resets   int
	Best     int
}

type PoolRow struct {
	ID   string
	Text string
}

type SlotRow struct {
	// SlotID is always set; ItemID only when the slot is occupied.
	SlotID   string
	ItemID   string
	Position int
	Text     string
	Occupied bool
	Locked   bool
}

type ResultState struct {
	Visible   bool
	Title     string
	SummaryMD string
	Score     int
	Breakdown []BreakdownRow
	HasNext   bool
}

type BreakdownRow struct {
	Label string
	Value string
}
