package ui

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/progress"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/harmonica"
	clog "github.com/charmbracelet/log"
	"github.com/charmbracelet/x/ansi"
)

type applyMsg struct {
	fn func(*Root)
}

type animateMsg time.Time

type focusPane int

const (
	focusPool focusPane = iota
	focusEditor
)

type boardKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Focus   key.Binding
	Pick    key.Binding
	Return  key.Binding
	Cancel  key.Binding
	Reset   key.Binding
	Next    key.Binding
	Restart key.Binding
	Quit    key.Binding
}

func (k boardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Focus, k.Pick, k.Return, k.Cancel, k.Reset, k.Next, k.Quit}
}

func (k boardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down, k.Focus, k.Pick}, {k.Return, k.Cancel, k.Reset, k.Next, k.Restart, k.Quit}}
}

type Root struct {
	theme        Theme
	ascii        bool
	debug        bool
	styleVariant string
	motionLevel  string
	mouseScope   string

	ctrlMu sync.Mutex
	ctrl   Controller
	calls  chan func(Controller)

	mu      sync.Mutex
	program *tea.Program
	running bool

	layout LayoutMode
	cols   int
	rows   int

	board        BoardState
	result       ResultState
	setupMsg     string
	setupDetails string
	statusFlash  string

	focus       focusPane
	poolIndex   int
	editorIndex int
	// held is the source id of the gesture in progress, pressed is true
	// while the mouse button is down on it.
	held        string
	pressed     bool
	hover       string
	resetOpen   bool
	resultIndex int

	help       help.Model
	keymap     boardKeyMap
	progress   progress.Model
	renderers  map[int]*glamour.TermRenderer
	mdCache    map[string]string
	logger     *clog.Logger
	overlayPos float64
	overlayVel float64
	spring     harmonica.Spring

	lastInputEvent string
}

type Options struct {
	ASCIIOnly    bool
	Debug        bool
	StyleVariant string
	MotionLevel  string
	MouseScope   string
	// LogWriter receives ui diagnostics. Defaults to stderr.
	LogWriter io.Writer
}

func New(opts Options) *Root {
	w := opts.LogWriter
	if w == nil {
		w = os.Stderr
	}
	logger := clog.NewWithOptions(w, clog.Options{Prefix: "kubelearn-ui", Level: clog.WarnLevel, ReportTimestamp: true})
	if opts.Debug {
		logger.SetLevel(clog.DebugLevel)
	}

	h := help.New()
	h.Styles = help.DefaultDarkStyles()
	motionLevel := normalizeMotionLevel(opts.MotionLevel)
	styleVariant := normalizeStyleVariant(opts.StyleVariant)
	spring := harmonica.NewSpring(harmonica.FPS(60), 8.0, 0.85)
	if motionLevel == "reduced" {
		spring = harmonica.NewSpring(harmonica.FPS(30), 9.0, 0.95)
	}
	bar := progress.New(
		progress.WithWidth(20),
		progress.WithColors(lipgloss.Color("#326CE5"), lipgloss.Color("#67F0A8")),
		progress.WithScaled(true),
		progress.WithoutPercentage(),
	)

	r := &Root{
		theme:        ThemeForVariant(styleVariant),
		ascii:        opts.ASCIIOnly,
		debug:        opts.Debug,
		styleVariant: styleVariant,
		motionLevel:  motionLevel,
		mouseScope:   normalizeMouseScope(opts.MouseScope),
		layout:       LayoutWide,
		cols:         120,
		rows:         30,
		help:         h,
		progress:     bar,
		renderers:    map[int]*glamour.TermRenderer{},
		mdCache:      map[string]string{},
		logger:       logger,
		spring:       spring,
	}
	r.keymap = boardKeyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "Up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "Down")),
		Focus:   key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("Tab", "Pool/Editor")),
		Pick:    key.NewBinding(key.WithKeys("enter", "space"), key.WithHelp("Enter", "Pick/Drop")),
		Return:  key.NewBinding(key.WithKeys("backspace", "delete"), key.WithHelp("Bksp", "To pool")),
		Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("Esc", "Cancel")),
		Reset:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "Reset")),
		Next:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "Next")),
		Restart: key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "Restart")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "ctrl+q", "q"), key.WithHelp("q", "Quit")),
	}
	return r
}

func (r *Root) Init() tea.Cmd {
	return nil
}

func (r *Root) Update(msg tea.Msg) (model tea.Model, cmd tea.Cmd) {
	defer func() {
		if rec := recover(); rec != nil {
			r.onModelPanic("update", rec, msg)
			model = r
			cmd = nil
		}
	}()

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		r.cols = msg.Width
		r.rows = msg.Height
		r.layout = DetermineLayoutMode(r.cols, r.rows, len(r.board.Slots))
		return r, nil
	case applyMsg:
		if msg.fn != nil {
			msg.fn(r)
		}
		return r, r.animateIfNeeded()
	case animateMsg:
		target := r.overlayTarget()
		r.overlayPos, r.overlayVel = r.spring.Update(r.overlayPos, r.overlayVel, target)
		if r.shouldAnimate(target) {
			return r, animateTickCmd()
		}
		r.overlayPos = target
		r.overlayVel = 0
		return r, nil
	case tea.MouseClickMsg:
		return r.handleMouseClick(msg)
	case tea.MouseMotionMsg:
		return r.handleMouseMotion(msg)
	case tea.MouseReleaseMsg:
		return r.handleMouseRelease(msg)
	case tea.KeyPressMsg:
		return r.handleKey(msg)
	}
	return r, nil
}

func (r *Root) View() (view tea.View) {
	defer func() {
		if rec := recover(); rec != nil {
			r.onModelPanic("view", rec, nil)
			width := max(1, r.cols)
			view = tea.NewView(r.theme.Error.Width(width).Render(trimForWidth("UI recovered from a rendering panic. Check logs.", width-1)))
		}
	}()

	if r.cols < 1 {
		r.cols = 120
	}
	if r.rows < 1 {
		r.rows = 30
	}

	var base string
	if r.setupMsg != "" {
		base = r.renderSetupError()
	} else {
		base = r.renderBoard()
	}
	v := tea.NewView(base)
	v.AltScreen = true
	v.MouseMode = r.currentMouseMode()
	return v
}

func (r *Root) Run() error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil
	}
	p := tea.NewProgram(r)
	r.program = p
	r.running = true
	r.mu.Unlock()

	_, err := p.Run()

	r.mu.Lock()
	r.program = nil
	r.running = false
	r.mu.Unlock()
	return err
}

func (r *Root) Stop() {
	r.mu.Lock()
	p := r.program
	r.mu.Unlock()
	if p != nil {
		p.Quit()
	}
}

// SetController starts a single worker so gestures reach the controller in
// the order they were made.
func (r *Root) SetController(c Controller) {
	r.ctrlMu.Lock()
	defer r.ctrlMu.Unlock()
	r.ctrl = c
	if r.calls == nil && c != nil {
		r.calls = make(chan func(Controller), 64)
		go r.runController(r.calls)
	}
}

func (r *Root) SetBoard(b BoardState) {
	r.apply(func(m *Root) {
		m.board = b
		m.poolIndex = clampIndex(m.poolIndex, len(b.Pool))
		m.editorIndex = clampIndex(m.editorIndex, len(b.Slots))
		if !b.Complete {
			m.result.Visible = false
		}
	})
}

func (r *Root) SetResult(state ResultState) {
	r.apply(func(m *Root) {
		m.result = state
		m.resultIndex = 0
		if m.motionLevel == "off" {
			m.overlayPos = m.overlayTarget()
			m.overlayVel = 0
		}
	})
}

func (r *Root) SetSetupError(msg, details string) {
	r.apply(func(m *Root) {
		m.setupMsg = msg
		m.setupDetails = details
	})
}

func (r *Root) FlashStatus(msg string) {
	r.apply(func(m *Root) {
		m.statusFlash = msg
	})
}

func (r *Root) apply(fn func(*Root)) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	p := r.program
	running := r.running
	if !running || p == nil {
		fn(r)
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()
	p.Send(applyMsg{fn: fn})
}

func (r *Root) dispatchController(fn func(Controller)) {
	r.ctrlMu.Lock()
	calls := r.calls
	r.ctrlMu.Unlock()
	if fn == nil || calls == nil {
		return
	}
	calls <- fn
}

func (r *Root) runController(calls <-chan func(Controller)) {
	for fn := range calls {
		r.ctrlMu.Lock()
		ctrl := r.ctrl
		r.ctrlMu.Unlock()
		if ctrl != nil {
			fn(ctrl)
		}
	}
}

func (r *Root) handleMouseClick(msg tea.MouseClickMsg) (tea.Model, tea.Cmd) {
	mouse := msg.Mouse()
	r.recordInputEvent(fmt.Sprintf("mouse_click:%d,%d button:%v", mouse.X, mouse.Y, mouse.Button))
	if r.mouseScope == "off" || mouse.Button != tea.MouseLeft || r.overlayActive() {
		return r, nil
	}
	region, ok := r.currentLayout().HitTest(mouse.X, mouse.Y)
	if !ok || !region.Kind.Draggable() {
		return r, nil
	}
	r.logger.Debug("ui.drag_start", "id", region.ID, "x", mouse.X, "y", mouse.Y)
	r.focusRegion(region)
	r.startDrag(region.ID)
	r.pressed = true
	return r, nil
}

func (r *Root) handleMouseMotion(msg tea.MouseMotionMsg) (tea.Model, tea.Cmd) {
	if !r.pressed {
		return r, nil
	}
	mouse := msg.Mouse()
	r.hover = ""
	if region, ok := r.currentLayout().HitTest(mouse.X, mouse.Y); ok {
		r.hover = region.ID
	}
	return r, nil
}

func (r *Root) handleMouseRelease(msg tea.MouseReleaseMsg) (tea.Model, tea.Cmd) {
	mouse := msg.Mouse()
	r.recordInputEvent(fmt.Sprintf("mouse_release:%d,%d", mouse.X, mouse.Y))
	if !r.pressed || r.held == "" {
		r.pressed = false
		return r, nil
	}
	r.pressed = false
	target := ""
	if region, ok := r.currentLayout().HitTest(mouse.X, mouse.Y); ok {
		target = region.ID
		r.focusRegion(region)
	}
	r.logger.Debug("ui.drag_end", "source", r.held, "target", target)
	r.endDrag(target)
	return r, nil
}

func (r *Root) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	r.recordInputEvent(fmt.Sprintf("key:%s", msg.String()))

	if key.Matches(msg, r.keymap.Quit) {
		r.dispatchController(func(c Controller) { c.OnQuit() })
		return r, nil
	}
	if r.setupMsg != "" {
		return r, nil
	}
	if r.resetOpen {
		return r.handleResetConfirmKey(msg)
	}
	if r.result.Visible {
		return r.handleResultKey(msg)
	}

	r.statusFlash = ""
	switch {
	case key.Matches(msg, r.keymap.Focus):
		if r.focus == focusPool {
			r.focus = focusEditor
		} else {
			r.focus = focusPool
		}
	case key.Matches(msg, r.keymap.Up):
		r.moveCursor(-1)
	case key.Matches(msg, r.keymap.Down):
		r.moveCursor(1)
	case key.Matches(msg, r.keymap.Pick):
		r.pickOrDrop()
	case key.Matches(msg, r.keymap.Return):
		r.returnToPool()
	case key.Matches(msg, r.keymap.Cancel):
		if r.held != "" {
			r.endDrag("")
		}
	case key.Matches(msg, r.keymap.Reset):
		r.resetOpen = true
	case key.Matches(msg, r.keymap.Next):
		if r.board.Complete && r.board.HasNext {
			r.dispatchController(func(c Controller) { c.OnAdvance() })
		}
	case key.Matches(msg, r.keymap.Restart):
		r.dispatchController(func(c Controller) { c.OnRestart() })
	}
	return r, nil
}

func (r *Root) handleResetConfirmKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		r.resetOpen = false
		r.held = ""
		r.dispatchController(func(c Controller) { c.OnReset() })
	case "n", "esc":
		r.resetOpen = false
	}
	return r, nil
}

func (r *Root) handleResultKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	buttons := r.resultButtons()
	switch msg.String() {
	case "left", "shift+tab", "h":
		r.resultIndex = wrapIndex(r.resultIndex-1, len(buttons))
	case "right", "tab", "l":
		r.resultIndex = wrapIndex(r.resultIndex+1, len(buttons))
	case "enter", "space":
		r.activateResultButton(buttons[wrapIndex(r.resultIndex, len(buttons))])
	case "n":
		if r.result.HasNext {
			r.activateResultButton("Next level")
		}
	case "esc":
		r.result.Visible = false
		return r, r.animateIfNeeded()
	}
	return r, nil
}

func (r *Root) resultButtons() []string {
	if r.result.HasNext {
		return []string{"Next level", "Replay level"}
	}
	return []string{"Restart from level 1", "Replay level"}
}

func (r *Root) activateResultButton(label string) {
	r.result.Visible = false
	switch label {
	case "Next level":
		r.dispatchController(func(c Controller) { c.OnAdvance() })
	case "Restart from level 1":
		r.dispatchController(func(c Controller) { c.OnRestart() })
	default:
		r.dispatchController(func(c Controller) { c.OnReset() })
	}
}

func (r *Root) pickOrDrop() {
	if r.held == "" {
		id := r.cursorItemID()
		if id == "" {
			r.statusFlash = "Nothing to pick up here."
			return
		}
		r.startDrag(id)
		return
	}
	r.endDrag(r.cursorTargetID())
}

func (r *Root) returnToPool() {
	if r.focus != focusEditor || r.editorIndex >= len(r.board.Slots) {
		return
	}
	slot := r.board.Slots[r.editorIndex]
	if !slot.Occupied {
		return
	}
	if r.held != "" {
		r.endDrag("")
	}
	id, zone := slot.ItemID, r.board.PoolZoneID
	r.dispatchController(func(c Controller) {
		c.OnDragStart(id)
		c.OnDragEnd(id, zone)
	})
}

func (r *Root) startDrag(id string) {
	r.held = id
	r.hover = id
	r.dispatchController(func(c Controller) { c.OnDragStart(id) })
}

func (r *Root) endDrag(target string) {
	src := r.held
	r.held = ""
	r.hover = ""
	r.dispatchController(func(c Controller) { c.OnDragEnd(src, target) })
}

func (r *Root) cursorItemID() string {
	if r.focus == focusPool {
		if r.poolIndex < len(r.board.Pool) {
			return r.board.Pool[r.poolIndex].ID
		}
		return ""
	}
	if r.editorIndex < len(r.board.Slots) && r.board.Slots[r.editorIndex].Occupied {
		return r.board.Slots[r.editorIndex].ItemID
	}
	return ""
}

func (r *Root) cursorTargetID() string {
	if r.focus == focusPool {
		return r.board.PoolZoneID
	}
	if r.editorIndex < len(r.board.Slots) {
		return r.board.Slots[r.editorIndex].SlotID
	}
	return ""
}

func (r *Root) moveCursor(delta int) {
	if r.focus == focusPool {
		r.poolIndex = clampIndex(r.poolIndex+delta, len(r.board.Pool))
		return
	}
	r.editorIndex = clampIndex(r.editorIndex+delta, len(r.board.Slots))
}

func (r *Root) focusRegion(region Region) {
	switch region.Kind {
	case RegionPoolItem:
		r.focus = focusPool
		r.poolIndex = region.Index
	case RegionPlacedItem, RegionSlot:
		r.focus = focusEditor
		r.editorIndex = region.Index
	case RegionPoolZone:
		r.focus = focusPool
	}
}

func (r *Root) currentLayout() Layout {
	return ComputeLayout(r.cols, r.rows, r.board)
}

func (r *Root) overlayActive() bool {
	return r.resetOpen || r.result.Visible || r.setupMsg != ""
}

func (r *Root) renderSetupError() string {
	lines := []string{r.theme.Error.Render(r.setupMsg), ""}
	for _, line := range strings.Split(r.setupDetails, "\n") {
		lines = append(lines, line)
	}
	lines = append(lines, "", "Press q to quit.")
	panel := r.drawPanel("Setup error", lines, min(80, r.cols), min(16, r.rows), true)
	return lipgloss.Place(r.cols, r.rows, lipgloss.Center, lipgloss.Center, panel)
}

func (r *Root) renderBoard() string {
	w, h := r.cols, r.rows
	l := r.currentLayout()
	r.layout = l.Mode

	if l.Mode == LayoutTooSmall {
		need := max(minRows, len(r.board.Slots)+headerRows+footerRows+2)
		msg := []string{
			"Terminal too small",
			fmt.Sprintf("Current: %dx%d", w, h),
			fmt.Sprintf("Minimum: %dx%d", minCols, need),
			"Resize the terminal to continue.",
		}
		panel := r.drawPanel("Resize Required", msg, min(60, w), min(8, h), false)
		return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, panel)
	}

	pool := r.drawPanel(fmt.Sprintf("Pool (%d)", len(r.board.Pool)), r.poolLines(l.Pool.Inner().W), l.Pool.W, l.Pool.H, r.focus == focusPool)
	editor := r.drawPanel("Editor", r.editorLines(l.Editor.Inner().W), l.Editor.W, l.Editor.H, r.focus == focusEditor)
	panels := []string{pool, editor}
	if l.Info.W > 0 {
		in := l.Info.Inner()
		panels = append(panels, r.drawPanel("Notes", r.infoLines(in.W, in.H), l.Info.W, l.Info.H, false))
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, panels...)
	if overlay := r.renderOverlay(); overlay != "" {
		body = r.composeOverlay(body, overlay, w, l.Pool.H)
	}
	return r.headerText() + "\n" + body + "\n" + r.feedbackText() + "\n" + r.statusText()
}

func (r *Root) poolLines(width int) []string {
	if len(r.board.Pool) == 0 {
		return []string{r.theme.Muted.Render("Every line is in the editor.")}
	}
	grip := "⋮⋮ "
	if r.ascii {
		grip = ":: "
	}
	held := firstNonEmptyStr(r.held, r.board.Dragging)
	out := make([]string, 0, len(r.board.Pool))
	for i, row := range r.board.Pool {
		style := r.theme.PanelBody
		switch {
		case row.ID == held:
			style = r.theme.Held
		case r.held != "" && row.ID == r.hover:
			style = r.theme.Target
		case r.focus == focusPool && i == r.poolIndex:
			style = r.theme.Cursor
		}
		out = append(out, style.Render(padCell(grip+row.Text, width)))
	}
	return out
}

func (r *Root) editorLines(width int) []string {
	lockMark := "✓ "
	if r.ascii {
		lockMark = "v "
	}
	held := firstNonEmptyStr(r.held, r.board.Dragging)
	out := make([]string, 0, len(r.board.Slots))
	for i, slot := range r.board.Slots {
		text := fmt.Sprintf("%2d   ", i+1)
		style := r.theme.PanelBody
		switch {
		case !slot.Occupied:
			text = fmt.Sprintf("%2d   %s", i+1, strings.Repeat("·", min(12, max(0, width-5))))
			style = r.theme.Muted
		case slot.Locked:
			text = fmt.Sprintf("%2d %s%s", i+1, lockMark, slot.Text)
			style = r.theme.Locked
		default:
			text += slot.Text
		}
		switch {
		case slot.Occupied && slot.ItemID == held:
			style = r.theme.Held
		case r.held != "" && (r.hover == slot.SlotID || (slot.Occupied && r.hover == slot.ItemID)):
			style = r.theme.Target
		case r.focus == focusEditor && i == r.editorIndex:
			style = r.theme.Cursor
		}
		out = append(out, style.Render(padCell(text, width)))
	}
	return out
}

func (r *Root) infoLines(width, height int) []string {
	var md strings.Builder
	md.WriteString("## " + firstNonEmptyStr(r.board.Title, "Level") + "\n\n")
	md.WriteString(r.board.Description + "\n")
	if r.board.Explanation != "" {
		md.WriteString("\n### Last correct line\n\n" + r.board.Explanation + "\n")
	}
	lines := strings.Split(strings.Trim(r.renderMarkdown(md.String(), width), "\n"), "\n")
	stats := []string{
		"",
		r.theme.Muted.Render(fmt.Sprintf("Moves %d  Mistakes %d  Resets %d", r.board.Moves, r.board.Mistakes, r.board.Resets)),
	}
	if r.board.Best > 0 {
		stats = append(stats, r.theme.Muted.Render(fmt.Sprintf("Best score %d", r.board.Best)))
	}
	room := max(0, height-len(stats))
	if len(lines) > room {
		lines = lines[:room]
	}
	return append(lines, stats...)
}

func (r *Root) renderMarkdown(md string, width int) string {
	cacheKey := fmt.Sprintf("%d\x00%s", width, md)
	if out, ok := r.mdCache[cacheKey]; ok {
		return out
	}
	renderer, ok := r.renderers[width]
	if !ok {
		style := "dark"
		if r.ascii {
			style = "ascii"
		}
		var err error
		renderer, err = glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(max(10, width-2)),
		)
		if err != nil {
			r.logger.Warn("ui.markdown_renderer", "err", err)
			renderer = nil
		}
		r.renderers[width] = renderer
	}
	out := md
	if renderer != nil {
		if rendered, err := renderer.Render(md); err == nil {
			out = rendered
		}
	}
	r.mdCache[cacheKey] = out
	return out
}

func (r *Root) renderOverlay() string {
	switch {
	case r.resetOpen:
		body := "Reset this level?\n\nThe lines are reshuffled and the reset counts against your score.\n\n[y] Reset   [n] Cancel"
		return r.theme.Overlay.Width(min(60, r.cols-4)).Render(body)
	case r.result.Visible || r.overlayPos > 0.001:
		return r.resultOverlay()
	}
	return ""
}

func (r *Root) resultOverlay() string {
	width := min(72, r.cols-4)
	var b strings.Builder
	b.WriteString(r.theme.Accent.Render(firstNonEmptyStr(r.result.Title, "Level complete")) + "\n")
	if r.result.SummaryMD != "" {
		b.WriteString(strings.Trim(r.renderMarkdown(r.result.SummaryMD, width-6), "\n") + "\n")
	}
	b.WriteString(fmt.Sprintf("\nScore: %d\n", r.result.Score))
	for _, row := range r.result.Breakdown {
		b.WriteString(fmt.Sprintf("  %-12s %s\n", row.Label, row.Value))
	}
	b.WriteString("\n")
	for i, label := range r.resultButtons() {
		btn := "[ " + label + " ]"
		if i == r.resultIndex {
			btn = r.theme.Cursor.Render(btn)
		}
		b.WriteString(btn + "  ")
	}
	return r.theme.Overlay.Width(width).Render(b.String())
}

// composeOverlay centers the overlay over the body, offset downwards while
// it slides in.
func (r *Root) composeOverlay(body, overlay string, width, height int) string {
	placed := lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, overlay)
	lines := strings.Split(placed, "\n")
	pos := r.overlayPos
	if r.resetOpen || r.motionLevel == "off" {
		pos = 1
	}
	offset := int((1 - pos) * float64(height))
	if offset <= 0 {
		return placed
	}
	if offset >= height {
		return body
	}
	blank := strings.Repeat(" ", width)
	shifted := make([]string, 0, height)
	for i := 0; i < offset; i++ {
		shifted = append(shifted, blank)
	}
	shifted = append(shifted, lines[:height-offset]...)
	return strings.Join(shifted, "\n")
}

func (r *Root) headerText() string {
	barW := 20
	bar := r.progressBar(barW)
	level := fmt.Sprintf("Level %d/%d", r.board.LevelIndex+1, max(1, r.board.LevelCount))
	if r.board.Title != "" {
		level += ": " + r.board.Title
	}
	txt := fmt.Sprintf("KubeLearn Playground | %s | %d/%d correct", level, r.board.Correct, r.board.Total)
	if r.debug {
		txt = fmt.Sprintf("%s | %dx%d %v", txt, r.cols, r.rows, r.layout)
	}
	txt = trimForWidth(txt, max(1, r.cols-barW-3))
	return r.theme.Header.Width(max(1, r.cols)).Render(padCell(txt, max(1, r.cols-barW-3)) + " " + bar)
}

func (r *Root) progressBar(width int) string {
	m := r.progress
	m.SetWidth(max(8, width))
	return m.ViewAs(r.correctRatio())
}

func (r *Root) correctRatio() float64 {
	if r.board.Total == 0 {
		return 0
	}
	return float64(r.board.Correct) / float64(r.board.Total)
}

func (r *Root) feedbackText() string {
	text := r.board.Feedback
	style := r.theme.Info
	mark := "• "
	switch r.board.FeedbackKind {
	case "success":
		style, mark = r.theme.Locked, "✓ "
	case "error":
		style, mark = r.theme.Error, "✗ "
	}
	if r.ascii {
		mark = "> "
	}
	if text == "" {
		return strings.Repeat(" ", max(1, r.cols))
	}
	return style.Render(padCell(trimForWidth(mark+text, max(1, r.cols-1)), max(1, r.cols)))
}

func (r *Root) statusText() string {
	keys := r.help.View(r.keymap)
	if r.held != "" {
		keys = "Holding " + r.heldText() + " | Enter drop, Esc cancel | " + keys
	}
	if r.statusFlash != "" {
		keys += " | " + r.statusFlash
	}
	keys = trimForWidth(keys, max(1, r.cols-1))
	return r.theme.Status.Width(max(1, r.cols)).Render(keys)
}

func (r *Root) heldText() string {
	for _, row := range r.board.Pool {
		if row.ID == r.held {
			return strings.TrimSpace(row.Text)
		}
	}
	for _, slot := range r.board.Slots {
		if slot.Occupied && slot.ItemID == r.held {
			return strings.TrimSpace(slot.Text)
		}
	}
	return r.held
}

func (r *Root) drawPanel(title string, lines []string, width, height int, active bool) string {
	width = max(4, width)
	height = max(3, height)
	innerW := width - 2
	innerH := height - 2

	h, v := "─", "│"
	tl, tr, bl, br := "┌", "┐", "└", "┘"
	if active && !r.ascii {
		h, v = "━", "┃"
		tl, tr, bl, br = "┏", "┓", "┗", "┛"
	}
	if r.ascii {
		h, v = "-", "|"
		tl, tr, bl, br = "+", "+", "+", "+"
	}

	label := ""
	if title != "" && innerW > 4 {
		label = trimForWidth(" "+title+" ", innerW-2)
	}
	top := r.theme.PanelBorder.Render(tl+h) + r.theme.PanelTitle.Render(label) +
		r.theme.PanelBorder.Render(strings.Repeat(h, max(0, innerW-1-ansi.StringWidth(label)))+tr)

	out := make([]string, 0, height)
	out = append(out, top)
	for row := 0; row < innerH; row++ {
		line := ""
		if row < len(lines) {
			line = lines[row]
		}
		out = append(out, r.theme.PanelBorder.Render(v)+padCell(line, innerW)+r.theme.PanelBorder.Render(v))
	}
	out = append(out, r.theme.PanelBorder.Render(bl+strings.Repeat(h, innerW)+br))
	return strings.Join(out, "\n")
}

func (r *Root) overlayTarget() float64 {
	if r.result.Visible {
		return 1
	}
	return 0
}

func (r *Root) animateIfNeeded() tea.Cmd {
	if r.shouldAnimate(r.overlayTarget()) {
		return animateTickCmd()
	}
	return nil
}

func (r *Root) shouldAnimate(target float64) bool {
	if r.motionLevel == "off" {
		return false
	}
	return abs(r.overlayPos-target) > 0.001 || abs(r.overlayVel) > 0.001
}

func animateTickCmd() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return animateMsg(t) })
}

func (r *Root) currentMouseMode() tea.MouseMode {
	if r.mouseScope == "off" {
		return tea.MouseModeNone
	}
	return tea.MouseModeCellMotion
}

func firstNonEmptyStr(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return a
	}
	return b
}

func wrapIndex(i, n int) int {
	if n <= 0 {
		return 0
	}
	return ((i % n) + n) % n
}

func clampIndex(i, n int) int {
	if n <= 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// padCell fits s, which may carry styling, to exactly width cells.
func padCell(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if ansi.StringWidth(s) > width {
		s = ansi.Truncate(s, width, "…")
	}
	return s + strings.Repeat(" ", max(0, width-ansi.StringWidth(s)))
}

func trimForWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	plain := strings.ReplaceAll(ansi.Strip(s), "\n", " ")
	if ansi.StringWidth(plain) <= width {
		return plain
	}
	return ansi.Truncate(plain, width, "…")
}

func normalizeStyleVariant(v string) string {
	switch strings.TrimSpace(v) {
	case "kube_blue", "high_contrast", "retro_terminal":
		return strings.TrimSpace(v)
	default:
		return "kube_blue"
	}
}

func normalizeMotionLevel(v string) string {
	switch strings.TrimSpace(v) {
	case "off", "reduced", "full":
		return strings.TrimSpace(v)
	default:
		return "full"
	}
}

func normalizeMouseScope(v string) string {
	switch strings.TrimSpace(v) {
	case "off", "on":
		return strings.TrimSpace(v)
	default:
		return "on"
	}
}

func (r *Root) recordInputEvent(event string) {
	r.lastInputEvent = trimForWidth(strings.TrimSpace(event), 160)
}

func (r *Root) onModelPanic(where string, recovered any, msg tea.Msg) {
	if r.statusFlash == "" {
		r.statusFlash = "Recovered UI panic"
	}
	msgType := ""
	if msg != nil {
		msgType = fmt.Sprintf("%T", msg)
	}
	r.logger.Error("ui.panic_recovered",
		"where", where,
		"panic", fmt.Sprintf("%v", recovered),
		"message_type", msgType,
		"layout", r.layout,
		"cols", r.cols,
		"rows", r.rows,
		"last_input", r.lastInputEvent,
		"stack", string(debug.Stack()),
	)
}

var _ tea.Model = (*Root)(nil)
var _ View = (*Root)(nil)
