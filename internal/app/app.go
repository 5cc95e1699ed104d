package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"kubelearn/internal/devtools"
	"kubelearn/internal/grading"
	"kubelearn/internal/httpapi"
	"kubelearn/internal/levels"
	"kubelearn/internal/manifest"
	"kubelearn/internal/playground"
	"kubelearn/internal/state"
	"kubelearn/internal/telemetry"
	"kubelearn/internal/ui"
)

const controllerTimeout = 5 * time.Second

type App struct {
	cfg Config

	logger  *telemetry.JSONLogger
	store   *state.SQLiteStore
	session *Session
	demo    *devtools.Manager

	view   *ui.Root
	server *httpapi.Server
}

func New(cfg Config) (*App, error) {
	requested := cfg.UI
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, err
	}

	logger, err := telemetry.NewJSONLogger(cfg.LogPath)
	if err != nil {
		return nil, err
	}
	logger.SetDebug(cfg.DebugLayout)

	ctx := context.Background()
	store, err := state.NewSQLite(filepath.Join(cfg.DataDir, "state.db"))
	if err != nil {
		_ = logger.Close()
		return nil, err
	}
	if err := store.EnsureSchema(ctx); err != nil {
		_ = store.Close()
		_ = logger.Close()
		return nil, err
	}
	if stored, err := store.LoadSettings(ctx); err != nil {
		logger.Error("settings.load_failed", map[string]any{"error": err})
	} else {
		validated := cfg.UI
		cfg.UI = requested
		cfg.applySettings(stored)
		if err := cfg.Validate(); err != nil {
			logger.Error("settings.invalid", map[string]any{"error": err})
			cfg.UI = validated
		}
	}
	if err := store.SaveSettings(ctx, cfg.settings()); err != nil {
		logger.Error("settings.save_failed", map[string]any{"error": err})
	}

	catalog, err := LoadCatalog(ctx, cfg.LevelsDir)
	if err != nil {
		_ = store.Close()
		_ = logger.Close()
		return nil, err
	}
	engine, err := playground.NewEngine(catalog,
		playground.WithShuffler(playground.NewShuffler(cfg.Seed)),
		playground.WithLogger(logger),
	)
	if err != nil {
		_ = store.Close()
		_ = logger.Close()
		return nil, err
	}

	a := &App{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		session: NewSession(ctx, engine, store, grading.NewGrader(), logger),
		demo:    devtools.NewManager(),
	}
	if cfg.HTTPAddr != "" {
		a.server = httpapi.NewServer(a.session, logger)
	}
	if !cfg.Headless {
		a.view = ui.New(ui.Options{
			ASCIIOnly:    cfg.ASCIIOnly,
			Debug:        cfg.DebugLayout,
			StyleVariant: cfg.UI.StyleVariant,
			MotionLevel:  cfg.UI.MotionLevel,
			MouseScope:   cfg.UI.MouseScope,
		})
		a.view.SetController(a)
		a.session.Subscribe(a.render)
		a.render(a.session.Current())
	}
	return a, nil
}

// LoadCatalog loads levels from dir, or the builtin catalog when dir is
// empty, and checks that every solved level decodes as a manifest.
func LoadCatalog(ctx context.Context, dir string) ([]levels.Level, error) {
	catalog, err := levels.NewLoader().LoadCatalog(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("load levels: %w", err)
	}
	if len(catalog) == 0 {
		return nil, errors.New("no levels available")
	}
	for _, l := range catalog {
		if err := manifest.VerifyLevel(l); err != nil {
			return nil, fmt.Errorf("level %q: %w", l.LevelID, err)
		}
	}
	return catalog, nil
}

func (a *App) Session() *Session { return a.session }

func (a *App) Run(ctx context.Context) error {
	a.logger.Info("app.start", map[string]any{
		"session":  a.session.ID(),
		"headless": a.cfg.Headless,
		"http":     a.cfg.HTTPAddr,
		"seed":     a.cfg.Seed,
	})

	if a.server != nil {
		go func() {
			if err := a.server.Start(a.cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("http.listen_failed", map[string]any{"addr": a.cfg.HTTPAddr, "error": err})
				if a.view != nil {
					a.view.FlashStatus("HTTP surface unavailable: " + err.Error())
				}
			}
		}()
	}

	if a.cfg.DemoScenario != "" {
		if err := a.RunDemo(ctx, a.cfg.DemoScenario); err != nil {
			a.logger.Error("demo.failed", map[string]any{"demo": a.cfg.DemoScenario, "error": err})
			if a.view != nil {
				a.view.SetSetupError("Demo scenario failed", err.Error())
			}
		}
	}

	if a.view == nil {
		<-ctx.Done()
		return nil
	}
	stop := context.AfterFunc(ctx, a.view.Stop)
	defer stop()
	return a.view.Run()
}

// RunDemo plays a named scripted scenario against the current level.
func (a *App) RunDemo(ctx context.Context, name string) error {
	scenario, err := a.demo.Resolve(strings.TrimSpace(name), a.session.Level())
	if err != nil {
		return err
	}
	a.logger.Info("demo.start", map[string]any{"demo": scenario.Name, "steps": len(scenario.Steps)})
	for _, step := range scenario.Steps {
		if _, err := a.session.Drag(ctx, step.Source, step.Target); err != nil {
			return fmt.Errorf("demo %s: %w", scenario.Name, err)
		}
	}
	return nil
}

func (a *App) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			a.logger.Error("http.shutdown_failed", map[string]any{"error": err})
		}
	}
	a.logger.Info("app.stop", map[string]any{"session": a.session.ID()})
	_ = a.store.Close()
	_ = a.logger.Close()
}

func (a *App) OnDragStart(sourceID string) {
	ctx, cancel := context.WithTimeout(context.Background(), controllerTimeout)
	defer cancel()
	a.session.DragStart(ctx, sourceID)
}

func (a *App) OnDragEnd(sourceID, targetID string) {
	ctx, cancel := context.WithTimeout(context.Background(), controllerTimeout)
	defer cancel()
	if _, err := a.session.Drag(ctx, sourceID, targetID); err != nil {
		a.view.FlashStatus("drop failed: " + err.Error())
	}
}

func (a *App) OnReset() {
	ctx, cancel := context.WithTimeout(context.Background(), controllerTimeout)
	defer cancel()
	if _, err := a.session.Reset(ctx); err != nil {
		a.view.FlashStatus("reset failed: " + err.Error())
		return
	}
	a.view.FlashStatus("Level reset")
}

func (a *App) OnAdvance() {
	ctx, cancel := context.WithTimeout(context.Background(), controllerTimeout)
	defer cancel()
	if _, err := a.session.Advance(ctx); err != nil {
		a.view.FlashStatus("next level failed: " + err.Error())
	}
}

func (a *App) OnRestart() {
	ctx, cancel := context.WithTimeout(context.Background(), controllerTimeout)
	defer cancel()
	if _, err := a.session.Restart(ctx); err != nil {
		a.view.FlashStatus("restart failed: " + err.Error())
	}
}

func (a *App) OnQuit() {
	a.view.Stop()
}

func (a *App) render(u Update) {
	a.view.SetBoard(boardState(u))
	if u.Finished && u.Result != nil {
		a.view.SetResult(resultState(u.Snapshot, *u.Result))
	}
}

func boardState(u Update) ui.BoardState {
	snap := u.Snapshot
	pool := make([]ui.PoolRow, 0, len(snap.Pool))
	for _, line := range snap.Pool {
		pool = append(pool, ui.PoolRow{ID: playground.PoolItemID(line.ID), Text: line.Text()})
	}
	slots := make([]ui.SlotRow, 0, len(snap.Slots))
	for _, s := range snap.Slots {
		row := ui.SlotRow{SlotID: s.ID, ItemID: s.ItemID, Position: s.Position, Occupied: s.Occupied, Locked: s.Locked}
		if s.Occupied {
			row.Text = s.Line.Text()
		}
		slots = append(slots, row)
	}
	return ui.BoardState{
		LevelIndex:   snap.LevelIndex,
		LevelCount:   snap.LevelCount,
		LevelID:      snap.LevelID,
		Title:        snap.Title,
		Description:  snap.Description,
		PoolZoneID:   snap.PoolZoneID,
		Pool:         pool,
		Slots:        slots,
		Feedback:     snap.Feedback.Text,
		FeedbackKind: string(snap.Feedback.Kind),
		Explanation:  u.Explanation,
		Dragging:     snap.DraggingID,
		Correct:      snap.Correct,
		Total:        snap.Total,
		Complete:     snap.Complete,
		HasNext:      snap.HasNext,
		Moves:        snap.Moves,
		Mistakes:     snap.Mistakes,
		Resets:       snap.Resets,
		Best:         u.Best,
	}
}

func resultState(snap playground.Snapshot, result grading.Result) ui.ResultState {
	breakdown := make([]ui.BreakdownRow, 0, len(result.Score.Breakdown)+2)
	breakdown = append(breakdown, ui.BreakdownRow{Label: "base", Value: fmt.Sprintf("%d", result.Score.BasePoints)})
	for _, row := range result.Score.Breakdown {
		breakdown = append(breakdown, ui.BreakdownRow{Label: row.Kind, Value: fmt.Sprintf("%d", row.Points)})
	}
	breakdown = append(breakdown, ui.BreakdownRow{Label: "total", Value: fmt.Sprintf("%d", result.Score.TotalPoints)})

	var md strings.Builder
	if result.Summary != nil {
		md.WriteString(result.Summary.Describe())
	}
	for _, c := range result.Checks {
		if !c.Passed {
			fmt.Fprintf(&md, "\n- **%s** failed: %s\n", c.ID, c.Message)
		}
	}

	title := fmt.Sprintf("Level %d complete", snap.LevelIndex+1)
	if !snap.HasNext {
		title = "All levels complete"
	}
	return ui.ResultState{
		Visible:   true,
		Title:     title,
		SummaryMD: md.String(),
		Score:     result.Score.TotalPoints,
		Breakdown: breakdown,
		HasNext:   snap.HasNext,
	}
}
