package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// The ui and the HTTP surface write from different goroutines.
	db.SetMaxOpenConns(1)
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS level_runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			level_id TEXT NOT NULL,
			start_ts TEXT NOT NULL,
			finish_ts TEXT NOT NULL DEFAULT '',
			moves INTEGER NOT NULL DEFAULT 0,
			mistakes INTEGER NOT NULL DEFAULT 0,
			resets INTEGER NOT NULL DEFAULT 0,
			completed INTEGER NOT NULL DEFAULT 0,
			score INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS drops (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id INTEGER NOT NULL,
			line_id TEXT NOT NULL,
			slot INTEGER NOT NULL,
			correct INTEGER NOT NULL,
			drop_ts TEXT NOT NULL DEFAULT (datetime('now')),
			FOREIGN KEY(run_id) REFERENCES level_runs(id)
		);`,
		`CREATE TABLE IF NOT EXISTS level_progress (
			level_id TEXT PRIMARY KEY,
			completed_count INTEGER NOT NULL DEFAULT 0,
			best_score INTEGER NOT NULL DEFAULT 0,
			best_time_ms INTEGER NOT NULL DEFAULT 0,
			last_played_ts TEXT NOT NULL DEFAULT '',
			last_completed_ts TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE TABLE IF NOT EXISTS app_settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) StartLevelRun(ctx context.Context, run LevelRun) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO level_runs(session_id, level_id, start_ts) VALUES(?,?,?)`,
		run.SessionID,
		strings.TrimSpace(run.LevelID),
		run.StartTS.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *SQLiteStore) RecordDrop(ctx context.Context, runID int64, drop Drop) error {
	correct := ifThen(drop.Correct, 1, 0)
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO drops(run_id, line_id, slot, correct) VALUES(?, ?, ?, ?)`,
		runID, drop.LineID, drop.Slot, correct,
	); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx,
		`UPDATE level_runs SET moves = moves + 1, mistakes = mistakes + ? WHERE id = ?`,
		1-correct, runID,
	); err != nil {
		return err
	}
	return nil
}

func (s *SQLiteStore) IncrementReset(ctx context.Context, runID int64) error {
	_, err := s.db.ExecContext(ctx, `UPDATE level_runs SET resets = resets + 1 WHERE id = ?`, runID)
	return err
}

func (s *SQLiteStore) CompleteLevelRun(ctx context.Context, runID int64, score int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE level_runs SET completed = 1, score = ?, finish_ts = ? WHERE id = ? AND completed = 0`,
		max(0, score), time.Now().UTC().Format(timeLayout), runID,
	)
	return err
}

func (s *SQLiteStore) UpsertLevelProgress(ctx context.Context, update LevelProgressUpdate) error {
	levelID := strings.TrimSpace(update.LevelID)
	if levelID == "" {
		return nil
	}
	playTS := update.LastPlayedTS
	if playTS.IsZero() {
		playTS = time.Now().UTC()
	}
	completedTS := ""
	if update.Completed {
		completedTS = playTS.UTC().Format(timeLayout)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO level_progress(level_id, completed_count, best_score, best_time_ms, last_played_ts, last_completed_ts)
		VALUES(?, ?, ?, ?, ?, ?)
		ON CONFLICT(level_id) DO UPDATE SET
			completed_count = level_progress.completed_count + excluded.completed_count,
			best_score = CASE
				WHEN excluded.best_score > level_progress.best_score THEN excluded.best_score
				ELSE level_progress.best_score
			END,
			best_time_ms = CASE
				WHEN excluded.best_time_ms > 0 AND (level_progress.best_time_ms = 0 OR excluded.best_time_ms < level_progress.best_time_ms) THEN excluded.best_time_ms
				ELSE level_progress.best_time_ms
			END,
			last_played_ts = excluded.last_played_ts,
			last_completed_ts = CASE
				WHEN excluded.last_completed_ts <> '' THEN excluded.last_completed_ts
				ELSE level_progress.last_completed_ts
			END
	`,
		levelID,
		ifThen(update.Completed, 1, 0),
		max(0, update.Score),
		max(0, update.DurationMS),
		playTS.UTC().Format(timeLayout),
		completedTS,
	)
	return err
}

func (s *SQLiteStore) GetLevelProgressMap(ctx context.Context) (map[string]LevelProgress, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT level_id, completed_count, best_score, best_time_ms, last_played_ts, last_completed_ts
		FROM level_progress
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]LevelProgress{}
	for rows.Next() {
		var (
			p             LevelProgress
			lastPlayed    string
			lastCompleted string
		)
		if err := rows.Scan(&p.LevelID, &p.CompletedCount, &p.BestScore, &p.BestTimeMS, &lastPlayed, &lastCompleted); err != nil {
			return nil, err
		}
		p.LastPlayedTS = parseTS(lastPlayed)
		p.LastCompletedTS = parseTS(lastCompleted)
		out[p.LevelID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SQLiteStore) SaveSettings(ctx context.Context, values map[string]string) (err error) {
	if len(values) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	for key, value := range values {
		k := strings.TrimSpace(key)
		if k == "" {
			continue
		}
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO app_settings(key, value) VALUES(?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`, k, value); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) LoadSettings(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM app_settings`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SQLiteStore) GetSummary(ctx context.Context) (Summary, error) {
	var out Summary
	row := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*) as level_runs,
			COALESCE(SUM(completed),0) as completions,
			COALESCE(SUM(moves),0) as moves,
			COALESCE(SUM(mistakes),0) as mistakes,
			COALESCE(SUM(resets),0) as resets
		FROM level_runs
	`)
	if err := row.Scan(&out.LevelRuns, &out.Completions, &out.Moves, &out.Mistakes, &out.Resets); err != nil {
		return Summary{}, err
	}
	return out, nil
}

func (s *SQLiteStore) GetLastRun(ctx context.Context) (*LastRun, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT session_id, level_id, start_ts, completed, moves, mistakes, resets, score
		FROM level_runs
		ORDER BY id DESC
		LIMIT 1
	`)
	var (
		out        LastRun
		startTSRaw string
		completed  int
	)
	if err := row.Scan(&out.SessionID, &out.LevelID, &startTSRaw, &completed, &out.Moves, &out.Mistakes, &out.Resets, &out.Score); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	out.StartTS = parseTS(startTSRaw)
	out.Completed = completed == 1
	return &out, nil
}

func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

const timeLayout = "2006-01-02T15:04:05Z07:00"

func parseTS(raw string) time.Time {
	t, err := time.Parse(timeLayout, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

func ifThen(cond bool, yes, no int) int {
	if cond {
		return yes
	}
	return no
}
