package grading

import (
	"time"

	"kubelearn/internal/manifest"
)

const (
	ResultKind    = "grader_result"
	SchemaVersion = 1
)

type Request struct {
	LevelID string
	RunID   string

	StartedAt  time.Time
	FinishedAt time.Time

	// Manifest is the editor contents as assembled text.
	Manifest string
	Correct  int
	Total    int

	Moves    int
	Mistakes int
	Resets   int

	BasePoints           int
	MistakePenaltyPoints int
	ResetPenaltyPoints   int
}

type Result struct {
	Kind          string `json:"kind"`
	SchemaVersion int    `json:"schema_version"`
	LevelID       string `json:"level_id"`

	Run     RunInfo           `json:"run"`
	Passed  bool              `json:"passed"`
	Score   Score             `json:"score"`
	Checks  []CheckResult     `json:"checks"`
	Summary *manifest.Summary `json:"summary,omitempty"`
}

type RunInfo struct {
	RunID            string `json:"run_id"`
	StartedAtUnixMS  int64  `json:"started_at_unix_ms"`
	FinishedAtUnixMS int64  `json:"finished_at_unix_ms"`
	DurationMS       int64  `json:"duration_ms"`
	Moves            int    `json:"moves"`
}

type Score struct {
	BasePoints           int          `json:"base_points"`
	MistakePenaltyPoints int          `json:"mistake_penalty_points,omitempty"`
	ResetPenaltyPoints   int          `json:"reset_penalty_points,omitempty"`
	TotalPoints          int          `json:"total_points"`
	Breakdown            []ScoreDelta `json:"breakdown,omitempty"`
}

type ScoreDelta struct {
	Kind        string `json:"kind"`
	Points      int    `json:"points"`
	Description string `json:"description"`
}

type CheckResult struct {
	ID      string `json:"id"`
	Passed  bool   `json:"passed"`
	Message string `json:"message,omitempty"`
}
