package httpapi

import "kubelearn/internal/manifest"

// DragRequest is one completed gesture. A null or missing target means the
// line was dropped outside every drop zone.
type DragRequest struct {
	Source string  `json:"source"`
	Target *string `json:"target"`
}

type ManifestView struct {
	LevelID  string            `json:"level_id"`
	Text     string            `json:"text"`
	Complete bool              `json:"complete"`
	Summary  *manifest.Summary `json:"summary,omitempty"`
	Error    string            `json:"error,omitempty"`
}

type LevelInfo struct {
	Index          int    `json:"index"`
	LevelID        string `json:"level_id"`
	Title          string `json:"title"`
	Lines          int    `json:"lines"`
	Current        bool   `json:"current"`
	BestScore      int    `json:"best_score"`
	CompletedCount int    `json:"completed_count"`
}

type ErrorResponse struct {
	Reason string `json:"reason"`
	Advice string `json:"advice,omitempty"`
}
