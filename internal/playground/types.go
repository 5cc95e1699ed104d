package playground

import "kubelearn/internal/levels"

// Record is a line as it currently sits in the editor.
type Record struct {
	levels.Line
	PlacedAt int
}

// Locked reports whether the record sits at its ground-truth position.
func (r Record) Locked() bool { return r.Position == r.PlacedAt }

type FeedbackKind string

const (
	FeedbackInfo    FeedbackKind = "info"
	FeedbackSuccess FeedbackKind = "success"
	FeedbackError   FeedbackKind = "error"
)

type Feedback struct {
	Text string       `json:"text"`
	Kind FeedbackKind `json:"kind"`
}

// Logger receives invariant violations such as malformed gesture ids.
type Logger interface {
	Error(msg string, fields map[string]any)
}

type nopLogger struct{}

func (nopLogger) Error(string, map[string]any) {}
