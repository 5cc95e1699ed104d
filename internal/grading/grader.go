package grading

import (
	"context"
	"fmt"

	"kubelearn/internal/manifest"
)

type DefaultGrader struct{}

func NewGrader() *DefaultGrader { return &DefaultGrader{} }

// Grade checks a finished level and scores it. An incomplete editor fails
// and scores zero.
func (g *DefaultGrader) Grade(ctx context.Context, req Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	result := Result{
		Kind:          ResultKind,
		SchemaVersion: SchemaVersion,
		LevelID:       req.LevelID,
		Run: RunInfo{
			RunID:            req.RunID,
			StartedAtUnixMS:  req.StartedAt.UnixMilli(),
			FinishedAtUnixMS: req.FinishedAt.UnixMilli(),
			DurationMS:       max(0, req.FinishedAt.Sub(req.StartedAt).Milliseconds()),
			Moves:            req.Moves,
		},
	}

	locked := CheckResult{ID: "all_lines_locked", Passed: req.Total > 0 && req.Correct == req.Total}
	if !locked.Passed {
		locked.Message = fmt.Sprintf("%d of %d lines are in place", req.Correct, req.Total)
	}
	result.Checks = append(result.Checks, locked)

	decode := CheckResult{ID: "manifest_decodes"}
	if summary, err := manifest.Inspect(req.Manifest); err != nil {
		decode.Message = err.Error()
	} else {
		decode.Passed = true
		result.Summary = &summary
	}
	result.Checks = append(result.Checks, decode)

	result.Passed = locked.Passed && decode.Passed

	base := defaultInt(req.BasePoints, 1000)
	mistakePenalty := defaultInt(req.MistakePenaltyPoints, 25)
	resetPenalty := defaultInt(req.ResetPenaltyPoints, 120)

	mistakePenaltyPoints := req.Mistakes * mistakePenalty
	resetPenaltyPoints := req.Resets * resetPenalty
	total := base - mistakePenaltyPoints - resetPenaltyPoints
	if total < 0 || !result.Passed {
		total = 0
	}
	result.Score = Score{
		BasePoints:           base,
		MistakePenaltyPoints: mistakePenaltyPoints,
		ResetPenaltyPoints:   resetPenaltyPoints,
		TotalPoints:          total,
		Breakdown: []ScoreDelta{
			{Kind: "mistake", Points: -mistakePenaltyPoints, Description: "Lines dropped in the wrong slot"},
			{Kind: "reset", Points: -resetPenaltyPoints, Description: "Resets used"},
		},
	}
	return result, nil
}

func defaultInt(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}
