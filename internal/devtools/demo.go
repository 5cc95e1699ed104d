package devtools

import (
	"fmt"
	"sort"

	"kubelearn/internal/levels"
	"kubelearn/internal/playground"
)

type Manager struct{}

func NewManager() *Manager { return &Manager{} }

var scenarios = map[string]func(levels.Level) []Step{
	"empty":    func(levels.Level) []Step { return nil },
	"solve":    solveSteps,
	"almost":   almostSteps,
	"mistakes": mistakeSteps,
}

func (m *Manager) Names() []string {
	out := make([]string, 0, len(scenarios))
	for name := range scenarios {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (m *Manager) Resolve(name string, level levels.Level) (Scenario, error) {
	build, ok := scenarios[name]
	if !ok {
		return Scenario{}, fmt.Errorf("unknown demo scenario %q (known: %v)", name, m.Names())
	}
	return Scenario{Name: name, Steps: build(level)}, nil
}

func solveSteps(level levels.Level) []Step {
	steps := make([]Step, 0, len(level.Lines))
	for _, line := range level.Solution() {
		steps = append(steps, Step{Source: playground.PoolItemID(line.ID), Target: playground.SlotID(line.Position)})
	}
	return steps
}

// almostSteps leaves the last line in the pool.
func almostSteps(level levels.Level) []Step {
	steps := solveSteps(level)
	if len(steps) == 0 {
		return steps
	}
	return steps[:len(steps)-1]
}

// mistakeSteps drops the last two lines into each other's slots, then
// swaps them into place.
func mistakeSteps(level levels.Level) []Step {
	solution := level.Solution()
	n := len(solution)
	if n < 2 {
		return solveSteps(level)
	}
	steps := solveSteps(level)[:n-2]
	a, b := solution[n-2], solution[n-1]
	steps = append(steps,
		Step{Source: playground.PoolItemID(a.ID), Target: playground.SlotID(b.Position)},
		Step{Source: playground.PoolItemID(b.ID), Target: playground.SlotID(a.Position)},
		Step{Source: playground.PlacedItemID(a.ID, b.Position), Target: playground.SlotID(a.Position)},
	)
	return steps
}
