package devtools

import "kubelearn/internal/levels"

// Demo resolves named scenarios into scripted gestures for a level.
type Demo interface {
	Names() []string
	Resolve(name string, level levels.Level) (Scenario, error)
}

type Scenario struct {
	Name  string
	Steps []Step
}

// Step is one gesture as wire ids. An empty Target drops on nothing.
type Step struct {
	Source string
	Target string
}
