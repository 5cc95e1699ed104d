package playground

import (
	"fmt"
	"strings"

	"kubelearn/internal/levels"
)

const anyIndent = -1

type keyHint struct {
	code   string
	indent int
	text   string
}

var structuralHints = []keyHint{
	{"apiVersion: v1", anyIndent, "'apiVersion' always comes first. Kubernetes needs to know which API version to use before it can read anything else in the manifest."},
	{"apiVersion: apps/v1", anyIndent, "'apiVersion' always comes first. Kubernetes needs to know which API group and version to use before it can read anything else."},
	{"kind: Pod", anyIndent, "'kind' comes right after 'apiVersion'. Once Kubernetes knows the API version it needs the resource type, here a Pod."},
	{"kind: Deployment", anyIndent, "'kind' comes right after 'apiVersion'. Once Kubernetes knows the API group it needs the resource type, here a Deployment."},
	{"metadata:", 0, "'metadata' follows 'apiVersion' and 'kind'. It is the top-level section that identifies the resource before its spec."},
	{"name: my-pod", 2, "'name' belongs inside 'metadata', indented two spaces. The name is part of how the resource is identified."},
	{"spec:", 0, "'spec' is a top-level key that comes after 'metadata'. It describes the desired state: what should actually run."},
	{"containers:", anyIndent, "'containers' lives inside 'spec'. A Pod spec lists the containers it runs."},
	{"- name: nginx", anyIndent, "The dash starts an item in the 'containers' list, so it goes directly under 'containers:'."},
	{"image: nginx:1.21", 4, "'image' is a property of the container, so it sits under '- name: nginx', indented to line up with 'name'."},
	{"resources:", anyIndent, "'resources' is a container property. It goes after the container's 'image', at the same indent."},
	{"requests:", anyIndent, "'requests' is nested inside 'resources'. It lists the minimum CPU and memory the container is guaranteed."},
	{`memory: "64Mi"`, 8, "The memory quantity is one of the 'requests' entries, so it goes below 'requests:'."},
	{`cpu: "250m"`, 8, "The CPU quantity is one of the 'requests' entries. In this manifest it follows the memory request."},
}

// Hint explains why line does not belong at attempted. Known structural keys
// get a concept hint; anything else gets a directional one.
func Hint(line levels.Line, attempted int) string {
	if text, ok := structuralHint(line); ok {
		return text
	}
	return directionalHint(line.Position, attempted)
}

func structuralHint(line levels.Line) (string, bool) {
	code := strings.TrimSpace(line.Code)
	for _, h := range structuralHints {
		if h.code != code {
			continue
		}
		if h.indent != anyIndent && h.indent != line.Indent {
			continue
		}
		return h.text, true
	}
	return "", false
}

func directionalHint(correct, attempted int) string {
	diff := correct - attempted
	if diff == 0 {
		return "This line is already in the right place."
	}
	dir := "further down"
	adjacent := "below"
	if diff < 0 {
		dir = "further up"
		adjacent = "above"
		diff = -diff
	}
	switch {
	case diff == 1:
		return fmt.Sprintf("Close! Try the adjacent line %s.", adjacent)
	case diff <= 3:
		return fmt.Sprintf("Not quite. This line belongs a few lines %s.", dir)
	default:
		return fmt.Sprintf("This line belongs much %s, around line %d.", dir, correct+1)
	}
}
