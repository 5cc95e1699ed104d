package playground

import (
	"strings"
	"testing"

	"kubelearn/internal/levels"
)

func TestHintKindAtFirstSlotMentionsAPIVersion(t *testing.T) {
	line := levels.Line{ID: "line-2", Code: "kind: Pod", Position: 1}
	got := Hint(line, 0)
	if !strings.Contains(got, "apiVersion") {
		t.Fatalf("expected apiVersion in hint, got %q", got)
	}
}

func TestHintIndentSpecificKeysFallBackWhenIndentDiffers(t *testing.T) {
	podImage := levels.Line{Code: "image: nginx:1.21", Indent: 4, Position: 7}
	if got := Hint(podImage, 2); !strings.Contains(got, "container") {
		t.Fatalf("expected structural image hint, got %q", got)
	}
	deploymentImage := levels.Line{Code: "image: nginx:1.21", Indent: 8, Position: 16}
	got := Hint(deploymentImage, 2)
	if !strings.Contains(got, "much further down") || !strings.Contains(got, "line 17") {
		t.Fatalf("expected directional hint for nested image, got %q", got)
	}
}

func TestHintTrimsCodeBeforeMatching(t *testing.T) {
	line := levels.Line{Code: "  containers:  ", Indent: 2, Position: 5}
	if got := Hint(line, 0); !strings.Contains(got, "'containers'") {
		t.Fatalf("expected containers hint, got %q", got)
	}
}

func TestDirectionalHintGraduatesByDistance(t *testing.T) {
	line := levels.Line{Code: "replicas: 3", Indent: 2, Position: 5}
	cases := []struct {
		attempted int
		want      string
	}{
		{4, "adjacent line below"},
		{6, "adjacent line above"},
		{3, "a few lines further down"},
		{2, "a few lines further down"},
		{8, "a few lines further up"},
		{0, "much further down, around line 6"},
		{12, "much further up, around line 6"},
	}
	for _, tc := range cases {
		got := Hint(line, tc.attempted)
		if !strings.Contains(got, tc.want) {
			t.Fatalf("attempted %d: expected %q in %q", tc.attempted, tc.want, got)
		}
	}
}

func TestHintIsDeterministic(t *testing.T) {
	line := levels.Line{Code: `cpu: "250m"`, Indent: 8, Position: 11}
	first := Hint(line, 3)
	for i := 0; i < 5; i++ {
		if got := Hint(line, 3); got != first {
			t.Fatalf("hint changed between calls: %q vs %q", first, got)
		}
	}
}
