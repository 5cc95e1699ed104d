package manifest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"kubelearn/internal/levels"
	"kubelearn/internal/playground"
)

func builtin(t *testing.T) []levels.Level {
	t.Helper()
	lv, err := levels.NewLoader().LoadCatalog(context.Background(), "")
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	return lv
}

func TestBuiltinLevelsVerify(t *testing.T) {
	for _, level := range builtin(t) {
		if err := VerifyLevel(level); err != nil {
			t.Fatalf("verify %s: %v", level.LevelID, err)
		}
	}
}

func TestAssembleMarksEmptySlots(t *testing.T) {
	level := builtin(t)[0]
	api, _ := level.LineByID("line-1")
	name, _ := level.LineByID("line-4")
	p := playground.NewPlacement(len(level.Lines))
	p, _ = p.Place(0, api)
	p, _ = p.Place(2, name)

	lines := strings.Split(strings.TrimSuffix(Assemble(level, p), "\n"), "\n")
	if len(lines) != 8 {
		t.Fatalf("expected 8 lines, got %d", len(lines))
	}
	if lines[0] != "apiVersion: v1" || lines[2] != "  name: my-pod" || lines[1] != "# slot 2 is empty" {
		t.Fatalf("unexpected assembly: %q", lines)
	}
}

func TestInspectPodWithRequests(t *testing.T) {
	level := builtin(t)[1]
	s, err := Inspect(Solution(level))
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if s.Kind != "Pod" || s.Name != "my-pod" || len(s.Containers) != 1 {
		t.Fatalf("unexpected summary %#v", s)
	}
	c := s.Containers[0]
	if c.Image != "nginx:1.21" || c.Requests["memory"] != "64Mi" || c.Requests["cpu"] != "250m" {
		t.Fatalf("unexpected container %#v", c)
	}
	if !strings.Contains(s.Describe(), "requests cpu: 250m") {
		t.Fatalf("describe missing cpu request: %s", s.Describe())
	}
}

func TestInspectDeployment(t *testing.T) {
	level := builtin(t)[2]
	s, err := Inspect(Solution(level))
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if s.Kind != "Deployment" || s.Replicas == nil || *s.Replicas != 3 {
		t.Fatalf("unexpected summary %#v", s)
	}
	if s.Containers[0].Name != "nginx" {
		t.Fatalf("unexpected containers %#v", s.Containers)
	}
}

func TestInspectRejectsUnknownKind(t *testing.T) {
	_, err := Inspect("apiVersion: v1\nkind: Service\nmetadata:\n  name: x\n")
	if !errors.Is(err, ErrUnsupportedKind) {
		t.Fatalf("expected ErrUnsupportedKind, got %v", err)
	}
}

func TestInspectRejectsMisindentedPod(t *testing.T) {
	text := "apiVersion: v1\nkind: Pod\nmetadata:\nname: my-pod\n"
	if _, err := Inspect(text); err == nil {
		t.Fatalf("expected strict decode error for top-level name")
	}
}
