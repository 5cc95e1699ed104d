// Package manifest turns editor contents back into YAML and reads a finished
// manifest as a typed Kubernetes object.
package manifest

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/yaml"

	"kubelearn/internal/levels"
	"kubelearn/internal/playground"
)

var ErrUnsupportedKind = errors.New("unsupported kind")

type ContainerSummary struct {
	Name     string            `json:"name"`
	Image    string            `json:"image"`
	Requests map[string]string `json:"requests,omitempty"`
}

type Summary struct {
	APIVersion string             `json:"apiVersion"`
	Kind       string             `json:"kind"`
	Name       string             `json:"name"`
	Replicas   *int32             `json:"replicas,omitempty"`
	Containers []ContainerSummary `json:"containers"`
}

// Assemble renders the editor slot by slot. Empty slots become comments so
// the text stays line-aligned with the editor.
func Assemble(level levels.Level, p playground.Placement) string {
	var b strings.Builder
	for i := 0; i < len(level.Lines); i++ {
		if r, ok := p.At(i); ok {
			b.WriteString(r.Text())
		} else {
			fmt.Fprintf(&b, "# slot %d is empty", i+1)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Solution renders the level's ground-truth manifest.
func Solution(level levels.Level) string {
	var b strings.Builder
	for _, line := range level.Solution() {
		b.WriteString(line.Text())
		b.WriteByte('\n')
	}
	return b.String()
}

// Inspect decodes a Pod or Deployment manifest.
func Inspect(text string) (Summary, error) {
	var meta metav1.TypeMeta
	if err := yaml.Unmarshal([]byte(text), &meta); err != nil {
		return Summary{}, fmt.Errorf("decode type: %w", err)
	}
	switch meta.Kind {
	case "Pod":
		var pod corev1.Pod
		if err := yaml.UnmarshalStrict([]byte(text), &pod); err != nil {
			return Summary{}, fmt.Errorf("decode pod: %w", err)
		}
		return Summary{
			APIVersion: pod.APIVersion,
			Kind:       pod.Kind,
			Name:       pod.Name,
			Containers: summarizeContainers(pod.Spec.Containers),
		}, nil
	case "Deployment":
		var dep appsv1.Deployment
		if err := yaml.UnmarshalStrict([]byte(text), &dep); err != nil {
			return Summary{}, fmt.Errorf("decode deployment: %w", err)
		}
		return Summary{
			APIVersion: dep.APIVersion,
			Kind:       dep.Kind,
			Name:       dep.Name,
			Replicas:   dep.Spec.Replicas,
			Containers: summarizeContainers(dep.Spec.Template.Spec.Containers),
		}, nil
	}
	return Summary{}, fmt.Errorf("%w %q", ErrUnsupportedKind, meta.Kind)
}

// VerifyLevel checks that the level's solution is a manifest Inspect accepts.
func VerifyLevel(level levels.Level) error {
	if _, err := Inspect(Solution(level)); err != nil {
		return fmt.Errorf("level %s solution: %w", level.LevelID, err)
	}
	return nil
}

func summarizeContainers(containers []corev1.Container) []ContainerSummary {
	out := make([]ContainerSummary, 0, len(containers))
	for _, c := range containers {
		cs := ContainerSummary{Name: c.Name, Image: c.Image}
		if len(c.Resources.Requests) > 0 {
			cs.Requests = map[string]string{}
			for name, q := range c.Resources.Requests {
				cs.Requests[string(name)] = q.String()
			}
		}
		out = append(out, cs)
	}
	return out
}

// Describe renders the summary as short markdown.
func (s Summary) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s** `%s` (%s)\n", s.Kind, s.Name, s.APIVersion)
	if s.Replicas != nil {
		fmt.Fprintf(&b, "\n- replicas: %d\n", *s.Replicas)
	}
	for _, c := range s.Containers {
		fmt.Fprintf(&b, "- container `%s` runs `%s`\n", c.Name, c.Image)
		keys := make([]string, 0, len(c.Requests))
		for k := range c.Requests {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "  - requests %s: %s\n", k, c.Requests[k])
		}
	}
	return b.String()
}
