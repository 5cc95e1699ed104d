package levels

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

type FSLoader struct{}

func NewLoader() *FSLoader { return &FSLoader{} }

// LoadCatalog reads every *.yaml catalog under root, in file name order, and
// returns their levels in declaration order. An empty root loads the builtin
// catalog shipped with the binary.
func (l *FSLoader) LoadCatalog(ctx context.Context, root string) ([]Level, error) {
	if strings.TrimSpace(root) == "" {
		sub, err := fs.Sub(builtinFS, "builtin")
		if err != nil {
			return nil, err
		}
		return loadFromFS(ctx, sub, "builtin")
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("levels path %s is not a directory", root)
	}
	return loadFromFS(ctx, os.DirFS(root), root)
}

func loadFromFS(ctx context.Context, fsys fs.FS, label string) ([]Level, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := path.Ext(e.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	out := make([]Level, 0)
	seen := map[string]string{}
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		catalog, err := readCatalog(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("load catalog %s/%s: %w", label, name, err)
		}
		for _, level := range catalog.Levels {
			if prev, ok := seen[level.LevelID]; ok {
				return nil, fmt.Errorf("level_id %q declared in both %s and %s", level.LevelID, prev, name)
			}
			seen[level.LevelID] = name
			applyLevelDefaults(&level)
			out = append(out, level)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no levels found under %s", label)
	}
	return out, nil
}

func readCatalog(fsys fs.FS, name string) (Catalog, error) {
	var catalog Catalog
	b, err := fs.ReadFile(fsys, name)
	if err != nil {
		return catalog, err
	}
	if err := yaml.Unmarshal(b, &catalog); err != nil {
		return catalog, fmt.Errorf("parse: %w", err)
	}
	if err := catalog.Validate(); err != nil {
		return catalog, fmt.Errorf("validate: %w", err)
	}
	catalog.Path = name
	return catalog, nil
}

func applyLevelDefaults(level *Level) {
	if level.Scoring.BasePoints <= 0 {
		level.Scoring.BasePoints = 1000
	}
	if level.Scoring.MistakePenaltyPoints <= 0 {
		level.Scoring.MistakePenaltyPoints = 25
	}
	if level.Scoring.ResetPenaltyPoints <= 0 {
		level.Scoring.ResetPenaltyPoints = 120
	}
}

func (l *FSLoader) FindLevel(levels []Level, levelID string) (int, Level, error) {
	for i, lv := range levels {
		if lv.LevelID == levelID {
			return i, lv, nil
		}
	}
	return -1, Level{}, fmt.Errorf("level %s not found", levelID)
}
