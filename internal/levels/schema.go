package levels

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	CatalogKind            = "catalog"
	SupportedSchemaVersion = 1
)

var (
	idPattern     = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{2,63}$`)
	lineIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]{0,63}$`)
)

// Drop-target ids used by the playground. A line id is also the id of its
// pool item, so it must never take one of these forms.
const (
	PoolZoneID     = "pool-zone"
	SlotIDPrefix   = "slot-"
	PlacedIDPrefix = "placed-"
)

type Catalog struct {
	Kind          string  `yaml:"kind"`
	SchemaVersion int     `yaml:"schema_version"`
	Name          string  `yaml:"name"`
	Levels        []Level `yaml:"levels"`

	Path string `yaml:"-"`
}

type Level struct {
	LevelID     string      `yaml:"level_id"`
	Title       string      `yaml:"title"`
	Description string      `yaml:"description"`
	Tags        []string    `yaml:"tags"`
	Lines       []Line      `yaml:"lines"`
	Scoring     ScoringSpec `yaml:"scoring"`
}

// Line is one draggable YAML line. Position is the zero-based slot it belongs in.
type Line struct {
	ID          string `yaml:"id" json:"id"`
	Code        string `yaml:"code" json:"code"`
	Indent      int    `yaml:"indent" json:"indent"`
	Explanation string `yaml:"explanation" json:"explanation"`
	Position    int    `yaml:"position" json:"-"`
}

type ScoringSpec struct {
	BasePoints           int `yaml:"base_points"`
	MistakePenaltyPoints int `yaml:"mistake_penalty_points"`
	ResetPenaltyPoints   int `yaml:"reset_penalty_points"`
}

// Text returns the line as it appears in the finished manifest.
func (l Line) Text() string {
	return strings.Repeat(" ", l.Indent) + l.Code
}

// LineByID returns the line with the given id.
func (l Level) LineByID(id string) (Line, bool) {
	for _, line := range l.Lines {
		if line.ID == id {
			return line, true
		}
	}
	return Line{}, false
}

// Solution returns the lines in ground-truth order.
func (l Level) Solution() []Line {
	out := make([]Line, len(l.Lines))
	for _, line := range l.Lines {
		if line.Position >= 0 && line.Position < len(out) {
			out[line.Position] = line
		}
	}
	return out
}

func (c Catalog) Validate() error {
	if c.Kind != CatalogKind {
		return fmt.Errorf("kind must be %q", CatalogKind)
	}
	if c.SchemaVersion == 0 {
		return fmt.Errorf("schema_version is required")
	}
	if c.SchemaVersion > SupportedSchemaVersion {
		return fmt.Errorf("unsupported catalog schema_version %d (max supported %d)", c.SchemaVersion, SupportedSchemaVersion)
	}
	if len(c.Levels) == 0 {
		return fmt.Errorf("levels must contain at least one level")
	}
	seen := map[string]struct{}{}
	for _, l := range c.Levels {
		if err := l.Validate(); err != nil {
			return fmt.Errorf("level %q: %w", l.LevelID, err)
		}
		if _, ok := seen[l.LevelID]; ok {
			return fmt.Errorf("duplicate level_id %q", l.LevelID)
		}
		seen[l.LevelID] = struct{}{}
	}
	return nil
}

// Validate checks the ground-truth invariants: unique line ids and positions
// forming a permutation of 0..N-1.
func (l Level) Validate() error {
	if !idPattern.MatchString(l.LevelID) {
		return fmt.Errorf("invalid level_id %q", l.LevelID)
	}
	if strings.TrimSpace(l.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if len(l.Lines) == 0 {
		return fmt.Errorf("lines must contain at least one line")
	}
	ids := map[string]struct{}{}
	positions := make([]bool, len(l.Lines))
	for _, line := range l.Lines {
		if err := validateLineID(line.ID); err != nil {
			return err
		}
		if _, ok := ids[line.ID]; ok {
			return fmt.Errorf("duplicate line id %q", line.ID)
		}
		ids[line.ID] = struct{}{}
		if strings.TrimSpace(line.Code) == "" {
			return fmt.Errorf("line %q code is required", line.ID)
		}
		if line.Indent < 0 {
			return fmt.Errorf("line %q indent must be >= 0", line.ID)
		}
		if line.Position < 0 || line.Position >= len(l.Lines) {
			return fmt.Errorf("line %q position %d out of range 0..%d", line.ID, line.Position, len(l.Lines)-1)
		}
		if positions[line.Position] {
			return fmt.Errorf("duplicate position %d", line.Position)
		}
		positions[line.Position] = true
	}
	if l.Scoring.BasePoints < 0 || l.Scoring.MistakePenaltyPoints < 0 || l.Scoring.ResetPenaltyPoints < 0 {
		return fmt.Errorf("scoring values must be >= 0")
	}
	return nil
}

func validateLineID(id string) error {
	if id == "" {
		return fmt.Errorf("lines[].id is required")
	}
	if !lineIDPattern.MatchString(id) {
		return fmt.Errorf("invalid line id %q", id)
	}
	if id == PoolZoneID || strings.HasPrefix(id, SlotIDPrefix) || strings.HasPrefix(id, PlacedIDPrefix) {
		return fmt.Errorf("line id %q collides with a reserved drop target id", id)
	}
	return nil
}
