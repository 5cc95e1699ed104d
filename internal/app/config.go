package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config controls runtime behavior for the playground.
type Config struct {
	LogPath      string   `env:"KUBELEARN_LOG"`
	DataDir      string   `env:"KUBELEARN_DATA_DIR"`
	LevelsDir    string   `env:"KUBELEARN_LEVELS_DIR"`
	Seed         uint64   `env:"KUBELEARN_SEED"`
	HTTPAddr     string   `env:"KUBELEARN_HTTP_ADDR"`
	Headless     bool     `env:"KUBELEARN_HEADLESS"`
	DebugLayout  bool     `env:"KUBELEARN_DEBUG_LAYOUT"`
	ASCIIOnly    bool     `env:"KUBELEARN_ASCII"`
	DemoScenario string   `env:"KUBELEARN_DEMO"`
	UI           UIConfig `envPrefix:"KUBELEARN_UI_"`
}

type UIConfig struct {
	StyleVariant string `env:"STYLE"`
	MotionLevel  string `env:"MOTION"`
	MouseScope   string `env:"MOUSE"`
}

// DefaultConfig leaves ui preferences empty so stored settings can fill them.
func DefaultConfig() Config {
	return Config{}
}

// LoadEnv overlays KUBELEARN_* variables onto cfg. Unset variables leave
// fields untouched.
func LoadEnv(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("read environment: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	c.UI.StyleVariant = strings.TrimSpace(c.UI.StyleVariant)
	switch c.UI.StyleVariant {
	case "", "kube_blue", "high_contrast", "retro_terminal":
	default:
		return fmt.Errorf("invalid ui style variant %q", c.UI.StyleVariant)
	}
	if c.UI.StyleVariant == "" {
		c.UI.StyleVariant = "kube_blue"
	}
	switch c.UI.MotionLevel {
	case "", "off", "reduced", "full":
	default:
		return fmt.Errorf("invalid ui motion level %q", c.UI.MotionLevel)
	}
	if c.UI.MotionLevel == "" {
		c.UI.MotionLevel = "full"
	}
	switch c.UI.MouseScope {
	case "", "on", "off":
	default:
		return fmt.Errorf("invalid ui mouse scope %q", c.UI.MouseScope)
	}
	if c.UI.MouseScope == "" {
		c.UI.MouseScope = "on"
	}

	if c.Headless && strings.TrimSpace(c.HTTPAddr) == "" {
		return errors.New("headless mode needs an http address")
	}

	if c.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return errors.New("cannot resolve user home directory")
		}
		c.DataDir = filepath.Join(home, ".local", "share", "kubelearn")
	}

	return nil
}

// applySettings fills ui preferences the caller left empty from stored values.
func (c *Config) applySettings(values map[string]string) {
	if c.UI.StyleVariant == "" {
		c.UI.StyleVariant = values[settingStyle]
	}
	if c.UI.MotionLevel == "" {
		c.UI.MotionLevel = values[settingMotion]
	}
	if c.UI.MouseScope == "" {
		c.UI.MouseScope = values[settingMouse]
	}
}

func (c Config) settings() map[string]string {
	return map[string]string{
		settingStyle:  c.UI.StyleVariant,
		settingMotion: c.UI.MotionLevel,
		settingMouse:  c.UI.MouseScope,
	}
}

const (
	settingStyle  = "ui.style_variant"
	settingMotion = "ui.motion_level"
	settingMouse  = "ui.mouse_scope"
)
