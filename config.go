package lightborne

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath      = "lightborne.yaml"
	DefaultPreviewDistance = 10000
)

type Config struct {
	Level      LevelConfig      `yaml:"level"`
	Simulation SimulationConfig `yaml:"simulation"`
	Debug      DebugConfig      `yaml:"debug"`
}

type LevelConfig struct {
	Index int    `yaml:"index"`
	Path  string `yaml:"path"`
}

type SimulationConfig struct {
	FixedHz         int     `yaml:"fixed_hz"`
	LightSpeed      float32 `yaml:"light_speed"`
	PreviewDistance float32 `yaml:"preview_distance"`
}

type DebugConfig struct {
	Log      bool `yaml:"log"`
	Snapshot bool `yaml:"snapshot"`
}

// DefaultConfig is used for every value a config file leaves out.
func DefaultConfig() Config {
	return Config{
		Simulation: SimulationConfig{
			FixedHz:         DefaultFixedHz,
			LightSpeed:      DefaultLightSpeed,
			PreviewDistance: DefaultPreviewDistance,
		},
	}
}

func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	return ParseConfig(data)
}

func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch {
	case c.Level.Path == "":
		return fmt.Errorf("%w: level.path is required", ErrInvalidConfig)
	case c.Level.Index < 0:
		return fmt.Errorf("%w: level.index must not be negative", ErrInvalidConfig)
	case c.Simulation.FixedHz <= 0:
		return fmt.Errorf("%w: simulation.fixed_hz must be positive", ErrInvalidConfig)
	case c.Simulation.LightSpeed <= 0:
		return fmt.Errorf("%w: simulation.light_speed must be positive", ErrInvalidConfig)
	case c.Simulation.PreviewDistance <= 0:
		return fmt.Errorf("%w: simulation.preview_distance must be positive", ErrInvalidConfig)
	}
	return nil
}
