package scaler

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values can be written in the
// usual "10s" / "1m30s" form.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Thresholds groups the rate cutoffs driving tier selection.
type Thresholds struct {
	Lower      float64 `yaml:"lower"`      // req/s above which the middle tier is preferred
	Upper      float64 `yaml:"upper"`      // req/s above which the highest tier is preferred
	Hysteresis float64 `yaml:"hysteresis"` // guard band subtracted from both cutoffs (must satisfy 0 < H < lower)
}

// Tier describes one discrete fleet capacity class. Tiers are listed in
// the config in ascending capacity order; the first entry is the tier
// selected at zero load.
type Tier struct {
	Name           string   `yaml:"name"`
	InstanceIDs    []string `yaml:"instance_ids"`
	TargetGroupARN string   `yaml:"target_group_arn"` // load balancer target the tier attaches to
}

// Config holds all process configuration, fixed at startup.
type Config struct {
	Region     string     `yaml:"region"`
	Listen     string     `yaml:"listen"`
	Thresholds Thresholds `yaml:"thresholds"`
	Cooldown   Duration   `yaml:"cooldown"` // minimum time between performed transitions
	Window     Duration   `yaml:"window"`   // sliding window length for rate estimation
	Tiers      []Tier     `yaml:"tiers"`
}

// DefaultConfig returns the configuration defaults; tiers have no
// default and must come from the config file.
func DefaultConfig() Config {
	return Config{
		Region: "ap-south-1",
		Listen: ":8080",
		Thresholds: Thresholds{
			Lower:      5,
			Upper:      10,
			Hysteresis: 2,
		},
		Cooldown: Duration(10 * time.Second),
		Window:   Duration(60 * time.Second),
	}
}

// LoadConfig reads a YAML config file over the defaults and validates it.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate returns an error if the config cannot drive the control loop.
func (c Config) Validate() error {
	if c.Region == "" {
		return fmt.Errorf("region must not be empty")
	}
	if c.Listen == "" {
		return fmt.Errorf("listen address must not be empty")
	}
	t := c.Thresholds
	if t.Lower <= 0 || t.Upper <= t.Lower {
		return fmt.Errorf("thresholds must satisfy 0 < lower < upper, got lower=%v upper=%v", t.Lower, t.Upper)
	}
	if t.Hysteresis <= 0 || t.Hysteresis >= t.Lower {
		return fmt.Errorf("hysteresis must satisfy 0 < hysteresis < lower, got %v", t.Hysteresis)
	}
	if c.Cooldown <= 0 {
		return fmt.Errorf("cooldown must be positive, got %s", c.Cooldown.Std())
	}
	if c.Window <= 0 {
		return fmt.Errorf("window must be positive, got %s", c.Window.Std())
	}
	if len(c.Tiers) != 3 {
		return fmt.Errorf("exactly 3 tiers required, got %d", len(c.Tiers))
	}
	seen := make(map[string]bool, len(c.Tiers))
	for i, tier := range c.Tiers {
		if tier.Name == "" {
			return fmt.Errorf("tier %d: name must not be empty", i)
		}
		if seen[tier.Name] {
			return fmt.Errorf("tier %d: duplicate name %q", i, tier.Name)
		}
		seen[tier.Name] = true
		if len(tier.InstanceIDs) == 0 {
			return fmt.Errorf("tier %q: instance_ids must not be empty", tier.Name)
		}
		for _, id := range tier.InstanceIDs {
			if id == "" {
				return fmt.Errorf("tier %q: empty instance id", tier.Name)
			}
		}
	}
	return nil
}
