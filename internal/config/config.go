package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration decodes YAML strings like "2s" or "1500ms". yaml.v3 has no
// native time.Duration support.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if raw == "" {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

type Config struct {
	ListenAddr    string          `yaml:"listen_addr"`
	DB            DBConfig        `yaml:"db"`
	Redis         RedisConfig     `yaml:"redis"`
	ScorecardPath string          `yaml:"scorecard_path"`
	Auth          AuthConfig      `yaml:"auth"`
	Review        ReviewConfig    `yaml:"review"`
	Intake        IntakeConfig    `yaml:"intake"`
	RateLimit     RateLimitConfig `yaml:"rate_limit"`
}

type DBConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr string   `yaml:"addr"`
	TTL  Duration `yaml:"ttl"`
}

type AuthConfig struct {
	Token string `yaml:"token"`
}

type ReviewConfig struct {
	Channel      string   `yaml:"channel"`
	PollInterval Duration `yaml:"poll_interval"`
}

type IntakeConfig struct {
	StepDelay Duration `yaml:"step_delay"`
}

type RateLimitConfig struct {
	Capacity     int      `yaml:"capacity"`
	RefillWindow Duration `yaml:"refill_window"`
}

func Load(path string) (Config, error) {
	// #nosec G304 -- path is operator-provided config path.
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	expanded := os.ExpandEnv(string(raw))
	expanded = strings.ReplaceAll(expanded, "\r\n", "\n")

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Default is the zero-setup configuration: in-memory everything, open
// auth, built-in scorecard.
func Default() Config {
	return Config{
		ListenAddr: ":8080",
		Review:     ReviewConfig{Channel: "risk-review", PollInterval: Duration(2 * time.Second)},
		Intake:     IntakeConfig{StepDelay: Duration(1500 * time.Millisecond)},
	}
}

func (c Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen_addr is required")
	}

	switch c.DB.Driver {
	case "", "sqlite", "postgres":
	default:
		return fmt.Errorf("db.driver must be sqlite or postgres, got %q", c.DB.Driver)
	}
	if c.DB.Driver != "" && c.DB.DSN == "" {
		return fmt.Errorf("db.dsn is required when db.driver is set")
	}

	if c.Redis.TTL < 0 {
		return fmt.Errorf("redis.ttl must not be negative")
	}
	if c.Review.PollInterval < 0 {
		return fmt.Errorf("review.poll_interval must not be negative")
	}
	if c.Intake.StepDelay < 0 {
		return fmt.Errorf("intake.step_delay must not be negative")
	}
	if c.RateLimit.Capacity < 0 {
		return fmt.Errorf("rate_limit.capacity must not be negative")
	}
	if c.RateLimit.Capacity > 0 && c.RateLimit.RefillWindow <= 0 {
		return fmt.Errorf("rate_limit.refill_window is required when rate_limit.capacity is set")
	}

	return nil
}
