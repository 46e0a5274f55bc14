package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Config is the complete kenkudeck configuration.
type Config struct {
	Kenku   KenkuConfig    `yaml:"kenku"`
	Serial  SerialConfig   `yaml:"serial"`
	API     APIConfig      `yaml:"api"`
	Journal JournalConfig  `yaml:"journal"`
	Keys    map[string]Key `yaml:"keys"`
}

// KenkuConfig locates the Kenku FM remote API.
type KenkuConfig struct {
	URL       string  `yaml:"url"`
	Port      int     `yaml:"port"`
	Freshness Seconds `yaml:"freshness"` // how long fetched playback stays usable
	Timeout   Seconds `yaml:"timeout"`   // per-request timeout
}

// SerialConfig identifies the controller board.
type SerialConfig struct {
	Port    string  `yaml:"port"` // device path, or "auto" to detect
	Baud    int     `yaml:"baud"`
	Timeout Seconds `yaml:"timeout"` // read timeout
}

// APIConfig controls the local status API.
type APIConfig struct {
	Enabled      bool     `yaml:"enabled"`
	Address      string   `yaml:"address"`
	AllowOrigins []string `yaml:"allow_origins"` // empty allows any origin
}

// JournalConfig controls the instruction journal.
type JournalConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Key is the configuration of one instruction code.
type Key struct {
	Description string `yaml:"description"`
	Commands    Steps  `yaml:"commands"`
}

// Step is one configured command with its parameters. Params is never nil
// after decoding.
type Step struct {
	Name   string
	Params map[string]any
}

// AutoPort requests serial port detection.
const AutoPort = "auto"

// Defaults
const (
	DefaultKenkuURL   = "127.0.0.1"
	DefaultKenkuPort  = 3333
	DefaultBaud       = 9600
	DefaultAPIAddress = "127.0.0.1:8090"
)

// Seconds is a duration written as a (possibly fractional) number of seconds.
type Seconds float64

// Duration converts s to a time.Duration.
func (s Seconds) Duration() time.Duration {
	return time.Duration(float64(s) * float64(time.Second))
}

// Default returns the configuration used when no file overrides it.
func Default() *Config {
	return &Config{
		Kenku: KenkuConfig{
			URL:       DefaultKenkuURL,
			Port:      DefaultKenkuPort,
			Freshness: 1,
			Timeout:   5,
		},
		Serial: SerialConfig{
			Port:    AutoPort,
			Baud:    DefaultBaud,
			Timeout: 0.1,
		},
		API: APIConfig{
			Address: DefaultAPIAddress,
		},
		Keys: map[string]Key{},
	}
}

// Load reads the YAML file at path over the defaults, applies environment
// overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(expandHome(path))
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Parse decodes YAML bytes over the defaults without env overrides.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides
func applyEnvOverrides(cfg *Config) {
	if url := os.Getenv("KENKUDECK_KENKU_URL"); url != "" {
		cfg.Kenku.URL = url
	}
	if port := os.Getenv("KENKUDECK_KENKU_PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil {
			cfg.Kenku.Port = n
		}
	}
	if serialPort := os.Getenv("KENKUDECK_SERIAL_PORT"); serialPort != "" {
		cfg.Serial.Port = serialPort
	}
}

// Validate checks ranges and fills empty values with defaults.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Kenku.URL) == "" {
		c.Kenku.URL = DefaultKenkuURL
	}
	if c.Kenku.Port <= 0 || c.Kenku.Port > 65535 {
		return fmt.Errorf("kenku.port %d out of range", c.Kenku.Port)
	}
	if c.Kenku.Freshness < 0 {
		return fmt.Errorf("kenku.freshness must not be negative")
	}
	if c.Kenku.Timeout <= 0 {
		return fmt.Errorf("kenku.timeout must be positive")
	}
	if strings.TrimSpace(c.Serial.Port) == "" {
		c.Serial.Port = AutoPort
	}
	if c.Serial.Baud <= 0 {
		return fmt.Errorf("serial.baud must be positive")
	}
	if c.Serial.Timeout < 0 {
		return fmt.Errorf("serial.timeout must not be negative")
	}
	if c.API.Enabled && strings.TrimSpace(c.API.Address) == "" {
		c.API.Address = DefaultAPIAddress
	}
	if c.Journal.Enabled && strings.TrimSpace(c.Journal.Path) != "" {
		c.Journal.Path = expandHome(c.Journal.Path)
	}
	if len(c.Keys) == 0 {
		return errors.New("no keys configured")
	}
	return nil
}

// UnmarshalYAML accepts either the ordered list form
//
//	commands:
//	  - playlist_play: {id: abc}
//	  - playlist_pause
//
// or the mapping form name: params, decoded in document order.
func (s *Steps) UnmarshalYAML(node *yaml.Node) error {
	var steps Steps
	switch node.Kind {
	case yaml.SequenceNode:
		for _, item := range node.Content {
			step, err := decodeStepNode(item)
			if err != nil {
				return err
			}
			steps = append(steps, step)
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			step, err := decodeStep(node.Content[i], node.Content[i+1])
			if err != nil {
				return err
			}
			steps = append(steps, step)
		}
	case yaml.ScalarNode:
		if node.Tag != "!!null" {
			return fmt.Errorf("line %d: commands must be a list or a mapping", node.Line)
		}
	default:
		return fmt.Errorf("line %d: commands must be a list or a mapping", node.Line)
	}
	*s = steps
	return nil
}

// Steps is an ordered command list.
type Steps []Step

func decodeStepNode(item *yaml.Node) (Step, error) {
	switch item.Kind {
	case yaml.ScalarNode:
		return Step{Name: strings.TrimSpace(item.Value), Params: map[string]any{}}, nil
	case yaml.MappingNode:
		if len(item.Content) != 2 {
			return Step{}, fmt.Errorf("line %d: a command entry must have exactly one name", item.Line)
		}
		return decodeStep(item.Content[0], item.Content[1])
	default:
		return Step{}, fmt.Errorf("line %d: invalid command entry", item.Line)
	}
}

func decodeStep(name, value *yaml.Node) (Step, error) {
	step := Step{Name: strings.TrimSpace(name.Value), Params: map[string]any{}}
	if step.Name == "" {
		return Step{}, fmt.Errorf("line %d: empty command name", name.Line)
	}
	if value.Kind == yaml.ScalarNode && (value.Tag == "!!null" || value.Value == "") {
		return step, nil
	}
	if value.Kind != yaml.MappingNode {
		log.Warn().Int("line", value.Line).Str("command", step.Name).
			Msg("Command parameters are not a mapping, using none")
		return step, nil
	}
	if err := value.Decode(&step.Params); err != nil {
		return Step{}, fmt.Errorf("line %d: parameters of %s: %w", value.Line, step.Name, err)
	}
	return step, nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
