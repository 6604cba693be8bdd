// Package config loads and validates the flipper.yaml configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/flipper/internal/logging"
)

// DefaultPath is where commands look for the configuration file.
const DefaultPath = "flipper.yaml"

// tokenEnv is the fallback variable for the GitHub credential.
const tokenEnv = "GITHUB_TOKEN"

// Duration wraps time.Duration so YAML accepts strings like "6h" or "90m".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
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

// Std returns the plain time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the root of flipper.yaml.
type Config struct {
	Workspace WorkspaceConfig `yaml:"workspace"`

	// StateDir is flipper's own data directory for run archives and lock
	// files. It must stay outside the workspace work tree, otherwise its
	// contents would show up in the publish diff.
	StateDir string `yaml:"state_dir"`

	Schedule ScheduleConfig `yaml:"schedule"`
	Agent    AgentConfig    `yaml:"agent"`
	GitHub   GitHubConfig   `yaml:"github"`
	Publish  PublishConfig  `yaml:"publish"`
	Redis    RedisConfig    `yaml:"redis"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
}

// WorkspaceConfig locates the git checkout the pipeline works in.
type WorkspaceConfig struct {
	// Dir is the checkout root. It must already be a git work tree.
	Dir string `yaml:"dir"`

	// DataDir is the subdirectory receiving report artifacts.
	DataDir string `yaml:"data_dir"`
}

// ScheduleConfig sets the daemon cadence.
type ScheduleConfig struct {
	Every Duration `yaml:"every"`
}

// AgentConfig selects and parameterizes the agent step.
type AgentConfig struct {
	// Builtin runs the native scout. Defaults to true when no command
	// is configured.
	Builtin bool `yaml:"builtin"`

	// Command plus Args run an external executable as the agent.
	Command string            `yaml:"command"`
	Args    []string          `yaml:"args"`
	Env     map[string]string `yaml:"env"`

	// Timeout bounds one agent pass.
	Timeout Duration `yaml:"timeout"`

	// Params is a freeform map for agent tunables; the builtin scout
	// decodes it into ScoutParams.
	Params map[string]any `yaml:"params"`
}

// ScoutParams are the builtin agent's tunables.
type ScoutParams struct {
	// Queries overrides the GitHub search queries mined for keywords.
	Queries []string `mapstructure:"queries"`

	// DisableTrending turns off the github.com/trending page source.
	DisableTrending bool `mapstructure:"disable_trending"`

	// Sources selects trend sources by registry name. When set it
	// replaces the default source list and DisableTrending is ignored.
	Sources []string `mapstructure:"sources"`
}

// ScoutParams decodes the freeform params map into the typed tunables.
func (a AgentConfig) ScoutParams() (ScoutParams, error) {
	var p ScoutParams
	if len(a.Params) == 0 {
		return p, nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{Result: &p})
	if err != nil {
		return p, err
	}
	if err := dec.Decode(a.Params); err != nil {
		return p, fmt.Errorf("invalid agent params: %w", err)
	}
	return p, nil
}

// GitHubConfig carries the single credential the pipeline knows about.
type GitHubConfig struct {
	Token string `yaml:"token"`
}

// ResolvedToken returns the configured token, falling back to the
// GITHUB_TOKEN environment variable. The value must never be logged.
func (g GitHubConfig) ResolvedToken() string {
	if g.Token != "" {
		return g.Token
	}
	return os.Getenv(tokenEnv)
}

// PublishConfig shapes the commit and push step.
type PublishConfig struct {
	Prefix      string `yaml:"prefix"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`

	// Push defaults to true when omitted.
	Push *bool `yaml:"push"`

	Remote string `yaml:"remote"`
	Branch string `yaml:"branch"`
}

// PushEnabled reports whether the publisher should push after committing.
func (p PublishConfig) PushEnabled() bool {
	return p.Push == nil || *p.Push
}

// RedisConfig enables the redis-backed run store and lock when Addr is set.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Enabled reports whether redis is configured at all.
func (r RedisConfig) Enabled() bool { return r.Addr != "" }

// ServerConfig addresses the daemon's status API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LogConfig selects verbosity and encoding.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads the configuration file, applies defaults and validates.
// A missing file at the default path yields the default configuration;
// an explicitly requested file must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			cfg := &Config{}
			cfg.applyDefaults()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultStateDir is where flipper keeps its own state when the
// configuration does not name a directory. It sits in the home directory
// so nothing flipper owns ever lands inside the workspace work tree.
func DefaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".flipper"
	}
	return filepath.Join(home, ".flipper")
}

func (c *Config) applyDefaults() {
	if c.Workspace.Dir == "" {
		c.Workspace.Dir = "."
	}
	if c.Workspace.DataDir == "" {
		c.Workspace.DataDir = "data"
	}
	if c.StateDir == "" {
		c.StateDir = DefaultStateDir()
	}
	if c.Schedule.Every <= 0 {
		c.Schedule.Every = Duration(6 * time.Hour)
	}
	if c.Agent.Command == "" {
		c.Agent.Builtin = true
	}
	if c.Agent.Timeout <= 0 {
		// Keep agent passes well under the run lock TTL.
		c.Agent.Timeout = Duration(15 * time.Minute)
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
}

func (c *Config) validate() error {
	if c.Agent.Builtin && c.Agent.Command != "" {
		return fmt.Errorf("agent.builtin and agent.command are mutually exclusive")
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", string(logging.FormatText), string(logging.FormatJSON):
	default:
		return fmt.Errorf("log.format must be %q or %q", logging.FormatText, logging.FormatJSON)
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("redis.db must not be negative")
	}
	return nil
}
