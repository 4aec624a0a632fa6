// Package config loads the agent configuration with Viper. Values come from
// defaults, then the config file (JSON or YAML by extension), then
// PMAGENT_ environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	agenterrors "github.com/felixgeelhaar/pmagent/internal/errors"
	"github.com/felixgeelhaar/pmagent/internal/gateway"
	"github.com/felixgeelhaar/pmagent/internal/log"
	"github.com/felixgeelhaar/pmagent/internal/sprint"
)

// DefaultPath is the config file used when none is given
const DefaultPath = "config/agent_config.json"

// EnvPrefix prefixes environment overrides, e.g. PMAGENT_SPRINT_DURATION_DAYS
const EnvPrefix = "PMAGENT"

// TasksFile is the task store file name inside DataDir
const TasksFile = "tasks.json"

// Config holds the agent configuration.
type Config struct {
	SprintDurationDays  int            `mapstructure:"sprint_duration_days"`
	WorkHoursPerDay     int            `mapstructure:"work_hours_per_day"`
	Platforms           []string       `mapstructure:"platforms"`
	TeamMembers         []string       `mapstructure:"team_members"`
	CodeReviewThreshold int            `mapstructure:"code_review_threshold"`
	AutoAssignTasks     bool           `mapstructure:"auto_assign_tasks"`
	DataDir             string         `mapstructure:"data_dir"`
	ReportsDir          string         `mapstructure:"reports_dir"`
	Projects            ProjectsConfig `mapstructure:"projects"`
	Gateway             GatewayConfig  `mapstructure:"gateway"`
	Log                 LogConfig      `mapstructure:"log"`
	Export              ExportConfig   `mapstructure:"export"`
}

// ProjectsConfig locates the app codebases described to the advisor.
type ProjectsConfig struct {
	IOSPath     string `mapstructure:"ios_path"`
	AndroidPath string `mapstructure:"android_path"`
}

// GatewayConfig selects the text generation provider.
type GatewayConfig struct {
	Provider      string        `mapstructure:"provider"`
	Model         string        `mapstructure:"model"`
	Timeout       time.Duration `mapstructure:"timeout"`
	ProvidersFile string        `mapstructure:"providers_file"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ExportConfig holds settings for the PostgreSQL mirror.
type ExportConfig struct {
	PostgresDSN string `mapstructure:"postgres_dsn"`
}

// Load reads configuration from path and the environment. A missing file
// yields the defaults; an unreadable or unparsable one is a CONFIG-002 error.
func Load(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, loadError(path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, loadError(path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, loadError(path, err)
	}
	return &cfg, nil
}

// Default returns the configuration used when no file or environment
// override is present
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults always decode
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("sprint_duration_days", 14)
	v.SetDefault("work_hours_per_day", 6)
	v.SetDefault("platforms", []string{"ios", "android"})
	v.SetDefault("team_members", []string{"developer"})
	v.SetDefault("code_review_threshold", 100)
	v.SetDefault("auto_assign_tasks", true)
	v.SetDefault("data_dir", "data")
	v.SetDefault("reports_dir", "reports")
	v.SetDefault("projects.ios_path", "MindQuestApp")
	v.SetDefault("projects.android_path", "MindLabsQuestAndroid")
	v.SetDefault("gateway.provider", "anthropic")
	v.SetDefault("gateway.model", "claude-3-5-sonnet-20241022")
	v.SetDefault("gateway.timeout", gateway.DefaultTimeout)
	v.SetDefault("gateway.providers_file", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("export.postgres_dsn", "")
}

func loadError(path string, err error) error {
	return agenterrors.Wrap(agenterrors.ErrCodeConfigLoad, fmt.Sprintf("failed to load config %s", path), err).
		WithSuggestion("Check that the file is valid JSON or YAML").
		WithSuggestion("Remove the file to fall back to defaults")
}

// Validate checks the values the agent cannot run without
func (c *Config) Validate() error {
	if c.SprintDurationDays <= 0 || c.WorkHoursPerDay <= 0 {
		return agenterrors.NewInvalidCapacityError(c.SprintDurationDays, c.WorkHoursPerDay)
	}
	var problems []string
	if c.DataDir == "" {
		problems = append(problems, "data_dir cannot be empty")
	}
	if c.ReportsDir == "" {
		problems = append(problems, "reports_dir cannot be empty")
	}
	if c.Gateway.Timeout < 0 {
		problems = append(problems, "gateway.timeout cannot be negative")
	}
	var level log.Level
	if err := level.Set(c.Log.Level); err != nil {
		problems = append(problems, "log.level: "+err.Error())
	}
	if f := strings.ToLower(c.Log.Format); f != "text" && f != "json" {
		problems = append(problems, fmt.Sprintf("log.format %q must be text or json", c.Log.Format))
	}
	if len(problems) > 0 {
		return agenterrors.New(agenterrors.ErrCodeConfigInvalid, "invalid configuration: "+strings.Join(problems, "; "))
	}
	return nil
}

// Capacity returns the sprint capacity settings
func (c *Config) Capacity() sprint.Capacity {
	return sprint.Capacity{DurationDays: c.SprintDurationDays, HoursPerDay: c.WorkHoursPerDay}
}

// GatewaySettings returns the provider selection
func (c *Config) GatewaySettings() gateway.Settings {
	return gateway.Settings{
		Provider:      c.Gateway.Provider,
		Model:         c.Gateway.Model,
		Timeout:       c.Gateway.Timeout,
		ProvidersFile: c.Gateway.ProvidersFile,
	}
}

// TasksPath returns the task store file
func (c *Config) TasksPath() string {
	return filepath.Join(c.DataDir, TasksFile)
}

// Save writes cfg to path. The format follows the extension.
func Save(cfg *Config, path string) error {
	v := viper.New()

	v.Set("sprint_duration_days", cfg.SprintDurationDays)
	v.Set("work_hours_per_day", cfg.WorkHoursPerDay)
	v.Set("platforms", cfg.Platforms)
	v.Set("team_members", cfg.TeamMembers)
	v.Set("code_review_threshold", cfg.CodeReviewThreshold)
	v.Set("auto_assign_tasks", cfg.AutoAssignTasks)
	v.Set("data_dir", cfg.DataDir)
	v.Set("reports_dir", cfg.ReportsDir)
	v.Set("projects.ios_path", cfg.Projects.IOSPath)
	v.Set("projects.android_path", cfg.Projects.AndroidPath)
	v.Set("gateway.provider", cfg.Gateway.Provider)
	v.Set("gateway.model", cfg.Gateway.Model)
	v.Set("gateway.timeout", cfg.Gateway.Timeout.String())
	v.Set("gateway.providers_file", cfg.Gateway.ProvidersFile)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.format", cfg.Log.Format)
	v.Set("export.postgres_dsn", cfg.Export.PostgresDSN)

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return agenterrors.NewFileWriteError(path, err)
	}
	if err := v.WriteConfigAs(path); err != nil {
		return agenterrors.NewFileWriteError(path, err)
	}
	return nil
}
