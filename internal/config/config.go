package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/spf13/viper"

	"autograde/internal/paths"
)

// Config represents the complete grading engine configuration
type Config struct {
	Version int `json:"version" mapstructure:"version"`

	Toolchain ToolchainConfig `json:"toolchain" mapstructure:"toolchain"`
	Runner    RunnerConfig    `json:"runner" mapstructure:"runner"`
	Prompt    PromptConfig    `json:"prompt" mapstructure:"prompt"`
	Logging   LoggingConfig   `json:"logging" mapstructure:"logging"`
}

// ToolchainConfig contains overrides for locating the external toolchain.
// Empty values mean "resolve from PATH".
type ToolchainConfig struct {
	JavacPath string `json:"javacPath" mapstructure:"javacPath"`
	JavaPath  string `json:"javaPath" mapstructure:"javaPath"`
	// LibDir holds jars (JUnit console launcher and friends) added to the
	// classpath. Relative paths resolve against the project root.
	LibDir string `json:"libDir" mapstructure:"libDir"`
}

// RunnerConfig contains subprocess execution limits
type RunnerConfig struct {
	CompileTimeoutMs int `json:"compileTimeoutMs" mapstructure:"compileTimeoutMs"`
	RunTimeoutMs     int `json:"runTimeoutMs" mapstructure:"runTimeoutMs"`
	// OutputCapBytes bounds captured stdout/stderr per stream; anything past
	// the cap is dropped and the result is flagged truncated.
	OutputCapBytes int `json:"outputCapBytes" mapstructure:"outputCapBytes"`
}

// PromptConfig controls feedback prompt assembly
type PromptConfig struct {
	// TruncateBytes bounds any single prompt message body.
	TruncateBytes int `json:"truncateBytes" mapstructure:"truncateBytes"`
	// SystemMessage is the instructor persona prepended to failure prompts.
	SystemMessage string `json:"systemMessage" mapstructure:"systemMessage"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultSystemMessage is the instructor persona used when none is configured.
const DefaultSystemMessage = "You are a teaching assistant helping a student " +
	"understand why their submission did not meet a requirement. Be specific, " +
	"point at the relevant code, and do not write the solution for them."

// DefaultConfig returns the built-in configuration
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Toolchain: ToolchainConfig{
			LibDir: "lib",
		},
		Runner: RunnerConfig{
			CompileTimeoutMs: 30000,
			RunTimeoutMs:     10000,
			OutputCapBytes:   1 << 20,
		},
		Prompt: PromptConfig{
			TruncateBytes: 8000,
			SystemMessage: DefaultSystemMessage,
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// LoadConfig loads configuration from <root>/.autograde/config.json with
// AUTOGRADE_* environment overrides
func LoadConfig(root string) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("version", defaults.Version)
	v.SetDefault("toolchain.libDir", defaults.Toolchain.LibDir)
	v.SetDefault("runner.compileTimeoutMs", defaults.Runner.CompileTimeoutMs)
	v.SetDefault("runner.runTimeoutMs", defaults.Runner.RunTimeoutMs)
	v.SetDefault("runner.outputCapBytes", defaults.Runner.OutputCapBytes)
	v.SetDefault("prompt.truncateBytes", defaults.Prompt.TruncateBytes)
	v.SetDefault("prompt.systemMessage", defaults.Prompt.SystemMessage)
	v.SetDefault("logging.format", defaults.Logging.Format)
	v.SetDefault("logging.level", defaults.Logging.Level)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(paths.WorkDir(root))

	v.SetEnvPrefix("AUTOGRADE")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// Missing config file falls through to defaults + env.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to <root>/.autograde/config.json
func (c *Config) Save(root string) error {
	dir := paths.WorkDir(root)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(paths.ConfigFile(root), data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != 1 {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	if c.Runner.CompileTimeoutMs <= 0 {
		return &ConfigError{Field: "runner.compileTimeoutMs", Message: "must be positive"}
	}
	if c.Runner.RunTimeoutMs <= 0 {
		return &ConfigError{Field: "runner.runTimeoutMs", Message: "must be positive"}
	}
	if c.Runner.OutputCapBytes <= 0 {
		return &ConfigError{Field: "runner.outputCapBytes", Message: "must be positive"}
	}
	return nil
}

// CompileTimeout returns the compile deadline as a duration.
func (c *Config) CompileTimeout() time.Duration {
	return time.Duration(c.Runner.CompileTimeoutMs) * time.Millisecond
}

// RunTimeout returns the execution deadline as a duration.
func (c *Config) RunTimeout() time.Duration {
	return time.Duration(c.Runner.RunTimeoutMs) * time.Millisecond
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
