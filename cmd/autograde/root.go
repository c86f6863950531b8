package main

import (
	"os"

	"github.com/spf13/cobra"

	"autograde/internal/config"
	"autograde/internal/logging"
	"autograde/internal/version"
)

var (
	// projectFlag is the CLI --project flag value
	projectFlag string
	// logLevelFlag is the CLI --log-level flag value
	logLevelFlag string
	// logFormatFlag is the CLI --log-format flag value
	logFormatFlag string
)

var rootCmd = &cobra.Command{
	Use:   "autograde",
	Short: "autograde - automated grading for source projects",
	Long: `autograde runs instructor-defined requirements against a student
submission: output comparisons against expected transcripts, JUnit test
runs, and structural queries over the source itself. Results are scored
per requirement and bundled with a feedback transcript.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("autograde version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVarP(&projectFlag, "project", "p", ".",
		"Path to the project to grade")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "",
		"Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "",
		"Log format: human, json")
}

// projectRoot resolves the --project flag to an absolute path.
func projectRoot() string {
	root := projectFlag
	if abs, err := os.Getwd(); err == nil && root == "." {
		return abs
	}
	return root
}

// loadConfig loads the project configuration, with CLI flags taking
// precedence over the config file for logging settings.
func loadConfig(root string) (*config.Config, error) {
	cfg, err := config.LoadConfig(root)
	if err != nil {
		return nil, err
	}
	if logLevelFlag != "" {
		cfg.Logging.Level = logLevelFlag
	}
	if logFormatFlag != "" {
		cfg.Logging.Format = logFormatFlag
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *logging.Logger {
	return logging.NewLogger(logging.Config{
		Format: logging.Format(cfg.Logging.Format),
		Level:  logging.ParseLevel(cfg.Logging.Level),
	})
}
