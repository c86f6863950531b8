package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"autograde/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration for the project",
	Long: `Init writes the default configuration to <project>/.autograde/config.json
so timeouts, toolchain paths and prompt settings can be adjusted per
project.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	cfg := config.DefaultConfig()
	if err := cfg.Save(root); err != nil {
		return err
	}
	fmt.Printf("Wrote %s/.autograde/config.json\n", root)
	return nil
}
