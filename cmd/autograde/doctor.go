package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"autograde/internal/errors"
	"autograde/internal/lang"
	"autograde/internal/runner"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose toolchain and configuration issues",
	Long: `Doctor checks that everything grading needs is in place: the Java
toolchain, the structural query support, and the project configuration.
Each failed check comes with a suggested fix.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	failures := 0

	tc, err := runner.FindToolchain(cfg)
	if err != nil {
		failures++
		fmt.Printf("✘ java toolchain: %v\n", err)
		for _, fix := range errors.GetSuggestedFixes(errors.CodeOf(err)) {
			if fix.Command != "" {
				fmt.Printf("  fix: %s\n", fix.Command)
			} else if fix.URL != "" {
				fmt.Printf("  fix: install %s (%s)\n", fix.Tool, fix.URL)
			}
		}
	} else {
		fmt.Printf("✔ javac: %s\n", tc.Javac)
		fmt.Printf("✔ java:  %s\n", tc.Java)
	}

	if lang.IsAvailable() {
		fmt.Println("✔ structural queries: available")
	} else {
		failures++
		fmt.Println("✘ structural queries: this build was compiled without cgo;")
		fmt.Println("  query requirements and file classification will not work")
	}

	if err := cfg.Validate(); err != nil {
		failures++
		fmt.Printf("✘ configuration: %v\n", err)
	} else {
		fmt.Println("✔ configuration: valid")
	}

	if failures > 0 {
		return fmt.Errorf("%d check(s) failed", failures)
	}
	fmt.Println("All checks passed.")
	return nil
}
