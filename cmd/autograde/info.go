package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"autograde/internal/lang"
	"autograde/internal/project"
)

var infoDescribe bool

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "List the project's indexed source files",
	Long: `Info indexes the project and lists each source file with its logical
name, the name graders use to refer to it. With --describe the structural
summary of every file is printed as well.`,
	RunE: runInfo,
}

func init() {
	infoCmd.Flags().BoolVar(&infoDescribe, "describe", false, "Print the structural summary of each file")
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	proj, err := project.FromPath(root, logger)
	if err != nil {
		return err
	}

	ctx := context.Background()
	tw := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LOGICAL NAME\tPATH\tLANGUAGE\tKIND")
	for _, f := range proj.Files() {
		kind := "unknown"
		if lang.IsAvailable() {
			if k, err := f.Kind(ctx); err == nil {
				kind = k.String()
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", f.LogicalName(), f.RelPath(), f.Language(), kind)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if infoDescribe {
		fmt.Println()
		fmt.Print(proj.Describe(ctx))
	}
	return nil
}
