package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"autograde/internal/config"
	"autograde/internal/errors"
	"autograde/internal/grade"
	"autograde/internal/output"
	"autograde/internal/project"
)

var (
	gradeManifest string
	gradeFormat   string
	gradeOut      string
)

var gradeCmd = &cobra.Command{
	Use:   "grade",
	Short: "Grade a project against an assignment manifest",
	Long: `Grade runs every requirement in the manifest against the project and
prints the results.

Results go to stdout as a table by default; use --format json for the
machine-readable envelope, or --out to also write it to a file. An output
path ending in .gz is gzip-compressed:

  autograde grade -m assignment.toml
  autograde grade -m assignment.yaml --format json --out results.json.gz`,
	RunE: runGrade,
}

func init() {
	gradeCmd.Flags().StringVarP(&gradeManifest, "manifest", "m", "", "Assignment manifest (.toml, .yaml)")
	gradeCmd.Flags().StringVar(&gradeFormat, "format", "human", "Output format (json, human)")
	gradeCmd.Flags().StringVar(&gradeOut, "out", "", "Also write the JSON envelope to this file")
	_ = gradeCmd.MarkFlagRequired("manifest")
	rootCmd.AddCommand(gradeCmd)
}

func runGrade(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	manifest, err := config.LoadManifest(gradeManifest)
	if err != nil {
		return err
	}

	proj, err := project.FromPath(root, logger)
	if err != nil {
		return err
	}

	graders, err := grade.FromManifest(manifest, proj, cfg, logger)
	if err != nil {
		return err
	}

	ctx := context.Background()
	results := make([]*grade.GradeResult, 0, len(graders))
	for i, g := range graders {
		result, err := g.Run(ctx)
		if err != nil {
			// A grading failure for one requirement should not lose the
			// others: record it as a zero grade and keep going, except for
			// setup problems that doom every remaining requirement too.
			if code := errors.CodeOf(err); code == errors.RuntimeUnavailable || code == errors.ConfigError {
				return err
			}
			req := manifest.Requirements[i]
			logger.Error("requirement could not be graded", map[string]interface{}{
				"requirement": req.Name, "error": err.Error(),
			})
			result = &grade.GradeResult{
				Requirement: req.Name,
				OutOf:       req.OutOf,
				Reason:      err.Error(),
			}
		}
		results = append(results, result)
	}

	env := output.NewEnvelope(root, results)
	if gradeOut != "" {
		if err := output.WriteFile(gradeOut, env); err != nil {
			return err
		}
		logger.Info("results written", map[string]interface{}{"path": gradeOut})
	}

	switch gradeFormat {
	case "json":
		return output.WriteJSON(os.Stdout, env)
	case "human":
		return output.RenderTable(os.Stdout, env)
	default:
		return fmt.Errorf("unknown format %q (want json or human)", gradeFormat)
	}
}
