package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/gographer/gographer/config"
	"github.com/gographer/gographer/engineerr"
	"github.com/gographer/gographer/grapher"
	"github.com/gographer/gographer/logging"
	"github.com/gographer/gographer/matcher"
)

var (
	outputPath string
	threshold  float64
)

var rootCmd = &cobra.Command{
	Use:   "gographer <SAMPLE_PATH> [REFERENCE_PATH]...",
	Short: "Compare a sample Go binary's functions to a set of reference binaries by control flow similarity",
	Long: `gographer disassembles a sample binary and a list of reference binaries,
builds a control flow graph per recovered function, and reports the
best-matching reference function for each sample function above a
similarity threshold.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          validateArgs,
	RunE:          runCompare,
}

// validateArgs replaces cobra.MinimumNArgs(1) so that a missing
// SAMPLE_PATH surfaces as an *engineerr.InvalidArgument — and therefore
// exit code 64 via exitCodeFor — rather than a bare cobra error that
// exitCodeFor's default branch would otherwise map to 1.
func validateArgs(cmd *cobra.Command, args []string) error {
	if len(args) < 1 {
		return &engineerr.InvalidArgument{Field: "args", Reason: "SAMPLE_PATH is required"}
	}
	return nil
}

func init() {
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "path of the output JSON report")
	rootCmd.Flags().Float64VarP(&threshold, "threshold", "t", config.Default().DefaultThreshold, "value at which matches are considered significant")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func runCompare(cmd *cobra.Command, args []string) error {
	if threshold < 0 || threshold > 1 {
		return &engineerr.InvalidArgument{Field: "threshold", Reason: "must be in [0,1]"}
	}

	samplePath := args[0]
	referencePaths := args[1:]

	log := logging.New(logging.DefaultConfig())
	log.Info().Str("sample", samplePath).Int("references", len(referencePaths)).Msg("starting comparison")

	targets := make([]grapher.Target, 0, len(referencePaths)+1)
	for _, p := range referencePaths {
		targets = append(targets, grapher.Target{Name: filepath.Base(p), Path: p})
	}
	targets = append(targets, grapher.Target{Name: filepath.Base(samplePath), Path: samplePath})

	g := grapher.New(threshold, true, grapher.WithConfig(config.Default()), grapher.WithLogger(log))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	disassemblies, err := g.GenerateGraphs(ctx, targets)
	if err != nil {
		return err
	}

	sampleIdx := -1
	for i, d := range disassemblies {
		if d.Path == samplePath {
			sampleIdx = i
			break
		}
	}
	if sampleIdx < 0 {
		return &engineerr.UnsupportedBinaryFormat{Path: samplePath, Reason: "sample disassembly missing from generated set"}
	}
	sample := disassemblies[sampleIdx]
	references := append(disassemblies[:sampleIdx:sampleIdx], disassemblies[sampleIdx+1:]...)

	report, err := g.Compare(sample, references)
	if err != nil {
		return err
	}

	if outputPath != "" {
		data, err := report.ToJSON()
		if err != nil {
			return &engineerr.IoError{Path: outputPath, Reason: "failed to encode report", Err: err}
		}
		if err := os.WriteFile(outputPath, data, 0o644); err != nil {
			return &engineerr.IoError{Path: outputPath, Reason: "failed to write report", Err: err}
		}
		return nil
	}

	printTree(cmd, report)
	return nil
}

func printTree(cmd *cobra.Command, report *matcher.CompareReport) {
	title := color.New(color.FgHiWhite, color.Bold)
	dest := color.New(color.FgCyan)
	simGood := color.New(color.FgGreen)
	simBad := color.New(color.FgYellow)
	method := color.New(color.FgHiBlack)

	title.Fprintf(cmd.OutOrStdout(), "%s\n", report.SampleName)
	for i, bm := range report.Matches {
		branch := "├─"
		if i == len(report.Matches)-1 {
			branch = "└─"
		}
		simColor := simBad
		if bm.Similarity >= 0.8 {
			simColor = simGood
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s ", branch, dest.Sprint(bm.Dest))
		simColor.Fprintf(cmd.OutOrStdout(), "aggregate=%.6f\n", bm.Similarity)

		for j, mm := range bm.Matches {
			mbranch := "│  ├─"
			if i == len(report.Matches)-1 {
				mbranch = "   ├─"
			}
			if j == len(bm.Matches)-1 {
				if i == len(report.Matches)-1 {
					mbranch = "   └─"
				} else {
					mbranch = "│  └─"
				}
			}
			method.Fprintf(cmd.OutOrStdout(), "%s %s -> %s (0x%x -> 0x%x) sim=%.6f\n",
				mbranch, mm.OldName, mm.ResolvedName, mm.MalwareOffset, mm.CleanOffset, mm.Similarity)
		}
	}
}

// exitCodeFor maps the engine's structured error taxonomy to the exit
// codes documented in §6: 1 unsupported binary, 2 I/O error, 64 bad
// usage, 1 for anything else the engine could not classify.
func exitCodeFor(err error) int {
	var unsupported *engineerr.UnsupportedBinaryFormat
	var ioErr *engineerr.IoError
	var invalidArg *engineerr.InvalidArgument

	switch {
	case errors.As(err, &unsupported):
		return 1
	case errors.As(err, &ioErr):
		return 2
	case errors.As(err, &invalidArg):
		return 64
	default:
		return 1
	}
}
