// Package cli implements the cobra command-line surface for the
// deploy engine: argument parsing, help text, and the exit-code
// translation spec §6/§7 describe. It owns no deploy logic itself —
// every flag maps onto a deploy.Plan field and a call into
// internal/deploy.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/cdqt/internal/deploy"
	"github.com/blackwell-systems/cdqt/internal/deployerr"
)

var (
	flagBin       string
	flagOut       string
	flagQMLRoots  []string
	flagLanguages string
	flagOverlays  []string
	flagVerbose   bool
	flagJSON      bool
	flagReport    string
	flagDryRun    bool

	rootCmd = &cobra.Command{
		Use:   "cdqt",
		Short: "Package a toolkit-based executable into a self-contained deployment tree",
		Long: `cdqt resolves a UI-toolkit executable's shared-library dependencies,
stages them alongside its plugins, UI-modules, and translations, and
link-edits the result into a distribution tree that runs without the
build host's toolkit installation.

Exit codes:
  0  success
  1  unhandled error during staging, or an unresolvable toolkit dependency
  2  invalid arguments, missing input, undetectable format, or a missing
     required external tool`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runDeploy,
	}
)

func init() {
	rootCmd.Flags().StringVar(&flagBin, "bin", "", "path to the main executable to deploy (required)")
	rootCmd.Flags().StringVar(&flagOut, "out", "", "output directory root (required)")
	rootCmd.Flags().StringArrayVar(&flagQMLRoots, "qml-root", nil, "UI-module source root (repeatable)")
	rootCmd.Flags().StringVar(&flagLanguages, "languages", "", "comma-separated language codes to stage translations for")
	rootCmd.Flags().StringArrayVar(&flagOverlays, "overlay", nil, "directory tree to merge into the output root (repeatable)")
	rootCmd.Flags().BoolVar(&flagVerbose, "verbose", false, "trace each dependency resolution pass, plugin stage, and UI-module copy")
	rootCmd.Flags().BoolVar(&flagJSON, "json", false, "emit the run summary as JSON to stdout instead of human text")
	rootCmd.Flags().StringVar(&flagReport, "report", "", "write a full JSON run report to this path")
	rootCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "resolve and print the dependency list without staging anything")

	_ = rootCmd.MarkFlagRequired("bin")
	_ = rootCmd.MarkFlagRequired("out")
}

// Execute runs the root command and returns the process exit code the
// caller should use.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		if de, ok := deployerr.As(err); ok {
			fmt.Fprintf(os.Stderr, "Error: %v\n", de)
			return de.Kind.ExitCode()
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	return 0
}

func runDeploy(cmd *cobra.Command, args []string) error {
	plan := deploy.Plan{
		BinPath:  flagBin,
		OutRoot:  flagOut,
		QMLRoots: flagQMLRoots,
		Overlays: flagOverlays,
		Verbose:  flagVerbose || os.Getenv("VERBOSE-DEPLOY") != "",
		DryRun:   flagDryRun,
		Quiet:    flagJSON,
	}
	if flagLanguages != "" {
		plan.Languages = splitCSV(flagLanguages)
	}

	rep, err := deploy.Run(plan, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	if flagJSON {
		data, err := rep.JSON()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
	}

	if flagReport != "" {
		data, err := rep.JSON()
		if err != nil {
			return err
		}
		if err := os.WriteFile(flagReport, data, 0644); err != nil {
			return deployerr.Wrap(deployerr.KindStagingIO, err, "write report %s", flagReport)
		}
	}

	return nil
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
