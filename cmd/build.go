package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"safecss/internal/builder"
	"safecss/internal/config"
	"safecss/internal/ui"
)

var (
	buildDir    string
	buildForce  bool
	buildQuiet  bool
	buildEngine string
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Merge and minify the CSS bundles of a project",
	Long:  "Merge, minify and compress the CSS files configured in minify.properties",
	Run: func(cmd *cobra.Command, args []string) {
		if !buildQuiet {
			ui.PrintHeader(Version)
		}

		cfg, err := loadBuildConfig(buildDir)
		if err != nil {
			ui.PrintError("%v", err)
			os.Exit(1)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if err := runBuild(ctx, cfg, buildQuiet); err != nil {
			os.Exit(1)
		}
	},
}

func init() {
	buildCmd.Flags().StringVarP(&buildDir, "dir", "d", "", "Project directory (default: current directory)")
	buildCmd.Flags().BoolVarP(&buildForce, "force", "f", false, "Rebuild outputs even when they are up to date")
	buildCmd.Flags().BoolVarP(&buildQuiet, "quiet", "q", false, "Only print errors")
	buildCmd.Flags().StringVarP(&buildEngine, "engine", "e", "", "Override the configured minification engine")
	buildCmd.RegisterFlagCompletionFunc("engine", completeEngines)
	rootCmd.AddCommand(buildCmd)
}

// loadBuildConfig loads minify.properties from dir and applies the command
// line overrides.
func loadBuildConfig(dir string) (*config.BuildConfig, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		dir = wd
	}

	if !config.Exists(dir) {
		return nil, fmt.Errorf("no %s found in %s", config.PropertiesFile, dir)
	}

	cfg, err := config.Load(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", config.PropertiesFile, err)
	}

	if buildForce {
		cfg.Incremental = false
	}
	if buildEngine != "" {
		cfg.Engine = buildEngine
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// runBuild builds every task and reports the written files. Errors are
// printed before being returned.
func runBuild(ctx context.Context, cfg *config.BuildConfig, quiet bool) error {
	b := builder.New(cfg)
	b.Quiet = quiet

	results, err := b.Run(ctx)

	if !quiet {
		reportResults(cfg, results)
	}
	if err != nil {
		for _, line := range strings.Split(err.Error(), "\n") {
			ui.PrintError("%s", line)
		}
		return err
	}

	if !quiet {
		fmt.Println()
		fmt.Println(ui.Divider())
		fmt.Println()
		ui.PrintSuccess("Build complete!")
		fmt.Println()
	}
	return nil
}

func reportResults(cfg *config.BuildConfig, results []builder.Result) {
	if len(results) == 0 {
		return
	}

	fmt.Println()
	for _, r := range results {
		name := r.Output
		if rel, err := filepath.Rel(cfg.Dir, r.Output); err == nil {
			name = rel
		}

		switch {
		case r.Skipped:
			ui.PrintKeyValue(name, "up to date")
		case r.Merged:
			ui.PrintKeyValue(name, fmt.Sprintf("%s (merged %d files)", ui.FormatBytes(r.OutputSize), r.Sources))
		default:
			value := fmt.Sprintf("%s → %s (%s)", ui.FormatBytes(r.OriginalSize), ui.FormatBytes(r.OutputSize), ui.Ratio(r.OutputSize, r.OriginalSize))
			for _, c := range r.Compressed {
				value += fmt.Sprintf(", %s %s", c.Ext, ui.FormatBytes(c.Size))
			}
			ui.PrintKeyValue(name, value)
		}
	}
}
