package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"safecss/internal/config"
	"safecss/internal/ui"
)

var watchDir string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the CSS sources and rebuild on changes",
	Run: func(cmd *cobra.Command, args []string) {
		ui.PrintHeader(Version)

		cfg, err := loadBuildConfig(watchDir)
		if err != nil {
			ui.PrintError("%v", err)
			os.Exit(1)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		runBuild(ctx, cfg, false)

		fmt.Println()
		ui.PrintInfo("Watching for changes...")
		ui.PrintInfo("Press Ctrl+C to stop")
		fmt.Println()

		lastMod := time.Now()
		debounce := 500 * time.Millisecond
		ticker := time.NewTicker(500 * time.Millisecond)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				fmt.Println()
				return
			case <-ticker.C:
			}

			changed, newMod := hasChanges(cfg, lastMod)
			if !changed {
				continue
			}

			if time.Since(newMod) < debounce {
				continue
			}

			lastMod = time.Now()

			fmt.Println()
			ui.PrintInfo("Changes detected, rebuilding...")
			fmt.Println()

			// Properties may have changed too
			if reloaded, err := loadBuildConfig(cfg.Dir); err != nil {
				ui.PrintError("%v", err)
			} else {
				cfg = reloaded
				runBuild(ctx, cfg, false)
			}

			fmt.Println()
			ui.PrintInfo("Watching for changes...")
		}
	},
}

func init() {
	watchCmd.Flags().StringVarP(&watchDir, "dir", "d", "", "Project directory (default: current directory)")
	rootCmd.AddCommand(watchCmd)
}

// hasChanges reports whether any CSS source, the properties file or the
// bundle file changed after since, with the newest modification time seen.
func hasChanges(cfg *config.BuildConfig, since time.Time) (bool, time.Time) {
	var latestMod time.Time
	changed := false

	checkFile := func(path string) {
		info, err := os.Stat(path)
		if err != nil {
			return
		}
		if info.ModTime().After(since) {
			changed = true
		}
		if info.ModTime().After(latestMod) {
			latestMod = info.ModTime()
		}
	}

	target := cfg.Path(cfg.TargetDir)
	seen := make(map[string]bool)
	for _, dir := range []string{cfg.Path(cfg.SourceDir), cfg.Path(cfg.SourceIncludeDir)} {
		if seen[dir] {
			continue
		}
		seen[dir] = true

		filepath.Walk(dir, func(p string, i os.FileInfo, e error) error {
			if e != nil {
				return nil
			}
			if i.IsDir() {
				if p != dir && (strings.HasPrefix(i.Name(), ".") || p == target) {
					return filepath.SkipDir
				}
				return nil
			}
			if strings.EqualFold(filepath.Ext(p), ".css") {
				checkFile(p)
			}
			return nil
		})
	}

	checkFile(cfg.Path(config.PropertiesFile))
	if cfg.Bundles != "" {
		checkFile(cfg.Path(cfg.Bundles))
	}

	return changed, latestMod
}
