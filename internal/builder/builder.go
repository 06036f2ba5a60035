package builder

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"safecss/internal/config"
	"safecss/internal/ui"
)

// Builder runs every CSS task of a project
type Builder struct {
	Config *config.BuildConfig
	Quiet  bool
}

// New creates a new Builder
func New(cfg *config.BuildConfig) *Builder {
	return &Builder{Config: cfg}
}

// Tasks creates one task per bundle, or a single task from the source
// options when no bundle file is configured.
func (b *Builder) Tasks() ([]*Task, error) {
	cfg := b.Config
	inputs := []string{cfg.Path(config.PropertiesFile)}

	var tasks []*Task
	if cfg.Bundles != "" {
		bundlePath := cfg.Path(cfg.Bundles)
		bundles, err := config.LoadBundles(bundlePath)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, bundlePath)

		for _, bundle := range bundles {
			t, err := NewTask(cfg, bundle.Name, bundle.Files, nil, nil)
			if err != nil {
				return nil, fmt.Errorf("bundle %s: %w", bundle.Name, err)
			}
			tasks = append(tasks, t)
		}
	} else {
		t, err := NewTask(cfg, cfg.FinalFile, cfg.SourceFiles, cfg.Includes, cfg.Excludes)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}

	for _, t := range tasks {
		t.Quiet = b.Quiet
		for _, in := range inputs {
			if config.FileExists(in) {
				t.Inputs = append(t.Inputs, in)
			}
		}
	}
	return tasks, nil
}

// Run runs all tasks concurrently. Results are ordered by task name then
// output path; errors from every failed task are joined.
func (b *Builder) Run(ctx context.Context) ([]Result, error) {
	if b.Config.Debug && !b.Quiet {
		for _, line := range strings.Split(b.Config.String(), "\n") {
			ui.PrintDebug("%s", line)
		}
	}

	tasks, err := b.Tasks()
	if err != nil {
		return nil, err
	}

	type outcome struct {
		results []Result
		err     error
	}

	done := make(chan outcome, len(tasks))
	for _, t := range tasks {
		t := t
		go func() {
			results, err := t.Run(ctx)
			done <- outcome{results: results, err: err}
		}()
	}

	var all []Result
	var errs []error
	for range tasks {
		o := <-done
		all = append(all, o.results...)
		if o.err != nil {
			errs = append(errs, o.err)
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Task != all[j].Task {
			return all[i].Task < all[j].Task
		}
		return all[i].Output < all[j].Output
	})

	return all, errors.Join(errs...)
}
