package builder

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"safecss/internal/config"
	"safecss/internal/engine"
	"safecss/internal/ui"
)

// Result describes one file written by a task
type Result struct {
	Task         string
	Output       string
	Sources      int
	OriginalSize int64
	OutputSize   int64
	Compressed   []CompressedSize
	Merged       bool // merge only, nothing minified
	Skipped      bool // outputs were up to date
}

// Task merges and minifies the sources of one bundle
type Task struct {
	Name        string
	Config      *config.BuildConfig
	Engine      engine.Engine
	Charset     *Charset
	Compressors []*Compressor
	Quiet       bool

	// Files that decide whether outputs are stale besides the sources
	Inputs []string

	// Problems found while resolving sources that do not stop the task
	Warnings []string

	sourceDir string
	targetDir string
	files     []string
}

// NewTask resolves the sources of a bundle named finalFile. Explicit files
// must exist; include patterns are expanded, filtered by excludes and
// appended sorted by file name.
func NewTask(cfg *config.BuildConfig, finalFile string, sourceFiles, includes, excludes []string) (*Task, error) {
	e, err := engine.Lookup(cfg.Engine)
	if err != nil {
		return nil, err
	}
	cs, err := LookupCharset(cfg.Charset)
	if err != nil {
		return nil, err
	}

	t := &Task{
		Name:        finalFile,
		Config:      cfg,
		Engine:      e,
		Charset:     cs,
		Compressors: compressorsFor(cfg),
		sourceDir:   cfg.Path(cfg.SourceDir),
		targetDir:   cfg.Path(cfg.TargetDir),
	}

	seen := make(map[string]bool)
	add := func(path string) {
		if seen[path] {
			return
		}
		seen[path] = true
		if strings.EqualFold(filepath.Base(path), finalFile) {
			t.Warnings = append(t.Warnings, fmt.Sprintf("The source file [%s] has the same name as the final file", t.display(path)))
		}
		t.files = append(t.files, path)
	}

	for _, name := range sourceFiles {
		if containsGlobChars(name) {
			matches, err := ExpandGlob(t.sourceDir, name)
			if err != nil {
				return nil, fmt.Errorf("invalid source pattern %q: %w", name, err)
			}
			sort.Strings(matches)
			for _, m := range matches {
				add(filepath.Join(t.sourceDir, m))
			}
			continue
		}

		path := filepath.Join(t.sourceDir, filepath.FromSlash(name))
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			return nil, fmt.Errorf("the source file [%s] does not exist", t.display(path))
		}
		add(path)
	}

	if len(includes) > 0 {
		includeDir := cfg.Path(cfg.SourceIncludeDir)
		matches, err := ExpandIncludes(includeDir, includes, excludes)
		if err != nil {
			return nil, fmt.Errorf("failed to expand includes: %w", err)
		}
		sort.SliceStable(matches, func(i, j int) bool {
			return strings.ToLower(filepath.Base(matches[i])) < strings.ToLower(filepath.Base(matches[j]))
		})
		// Outputs of earlier builds are not sources
		skipTarget := t.targetDir != includeDir && within(includeDir, t.targetDir)
		for _, m := range matches {
			path := filepath.Join(includeDir, m)
			if skipTarget && within(t.targetDir, path) {
				continue
			}
			add(path)
		}
	}

	return t, nil
}

func compressorsFor(cfg *config.BuildConfig) []*Compressor {
	var compressors []*Compressor
	if cfg.Gzip {
		compressors = append(compressors, Gzip)
	}
	if cfg.Brotli {
		compressors = append(compressors, Brotli)
	}
	if cfg.Zstd > 0 {
		compressors = append(compressors, Zstd(cfg.Zstd))
	}
	return compressors
}

// Files returns the resolved source files in merge order
func (t *Task) Files() []string {
	return t.files
}

// Run executes the task
func (t *Task) Run(ctx context.Context) ([]Result, error) {
	if !t.Quiet {
		for _, w := range t.Warnings {
			ui.PrintWarning("%s", w)
		}
	}

	if len(t.files) == 0 {
		if !t.Quiet {
			ui.PrintWarning("No valid CSS source files found to process for %s", t.Name)
		}
		return nil, nil
	}

	if err := os.MkdirAll(t.targetDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create target directory: %w", err)
	}

	cfg := t.Config
	switch {
	case cfg.SkipMerge:
		t.info("Starting CSS [minify] task: %s", t.Name)
		var results []Result
		for _, file := range t.files {
			if err := ctx.Err(); err != nil {
				return results, err
			}
			target := filepath.Join(t.targetDir, t.subPath(file), cfg.OutputName(filepath.Base(file)))
			r, err := t.minify([]string{file}, target)
			if err != nil {
				return results, err
			}
			results = append(results, r)
		}
		return results, nil

	case cfg.SkipMinify:
		t.info("Starting CSS [merge] task: %s", t.Name)
		target := filepath.Join(t.targetDir, t.Name)
		r, err := t.merge(target)
		if err != nil {
			return nil, err
		}
		return []Result{r}, nil

	default:
		t.info("Starting CSS [merge, minify] task: %s", t.Name)
		target := filepath.Join(t.targetDir, cfg.OutputName(t.Name))
		var results []Result

		// The merged file is kept next to the minified one unless they share a name
		if !cfg.NoSuffix {
			r, err := t.merge(filepath.Join(t.targetDir, t.Name))
			if err != nil {
				return nil, err
			}
			results = append(results, r)
		}
		if err := ctx.Err(); err != nil {
			return results, err
		}

		r, err := t.minify(t.files, target)
		if err != nil {
			return results, err
		}
		return append(results, r), nil
	}
}

// subPath returns the directory of file relative to the source directory,
// or "" when file lives outside it.
func (t *Task) subPath(file string) string {
	rel, err := filepath.Rel(t.sourceDir, filepath.Dir(file))
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return ""
	}
	return rel
}

// within reports whether path lies inside dir
func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func (t *Task) merge(target string) (Result, error) {
	r := Result{Task: t.Name, Output: target, Sources: len(t.files), Merged: true}

	if t.upToDate([]string{target}, t.files) {
		r.Skipped = true
		t.info("Skipping the merged file [%s], it is up to date", t.display(target))
		return r, nil
	}

	data, err := readSources(t.files)
	if err != nil {
		return r, err
	}

	t.info("Creating the merged file [%s]", t.display(target))
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return r, err
	}
	if err := os.WriteFile(target, data, 0644); err != nil {
		return r, fmt.Errorf("failed to write %s: %w", target, err)
	}

	r.OriginalSize = int64(len(data))
	r.OutputSize = int64(len(data))
	return r, nil
}

func (t *Task) minify(sources []string, target string) (r Result, err error) {
	r = Result{Task: t.Name, Output: target, Sources: len(sources)}

	outputs := []string{target}
	for _, c := range t.Compressors {
		outputs = append(outputs, c.Path(target))
	}

	if t.upToDate(outputs, sources) {
		r.Skipped = true
		t.info("Skipping the minified file [%s], it is up to date", t.display(target))
		return r, nil
	}

	data, err := readSources(sources)
	if err != nil {
		return r, err
	}
	r.OriginalSize = int64(len(data))

	t.info("Creating the minified file [%s]", t.display(target))
	t.debug("Using %s engine", t.Engine.Name())

	defer func() {
		if err != nil {
			for _, o := range outputs {
				os.Remove(o)
			}
			err = fmt.Errorf("failed to minify the CSS file [%s]: %w", t.display(target), err)
		}
	}()

	text, err := t.Charset.Decode(data)
	if err != nil {
		return r, err
	}
	minified, err := t.Engine.Minify(text)
	if err != nil {
		return r, err
	}
	out, err := t.Charset.Encode(minified)
	if err != nil {
		return r, err
	}

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return r, err
	}
	if err := os.WriteFile(target, out, 0644); err != nil {
		return r, err
	}
	r.OutputSize = int64(len(out))

	if len(t.Compressors) > 0 {
		sizes, err := compressAll(t.Compressors, target, out)
		if err != nil {
			return r, err
		}
		r.Compressed = sizes
	}

	return r, nil
}

// readSources concatenates files, separating them with a newline when a
// file does not end with one.
func readSources(files []string) ([]byte, error) {
	var buf bytes.Buffer
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", f, err)
		}
		buf.Write(data)
		if len(data) > 0 && data[len(data)-1] != '\n' {
			buf.WriteByte('\n')
		}
	}
	return buf.Bytes(), nil
}

// upToDate reports whether incremental builds are on and every output is
// newer than every source and configuration input.
func (t *Task) upToDate(outputs, sources []string) bool {
	if !t.Config.Incremental {
		return false
	}

	var newest int64
	for _, in := range append(append([]string{}, sources...), t.Inputs...) {
		info, err := os.Stat(in)
		if err != nil {
			return false
		}
		if m := info.ModTime().UnixNano(); m > newest {
			newest = m
		}
	}

	for _, out := range outputs {
		info, err := os.Stat(out)
		if err != nil || info.ModTime().UnixNano() < newest {
			return false
		}
	}
	return true
}

func (t *Task) display(path string) string {
	if t.Config.Verbose {
		return path
	}
	return filepath.Base(path)
}

func (t *Task) info(format string, args ...interface{}) {
	if !t.Quiet {
		ui.PrintInfo(format, args...)
	}
}

func (t *Task) debug(format string, args ...interface{}) {
	if t.Config.Debug {
		ui.PrintDebug(format, args...)
	}
}
