package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"safecss/internal/engine"
)

// PropertiesFile is the build configuration file looked up in a project directory
const PropertiesFile = "minify.properties"

// MaxZstdLevel is the highest zstd level accepted by the zstd property
const MaxZstdLevel = 22

// BuildConfig represents the minify.properties configuration
type BuildConfig struct {
	// Dir is the directory the properties file was loaded from. Relative
	// paths below are resolved against it.
	Dir string

	SourceDir        string
	SourceIncludeDir string

	// Explicit source files, merged in the given order
	SourceFiles []string

	// Glob patterns (*, **) resolved against SourceIncludeDir
	Includes []string
	Excludes []string

	TargetDir string
	FinalFile string
	Suffix    string
	NoSuffix  bool

	SkipMerge  bool
	SkipMinify bool

	Charset string
	Engine  string

	Gzip   bool
	Brotli bool
	Zstd   int

	Incremental bool

	// Path of an optional YAML bundle file
	Bundles string

	Verbose bool
	Debug   bool
}

// Load loads the build configuration from minify.properties in dir
func Load(dir string) (*BuildConfig, error) {
	props, err := ParseProperties(filepath.Join(dir, PropertiesFile))
	if err != nil {
		return nil, err
	}
	return FromProperties(dir, props)
}

// FromProperties builds and validates a BuildConfig from parsed properties
func FromProperties(dir string, props Properties) (*BuildConfig, error) {
	sourceDir := props.GetWithDefault("source-dir", ".")

	cfg := &BuildConfig{
		Dir:              dir,
		SourceDir:        sourceDir,
		SourceIncludeDir: props.GetWithDefault("source-include-dir", sourceDir),
		SourceFiles:      props.GetList("source-files"),
		Includes:         props.GetList("includes"),
		Excludes:         props.GetList("excludes"),
		TargetDir:        props.GetWithDefault("target-dir", "build"),
		FinalFile:        props.GetWithDefault("final-file", "style.css"),
		Suffix:           props.GetWithDefault("suffix", ".min"),
		NoSuffix:         props.GetBool("nosuffix"),
		SkipMerge:        props.GetBool("skip-merge"),
		SkipMinify:       props.GetBool("skip-minify"),
		Charset:          props.GetWithDefault("charset", "utf-8"),
		Engine:           props.GetWithDefault("engine", engine.Default),
		Gzip:             props.GetBool("gzip"),
		Brotli:           props.GetBool("brotli"),
		Incremental:      props.GetBoolWithDefault("incremental", true),
		Bundles:          props.Get("bundles"),
		Verbose:          props.GetBool("verbose"),
		Debug:            props.GetBool("debug"),
	}

	level, err := props.GetInt("zstd", 0)
	if err != nil {
		return nil, err
	}
	cfg.Zstd = level

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks option combinations that cannot produce a build
func (c *BuildConfig) Validate() error {
	if len(c.SourceFiles) == 0 && len(c.Includes) == 0 && c.Bundles == "" {
		return fmt.Errorf("missing required field: one of source-files, includes or bundles")
	}
	if c.SkipMerge && c.SkipMinify {
		return fmt.Errorf("skip-merge and skip-minify cannot both be set")
	}
	if c.Zstd < 0 || c.Zstd > MaxZstdLevel {
		return fmt.Errorf("invalid zstd level %d: must be between 0 and %d", c.Zstd, MaxZstdLevel)
	}
	if _, err := engine.Lookup(c.Engine); err != nil {
		return err
	}
	return nil
}

// Path resolves p against the configuration directory
func (c *BuildConfig) Path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Dir, p)
}

// OutputName returns the minified file name for a source or merged file name
func (c *BuildConfig) OutputName(name string) string {
	if c.NoSuffix {
		return name
	}
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + c.Suffix + ext
}

// String lists the resolved options, one per line
func (c *BuildConfig) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "source-dir=%s\n", c.SourceDir)
	fmt.Fprintf(&b, "source-include-dir=%s\n", c.SourceIncludeDir)
	fmt.Fprintf(&b, "source-files=%s\n", strings.Join(c.SourceFiles, ", "))
	fmt.Fprintf(&b, "includes=%s\n", strings.Join(c.Includes, ", "))
	fmt.Fprintf(&b, "excludes=%s\n", strings.Join(c.Excludes, ", "))
	fmt.Fprintf(&b, "target-dir=%s\n", c.TargetDir)
	fmt.Fprintf(&b, "final-file=%s\n", c.FinalFile)
	fmt.Fprintf(&b, "suffix=%s nosuffix=%t\n", c.Suffix, c.NoSuffix)
	fmt.Fprintf(&b, "skip-merge=%t skip-minify=%t\n", c.SkipMerge, c.SkipMinify)
	fmt.Fprintf(&b, "charset=%s engine=%s\n", c.Charset, c.Engine)
	fmt.Fprintf(&b, "gzip=%t brotli=%t zstd=%d\n", c.Gzip, c.Brotli, c.Zstd)
	fmt.Fprintf(&b, "incremental=%t bundles=%s", c.Incremental, c.Bundles)
	return b.String()
}

// Exists checks if minify.properties exists in the directory
func Exists(dir string) bool {
	return FileExists(filepath.Join(dir, PropertiesFile))
}
