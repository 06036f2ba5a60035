// Package engine selects the CSS minifier used by a build.
package engine

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/dchest/cssmin"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"

	"safecss/internal/minifier"
)

// Default is the engine used when none is configured
const Default = "safe"

// ErrUnknownEngine is returned by Lookup for names nobody registered
var ErrUnknownEngine = errors.New("unknown css engine")

// Engine minifies a complete CSS document
type Engine interface {
	Name() string
	Minify(src []byte) ([]byte, error)
}

var (
	mu      sync.RWMutex
	engines = make(map[string]Engine)
)

// Register makes an engine available by name, replacing any previous one
func Register(name string, e Engine) {
	mu.Lock()
	defer mu.Unlock()
	engines[name] = e
}

// Lookup returns the engine registered under name. An empty name selects Default.
func Lookup(name string) (Engine, error) {
	if name == "" {
		name = Default
	}
	mu.RLock()
	defer mu.RUnlock()
	e, ok := engines[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, name)
	}
	return e, nil
}

// Names returns the registered engine names in sorted order
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(engines))
	for name := range engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	Register("safe", Safe{})
	Register("tdewolff", NewTdewolff())
	Register("cssmin", CSSMin{})
}

// Safe strips comments and whitespace only. It never fails.
type Safe struct{}

func (Safe) Name() string { return "safe" }

func (Safe) Minify(src []byte) ([]byte, error) {
	return minifier.MinifyBytes(src), nil
}

// Tdewolff rewrites values and drops redundant syntax using a full CSS parser
type Tdewolff struct {
	m *minify.M
}

// NewTdewolff returns a Tdewolff engine with its own minify.M
func NewTdewolff() *Tdewolff {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	return &Tdewolff{m: m}
}

func (t *Tdewolff) Name() string { return "tdewolff" }

func (t *Tdewolff) Minify(src []byte) ([]byte, error) {
	var out bytes.Buffer
	if err := t.m.Minify("text/css", &out, bytes.NewReader(src)); err != nil {
		return nil, fmt.Errorf("tdewolff: %w", err)
	}
	return out.Bytes(), nil
}

// CSSMin is a port of the YUI compressor CSS rules
type CSSMin struct{}

func (CSSMin) Name() string { return "cssmin" }

func (CSSMin) Minify(src []byte) ([]byte, error) {
	return cssmin.Minify(src), nil
}
