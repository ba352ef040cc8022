package preset

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/vk/ximsweep/internal/ctxlog"
	"github.com/vk/ximsweep/internal/matrix"
)

var (
	// ErrUnknownMode is returned for a mode that matches no preset.
	ErrUnknownMode = errors.New("illegal mode")
	// ErrInvalidName is returned for a preset name that is not a single
	// safe path component.
	ErrInvalidName = errors.New("invalid preset name")
)

var namePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// CheckName reports whether name can be embedded in result and scratch
// directory names.
func CheckName(name string) error {
	if name == "." || name == ".." || !namePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// DateFormat is the date stamp embedded in result directory names.
const DateFormat = "20060102"

// Preset is the resolved configuration of one sweep. It is built once and
// never modified.
type Preset struct {
	Mode       string
	ResultDir  string
	ScratchDir string
	Options    matrix.OptionTable
	// Source is "builtin" or the catalog file the preset came from.
	Source string
}

// Definition is a named option table from outside the built-in catalog.
type Definition struct {
	Name        string
	Description string
	Options     matrix.OptionTable
	Source      string
}

// Resolver maps mode tokens to presets.
type Resolver struct {
	projectRoot    string
	experimentsDir string
	now            func() time.Time
	defs           map[string]Definition
}

// Option customizes a Resolver.
type Option func(*Resolver)

// WithClock replaces time.Now. Resolve only uses the date.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

// WithDefinitions registers user-defined presets.
func WithDefinitions(defs ...Definition) Option {
	return func(r *Resolver) {
		for _, d := range defs {
			r.defs[d.Name] = d
		}
	}
}

// NewResolver creates a Resolver. Result directories are created under
// projectRoot, scratch directories under experimentsDir.
func NewResolver(projectRoot, experimentsDir string, opts ...Option) *Resolver {
	r := &Resolver{
		projectRoot:    projectRoot,
		experimentsDir: experimentsDir,
		now:            time.Now,
		defs:           make(map[string]Definition),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the preset for mode. It touches no files.
func (r *Resolver) Resolve(ctx context.Context, mode string) (*Preset, error) {
	logger := ctxlog.FromContext(ctx)
	if mode == "" {
		return nil, fmt.Errorf("%w: mode is empty", ErrUnknownMode)
	}
	if err := CheckName(mode); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnknownMode, err)
	}

	var (
		options matrix.OptionTable
		source  = "builtin"
	)
	if def, ok := r.defs[mode]; ok {
		if _, shadowed := builtin(mode); shadowed {
			logger.Warn("Catalog preset overrides built-in mode.", "mode", mode, "source", def.Source)
		}
		options, source = def.Options.Clone(), def.Source
	} else {
		var ok bool
		if options, ok = builtin(mode); !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
		}
	}

	if err := options.Validate(); err != nil {
		return nil, fmt.Errorf("preset %q: %w", mode, err)
	}

	p := &Preset{
		Mode:       mode,
		ResultDir:  filepath.Join(r.projectRoot, fmt.Sprintf("xim_%s_preset-%s", r.now().Format(DateFormat), mode)),
		ScratchDir: filepath.Join(r.experimentsDir, "running-preset-"+mode),
		Options:    options,
		Source:     source,
	}
	for _, pair := range [][2]string{{r.projectRoot, p.ResultDir}, {r.experimentsDir, p.ScratchDir}} {
		if !within(pair[0], pair[1]) {
			return nil, fmt.Errorf("%w: %q resolves outside %s", ErrInvalidName, mode, pair[0])
		}
	}
	logger.Info("Mode resolved.", "mode", mode, "source", source, "result_dir", p.ResultDir, "scratch_dir", p.ScratchDir, "combinations", options.Size())
	return p, nil
}

// Modes lists the names of all presets the resolver knows: built-in modes
// first, then catalog definitions.
func (r *Resolver) Modes() []string {
	modes := BuiltinModes()
	for _, name := range slices.Sorted(maps.Keys(r.defs)) {
		if _, ok := builtin(name); !ok {
			modes = append(modes, name)
		}
	}
	return modes
}

// within reports whether dir is strictly below root.
func within(root, dir string) bool {
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}
