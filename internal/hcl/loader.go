package hcl

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/ximsweep/internal/ctxlog"
	"github.com/vk/ximsweep/internal/fsutil"
	"github.com/vk/ximsweep/internal/preset"
)

// ErrDuplicatePreset is returned when two catalog blocks share a name.
var ErrDuplicatePreset = errors.New("duplicate preset")

// Loader reads preset catalogs from HCL files.
type Loader struct{}

// NewLoader creates a new catalog loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every .hcl file under paths, each of which may be a file or a
// directory, and returns the presets they declare in file order.
func (l *Loader) Load(ctx context.Context, paths ...string) ([]preset.Definition, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL catalog loader started.", "path_count", len(paths))

	hclFiles, err := l.findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	parser := hclparse.NewParser()
	evalCtx := newEvalContext()
	seen := make(map[string]string)
	var defs []preset.Definition

	for _, file := range hclFiles {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		for _, block := range root.Presets {
			if prev, ok := seen[block.Name]; ok {
				return nil, fmt.Errorf("%w %q in %s, first declared in %s", ErrDuplicatePreset, block.Name, file, prev)
			}
			def, err := translatePreset(block, file)
			if err != nil {
				return nil, err
			}
			seen[block.Name] = file
			defs = append(defs, def)
			logger.Debug("Loaded preset.", "preset", def.Name, "file", file, "combinations", def.Options.Size())
		}
	}

	logger.Debug("HCL catalog loading complete.", "presets", len(defs))
	return defs, nil
}

// findAllHCLFiles walks all given paths and returns a flat, de-duplicated list
// of the .hcl files found.
func (l *Loader) findAllHCLFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})

	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("error accessing preset path %s: %w", path, err)
		}
		files, err := fsutil.FindFilesByExtension(path, ".hcl")
		if err != nil {
			return nil, fmt.Errorf("error walking preset path %s: %w", path, err)
		}
		for _, f := range files {
			if _, wasSeen := seen[f]; !wasSeen {
				allFiles = append(allFiles, f)
				seen[f] = struct{}{}
			}
		}
	}
	return allFiles, nil
}
