package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/yangreactor/internal/ctxlog"
	"github.com/specialistvlad/yangreactor/internal/fsutil"
	"github.com/specialistvlad/yangreactor/internal/hcl_adapter"
	"github.com/specialistvlad/yangreactor/internal/stmt"
)

// Parser turns the contents of one file into statement trees.
type Parser interface {
	Parse(ctx context.Context, filename string, src []byte) ([]*stmt.Node, hcl.Diagnostics)
}

// Loader dispatches files to parsers by extension. The HCL parser caches
// files by name, so a Loader should not be reused to reload changed files.
type Loader struct {
	parsers map[string]Parser
	files   map[string]*hcl.File
}

// NewLoader creates a loader for .hcl, .yaml, .yml and .json files.
func NewLoader() *Loader {
	l := &Loader{
		parsers: make(map[string]Parser),
		files:   make(map[string]*hcl.File),
	}
	l.Register(".hcl", hcl_adapter.NewLoader())
	l.Register(".yaml", YAML{})
	l.Register(".yml", YAML{})
	l.Register(".json", JSON{})
	return l
}

// Register installs p for files ending in ext, replacing any parser
// registered for it before.
func (l *Loader) Register(ext string, p Parser) {
	l.parsers[ext] = p
}

// Extensions returns the registered extensions in lexical order.
func (l *Loader) Extensions() []string {
	out := make([]string, 0, len(l.parsers))
	for ext := range l.parsers {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// Files returns the contents of every file read so far, for rendering
// diagnostics with source snippets.
func (l *Loader) Files() map[string]*hcl.File {
	return l.files
}

// Load reads every source file under paths. Directories are searched
// recursively for registered extensions. Diagnostics from all files are
// collected; if any is an error, Load returns them as an hcl.Diagnostics
// error and no statements.
func (l *Loader) Load(ctx context.Context, paths ...string) ([]*stmt.Node, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Source loader started.", "path_count", len(paths))

	files, err := fsutil.CollectFiles(paths, l.Extensions()...)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no source files found in %v", paths)
	}
	logger.Debug("Discovered source files.", "count", len(files))

	var sources []*stmt.Node
	var diags hcl.Diagnostics
	for _, file := range files {
		nodes, fileDiags := l.loadFile(ctx, file)
		diags = append(diags, fileDiags...)
		sources = append(sources, nodes...)
	}
	if diags.HasErrors() {
		return nil, diags
	}

	logger.Debug("Source loading complete.", "files", len(files), "sources", len(sources))
	return sources, nil
}

func (l *Loader) loadFile(ctx context.Context, filename string) ([]*stmt.Node, hcl.Diagnostics) {
	p, ok := l.parsers[filepath.Ext(filename)]
	if !ok {
		return nil, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Unsupported source file",
			Detail:   fmt.Sprintf("%s does not have one of the extensions %v.", filename, l.Extensions()),
		}}
	}
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Failed to read source file",
			Detail:   err.Error(),
		}}
	}
	l.files[filename] = &hcl.File{Bytes: src}

	nodes, diags := p.Parse(ctx, filename, src)
	if diags.HasErrors() {
		return nil, diags
	}
	for _, n := range nodes {
		if err := n.Validate(); err != nil {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Malformed statement tree",
				Detail:   err.Error(),
				Subject:  n.Source.Ptr(),
			})
		}
	}
	return nodes, diags
}
