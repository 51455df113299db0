package main

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/gogpu/gpubridge/config"
	"github.com/gogpu/gpubridge/derive"
	"github.com/gogpu/gpubridge/internal/gosrc"
	"github.com/gogpu/gpubridge/layout"
)

// errStale is returned in check mode when an output differs from what
// would be generated.
var errStale = errors.New("layoutgen: generated files are stale; run go generate")

// unitCacheSize bounds the units kept between runs in watch mode.
const unitCacheSize = 512

type options struct {
	naga   bool
	glslc  bool
	check  bool
	dir    string
	logger *slog.Logger
}

type generator struct {
	cfg      *config.Config
	opts     options
	compiler *derive.Compiler
	registry *derive.Registry
}

func newGenerator(cfg *config.Config, opts options) (*generator, error) {
	conv, err := cfg.Convention()
	if err != nil {
		return nil, err
	}
	if opts.logger == nil {
		opts.logger = slog.Default()
	}
	if opts.dir == "" {
		opts.dir = "."
	}
	validators := []derive.Validator{derive.ReflectValidator{}}
	if opts.naga {
		validators = append(validators, derive.NagaValidator{})
	}
	copts := []derive.Option{derive.WithValidators(validators...), derive.WithLogger(opts.logger), derive.WithCache(unitCacheSize)}
	if opts.glslc {
		copts = append(copts, derive.WithGLSLValidator(&derive.GLSLValidator{}))
	}
	return &generator{
		cfg:      cfg,
		opts:     opts,
		compiler: derive.New(conv, copts...),
		registry: derive.NewRegistry(),
	}, nil
}

type output struct {
	path string
	data []byte
}

// run derives every package matching patterns and writes, or in check
// mode verifies, their outputs.
func (g *generator) run(patterns []string) error {
	pkgs, err := gosrc.Load(g.opts.dir, patterns...)
	if err != nil {
		return err
	}
	if len(pkgs) == 0 {
		g.opts.logger.Warn("no definitions found", "patterns", patterns)
		return nil
	}
	var stale []string
	for _, p := range pkgs {
		outs, err := g.outputs(p)
		if err != nil {
			return fmt.Errorf("%s: %w", p.Path, err)
		}
		for _, o := range outs {
			changed, err := g.emit(o)
			if err != nil {
				return err
			}
			if changed {
				stale = append(stale, o.path)
			}
		}
		g.opts.logger.Info("derived", "package", p.Path, "structs", p.Library.Len())
	}
	hits, misses := g.compiler.CacheStats()
	g.opts.logger.Debug("unit cache", "hits", hits, "misses", misses)
	if g.opts.check && len(stale) > 0 {
		return fmt.Errorf("%w: %v", errStale, stale)
	}
	return nil
}

// outputs compiles one package and returns the files it generates.
func (g *generator) outputs(p *gosrc.Package) ([]output, error) {
	out, err := g.compiler.CompileLibrary(p.Library, p.Name)
	if err != nil {
		return nil, err
	}
	layouts := make([]*layout.Layout, len(out.Units))
	for i, u := range out.Units {
		if _, err := g.registry.Put(u); err != nil {
			return nil, err
		}
		layouts[i] = u.Layout
	}
	if err := g.cfg.Check(layouts); err != nil {
		return nil, err
	}
	catalog, err := derive.CatalogFile(p.Name, p.Library.Definitions())
	if err != nil {
		return nil, err
	}

	shaders := filepath.Join(p.Dir, g.cfg.Outputs.Shaders)
	outs := []output{
		{filepath.Join(p.Dir, "zz_layout.go"), out.Go},
		{filepath.Join(p.Dir, "zz_catalog.go"), catalog},
		{filepath.Join(shaders, p.Name+".glsl"), []byte(out.GLSL)},
		{filepath.Join(shaders, p.Name+".wgsl"), []byte(out.WGSL)},
	}

	if g.cfg.Outputs.Manifest != "" {
		path := filepath.Join(p.Dir, g.cfg.Outputs.Manifest)
		if err := g.verifyManifest(path, out.Units); err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := derive.WriteManifest(&buf, derive.Manifest{Units: entries(out.Units)}); err != nil {
			return nil, err
		}
		outs = append(outs, output{path, buf.Bytes()})
	}
	return outs, nil
}

// entries returns the manifest entries of units sorted by name.
func entries(units []*derive.Unit) []derive.ManifestEntry {
	es := make([]derive.ManifestEntry, len(units))
	for i, u := range units {
		es[i] = u.Entry()
	}
	slices.SortFunc(es, func(a, b derive.ManifestEntry) int { return cmp.Compare(a.Name, b.Name) })
	return es
}

// verifyManifest checks units against a previously written manifest and
// logs the definitions whose fingerprint changed.
func (g *generator) verifyManifest(path string, units []*derive.Unit) error {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()
	m, err := derive.ReadManifest(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := m.Verify(units); err != nil {
		return err
	}
	for _, name := range m.Changed(units) {
		g.opts.logger.Info("layout changed", "struct", name)
	}
	return nil
}

// emit writes o when its content differs from the file on disk, and
// reports whether it differed. In check mode nothing is written.
func (g *generator) emit(o output) (bool, error) {
	old, err := os.ReadFile(o.path)
	if err == nil && bytes.Equal(old, o.data) {
		return false, nil
	}
	if g.opts.check {
		g.opts.logger.Warn("stale", "file", o.path)
		return true, nil
	}
	if err := os.MkdirAll(filepath.Dir(o.path), 0o755); err != nil {
		return false, err
	}
	if err := os.WriteFile(o.path, o.data, 0o644); err != nil {
		return false, err
	}
	g.opts.logger.Debug("wrote", "file", o.path, "bytes", len(o.data))
	return true, nil
}
