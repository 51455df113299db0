package derive

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gogpu/gpubridge"
	"github.com/gogpu/gpubridge/internal/lru"
	"github.com/gogpu/gpubridge/layout"
)

// Unit is the derived output of one definition: its layout and the host and
// shader declarations generated from it.
type Unit struct {
	Name string

	// Fingerprint identifies the definition and convention the unit was
	// derived from. Equal fingerprints imply identical units.
	Fingerprint string

	Convention layout.Convention
	Layout     *layout.Layout

	// Deps lists nested struct names, innermost first.
	Deps []string

	GLSL string
	WGSL string
	Go   string
}

// Equal reports whether u and o carry identical derived output.
func (u *Unit) Equal(o *Unit) bool {
	return u.Name == o.Name &&
		u.Fingerprint == o.Fingerprint &&
		u.Layout.String() == o.Layout.String() &&
		u.GLSL == o.GLSL &&
		u.WGSL == o.WGSL &&
		u.Go == o.Go
}

// Fingerprint returns the identity key of s derived under c.
func Fingerprint(s *layout.Struct, c layout.Convention) string {
	h := sha256.New()
	h.Write([]byte(layout.Canonical(s)))
	h.Write([]byte{'\n'})
	h.Write([]byte(c.String()))
	return hex.EncodeToString(h.Sum(nil))
}

// Compiler derives units from definitions and cross-validates every unit
// against independent shader-side layout computations.
type Compiler struct {
	conv       layout.Convention
	validators []Validator
	glsl       *GLSLValidator
	logger     *slog.Logger
	cache      *lru.Cache[string, *Unit]
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithValidators replaces the default validators. It also turns off the
// GLSL check; pass WithGLSLValidator after it to keep one.
func WithValidators(v ...Validator) Option {
	return func(c *Compiler) {
		c.validators = v
		c.glsl = nil
	}
}

// WithGLSLValidator sets the validator CompileLibrary runs on the combined
// GLSL file. Nil turns the check off.
func WithGLSLValidator(v *GLSLValidator) Option {
	return func(c *Compiler) { c.glsl = v }
}

// WithLogger sets the logger. By default the package logger is used.
func WithLogger(l *slog.Logger) Option {
	return func(c *Compiler) { c.logger = l }
}

// WithCache keeps up to n validated units keyed by fingerprint, so a
// definition compiled again unchanged skips emission and validation.
func WithCache(n int) Option {
	return func(c *Compiler) { c.cache = lru.New[string, *Unit](n) }
}

// New returns a compiler for convention conv. It validates with
// ReflectValidator and NagaValidator, and checks library GLSL with
// GLSLValidator, unless WithValidators is given.
func New(conv layout.Convention, opts ...Option) *Compiler {
	c := &Compiler{
		conv:       conv,
		validators: []Validator{ReflectValidator{}, NagaValidator{}},
		glsl:       &GLSLValidator{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Convention returns the convention units are derived under.
func (c *Compiler) Convention() layout.Convention { return c.conv }

func (c *Compiler) log() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return gpubridge.Logger()
}

// CacheStats returns the cache hits and misses of Compile. Both are zero
// without WithCache.
func (c *Compiler) CacheStats() (hits, misses uint64) {
	if c.cache == nil {
		return 0, 0
	}
	return c.cache.Stats()
}

// Compile derives one definition. Definition errors and layout mismatches
// are returned unchanged; no unit is produced for them.
func (c *Compiler) Compile(s *layout.Struct) (*Unit, error) {
	fp := Fingerprint(s, c.conv)
	if c.cache != nil {
		if u, ok := c.cache.Get(fp); ok {
			return u, nil
		}
	}
	l, err := layout.Compute(s, c.conv)
	if err != nil {
		return nil, err
	}
	if err := l.Check(); err != nil {
		return nil, fmt.Errorf("derive: %w", err)
	}
	deps := nested(l)
	u := &Unit{
		Name:        l.Name,
		Fingerprint: fp,
		Convention:  c.conv,
		Layout:      l,
		GLSL:        GLSLDecl(l),
		WGSL:        WGSLDecl(l),
		Go:          GoDecl(l),
	}
	all := make([]*layout.Layout, 0, len(deps)+1)
	var decls strings.Builder
	for _, d := range deps {
		u.Deps = append(u.Deps, d.Name)
		all = append(all, d)
		decls.WriteString(WGSLDecl(d))
	}
	all = append(all, l)
	decls.WriteString(u.WGSL)

	if err := c.validate(decls.String(), all); err != nil {
		return nil, err
	}
	c.log().Debug("derive: compiled", "struct", u.Name, "size", l.Size, "align", l.Align,
		"convention", c.conv.String(), "fingerprint", u.Fingerprint[:12])
	if c.cache != nil {
		c.cache.Put(fp, u)
	}
	return u, nil
}

func (c *Compiler) validate(wgsl string, ls []*layout.Layout) error {
	checked := 0
	for _, v := range c.validators {
		err := v.Validate(wgsl, ls)
		switch {
		case err == nil:
			checked++
		case errors.Is(err, ErrValidatorUnavailable):
			c.log().Warn("derive: validator skipped", "validator", v.Name(), "err", err)
		default:
			return err
		}
	}
	if checked == 0 {
		return fmt.Errorf("%w: %s", ErrNoValidator, ls[len(ls)-1].Name)
	}
	return nil
}

// nested returns the layouts of structs nested in l, innermost first and
// without duplicates.
func nested(l *layout.Layout) []*layout.Layout {
	var out []*layout.Layout
	seen := map[string]bool{}
	var walk func(*layout.Layout)
	walk = func(l *layout.Layout) {
		for _, fl := range l.Fields {
			if fl.Sub != nil && !seen[fl.Sub.Name] {
				walk(fl.Sub)
				seen[fl.Sub.Name] = true
				out = append(out, fl.Sub)
			}
		}
	}
	walk(l)
	return out
}

// Output is the combined result of compiling a library.
type Output struct {
	Units []*Unit
	GLSL  string
	WGSL  string
	Go    []byte
}

// CompileLibrary derives every definition of lib, checks address targets,
// validates the combined WGSL file once more, compiles the combined GLSL
// file when a GLSL validator is set and assembles the combined artifacts. pkg is the package name of the generated Go file.
func (c *Compiler) CompileLibrary(lib *layout.Library, pkg string) (*Output, error) {
	if err := lib.Resolve(); err != nil {
		return nil, err
	}
	out := &Output{}
	layouts := make([]*layout.Layout, 0, lib.Len())
	for _, s := range lib.Definitions() {
		u, err := c.Compile(s)
		if err != nil {
			return nil, err
		}
		out.Units = append(out.Units, u)
		layouts = append(layouts, u.Layout)
	}
	out.WGSL = WGSLFile(layouts, c.conv)
	if err := c.validate(out.WGSL, layouts); err != nil {
		return nil, err
	}
	var err error
	if out.GLSL, err = GLSLFile(layouts, c.conv); err != nil {
		return nil, err
	}
	if c.glsl != nil {
		err := c.glsl.Validate(out.GLSL, layouts, c.conv)
		switch {
		case errors.Is(err, ErrValidatorUnavailable):
			c.log().Warn("derive: validator skipped", "validator", c.glsl.Name(), "err", err)
		case err != nil:
			return nil, err
		}
	}
	if out.Go, err = GoFile(pkg, out.Units); err != nil {
		return nil, err
	}
	c.log().Info("derive: library compiled", "structs", len(out.Units), "convention", c.conv.String())
	return out, nil
}
