// Package config reads the gpubridge.toml build configuration: the layout
// convention, the shader extensions the target compiler enables, output
// locations, device limits and validation layer settings.
//
//	[layout]
//	convention = "scalar"
//	int64 = true
//
//	[shader]
//	extensions = [
//	  "GL_EXT_scalar_block_layout",
//	  "GL_EXT_buffer_reference",
//	  "GL_EXT_shader_explicit_arithmetic_types_int64",
//	]
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/pelletier/go-toml/v2"

	"github.com/gogpu/gpubridge/derive"
	"github.com/gogpu/gpubridge/layout"
)

// FileName is the conventional configuration file name.
const FileName = "gpubridge.toml"

// ErrInvalid is wrapped by every *Error.
var ErrInvalid = errors.New("config: invalid configuration")

// Error reports one inconsistent configuration key.
type Error struct {
	Key string
	Msg string
}

func (e *Error) Error() string { return fmt.Sprintf("config: %s: %s", e.Key, e.Msg) }

func (e *Error) Unwrap() error { return ErrInvalid }

// Config is the build configuration.
type Config struct {
	Layout     Layout     `toml:"layout"`
	Shader     Shader     `toml:"shader"`
	Outputs    Outputs    `toml:"outputs"`
	Limits     Limits     `toml:"limits"`
	Validation Validation `toml:"validation"`
}

// Layout selects the layout convention.
type Layout struct {
	// Convention is "scalar" or "std430".
	Convention string `toml:"convention"`
	Int64      bool   `toml:"int64"`
	Float64    bool   `toml:"float64"`
}

// Shader lists what the shader toolchain enables.
type Shader struct {
	Extensions []string `toml:"extensions"`
}

// Outputs names generated files, relative to each package directory.
type Outputs struct {
	// Shaders is the directory receiving the GLSL and WGSL files.
	Shaders string `toml:"shaders"`

	// Manifest is the layout manifest file. Empty disables it.
	Manifest string `toml:"manifest"`
}

// Limits are device limits the host enforces.
type Limits struct {
	MaxBufferSize      uint64 `toml:"max_buffer_size"`
	PushConstantBudget uint32 `toml:"push_constant_budget"`
}

// Validation configures the Vulkan validation layer.
type Validation struct {
	Enabled bool `toml:"enabled"`

	// GPUAssisted enables GPU-assisted checks of descriptor indexing,
	// buffer device address bounds and indirect commands.
	GPUAssisted bool `toml:"gpu_assisted"`

	Sync bool `toml:"sync"`
}

// Default returns the configuration used when no file exists: scalar
// layout with 64-bit integers and the extensions it needs.
func Default() *Config {
	return &Config{
		Layout: Layout{Convention: "scalar", Int64: true},
		Shader: Shader{Extensions: []string{
			derive.ExtScalarBlockLayout,
			derive.ExtBufferReference,
			derive.ExtInt64,
		}},
		Outputs: Outputs{Shaders: "shaders", Manifest: "layout.toml"},
		Limits:  Limits{PushConstantBudget: 128},
		Validation: Validation{
			Enabled:     true,
			GPUAssisted: true,
			Sync:        true,
		},
	}
}

// Parse decodes a configuration over the defaults and validates it.
// Unknown keys are rejected.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads path. A missing file yields Default.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Write encodes cfg as TOML.
func Write(w io.Writer, cfg *Config) error {
	enc := toml.NewEncoder(w)
	enc.SetIndentTables(true)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Convention returns the configured layout convention.
func (c *Config) Convention() (layout.Convention, error) {
	r, err := layout.ParseRules(c.Layout.Convention)
	if err != nil {
		return layout.Convention{}, &Error{Key: "layout.convention", Msg: err.Error()}
	}
	return layout.Convention{Rules: r, Int64: c.Layout.Int64, Float64: c.Layout.Float64}, nil
}

func (c *Config) hasExt(ext string) bool { return slices.Contains(c.Shader.Extensions, ext) }

// Validate checks the configuration for internal consistency: the
// convention's rules and capabilities must be backed by the shader
// extensions that provide them.
func (c *Config) Validate() error {
	conv, err := c.Convention()
	if err != nil {
		return err
	}
	if conv.Rules == layout.Scalar && !c.hasExt(derive.ExtScalarBlockLayout) {
		return &Error{Key: "shader.extensions", Msg: "scalar layout requires " + derive.ExtScalarBlockLayout}
	}
	if conv.Int64 && !c.hasExt(derive.ExtInt64) {
		return &Error{Key: "shader.extensions", Msg: "layout.int64 requires " + derive.ExtInt64}
	}
	if c.Limits.PushConstantBudget != 0 && c.Limits.PushConstantBudget < 16 {
		return &Error{Key: "limits.push_constant_budget", Msg: fmt.Sprintf("%d is below any usable block", c.Limits.PushConstantBudget)}
	}
	if c.Validation.GPUAssisted && !c.Validation.Enabled {
		return &Error{Key: "validation.gpu_assisted", Msg: "needs validation.enabled"}
	}
	return nil
}

// Check verifies that the configured extensions cover everything the
// declarations of ls need, such as buffer references for typed address
// fields.
func (c *Config) Check(ls []*layout.Layout) error {
	conv, err := c.Convention()
	if err != nil {
		return err
	}
	for _, ext := range derive.GLSLExtensions(ls, conv) {
		if !c.hasExt(ext) {
			return &Error{Key: "shader.extensions", Msg: "declarations require " + ext}
		}
	}
	return nil
}
