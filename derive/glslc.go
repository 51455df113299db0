package derive

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/gogpu/gpubridge/layout"
)

// GLSLValidator compiles the emitted GLSL with glslc and reads the member
// Offset and ArrayStride decorations of the resulting SPIR-V. It checks the
// GLSL twin, which the WGSL validators never see.
type GLSLValidator struct {
	// Compile turns a GLSL compute shader into SPIR-V bytes. Nil runs
	// glslc from PATH.
	Compile func(source string) ([]byte, error)
}

// Name identifies the validator in mismatch reports.
func (GLSLValidator) Name() string { return "glslc-spirv" }

// GLSLCheckModule wraps an include file produced by GLSLFile in a compute
// shader with one storage block per struct in ls, each referenced from
// main so the compiler keeps it.
func GLSLCheckModule(glsl string, ls []*layout.Layout, c layout.Convention) string {
	var b strings.Builder
	b.WriteString("#version 460\n")
	for line := range strings.Lines(glsl) {
		if strings.HasPrefix(line, "#extension") {
			b.WriteString(line)
		}
	}
	b.WriteString("\nlayout(local_size_x = 1) in;\n")
	for line := range strings.Lines(glsl) {
		if !strings.HasPrefix(line, "#extension") {
			b.WriteString(line)
		}
	}
	b.WriteByte('\n')
	for i, l := range ls {
		fmt.Fprintf(&b, "layout(set = 0, binding = %d, %s) readonly buffer Check%d { %s v[]; } check_%d;\n",
			i, blockRules(c), i, l.Name, i)
	}
	b.WriteString("\nvoid main() {\n    int n = 0;\n")
	for i := range ls {
		fmt.Fprintf(&b, "    n += check_%d.v.length();\n", i)
	}
	b.WriteString("}\n")
	return b.String()
}

// Validate compiles glsl, a file produced by GLSLFile under c, and checks
// every layout in ls against the compiled structs. It returns an error
// wrapping ErrValidatorUnavailable when glslc is not installed.
func (v GLSLValidator) Validate(glsl string, ls []*layout.Layout, c layout.Convention) error {
	compile := v.Compile
	if compile == nil {
		compile = runGlslc
	}
	spirv, err := compile(GLSLCheckModule(glsl, ls, c))
	if err != nil {
		if errors.Is(err, ErrValidatorUnavailable) {
			return err
		}
		return &DerivationMismatchError{Validator: v.Name(), What: "compile", Detail: err.Error()}
	}
	mod, err := parseSPIRV(spirv)
	if err != nil {
		return &DerivationMismatchError{Validator: v.Name(), What: "parse", Detail: err.Error()}
	}
	for _, l := range ls {
		if err := compareMembers(v.Name(), l, mod.find(l)); err != nil {
			return err
		}
	}
	return nil
}

func runGlslc(source string) ([]byte, error) {
	bin, err := exec.LookPath("glslc")
	if err != nil {
		return nil, fmt.Errorf("%w: glslc: %v", ErrValidatorUnavailable, err)
	}
	dir, err := os.MkdirTemp("", "gpubridge-glslc")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	src := filepath.Join(dir, "check.comp")
	out := filepath.Join(dir, "check.spv")
	if err := os.WriteFile(src, []byte(source), 0o644); err != nil {
		return nil, err
	}
	var stderr bytes.Buffer
	cmd := exec.Command(bin, "--target-env=vulkan1.2", "-fshader-stage=compute", "-o", out, src)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("glslc: %v: %s", err, strings.TrimSpace(stderr.String()))
	}
	return os.ReadFile(out)
}
