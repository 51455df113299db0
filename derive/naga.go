package derive

import (
	"encoding/binary"
	"fmt"
	"slices"
	"strings"

	"github.com/gogpu/naga"

	"github.com/gogpu/gpubridge/layout"
)

// SPIR-V constants read back from compiled probe modules.
const (
	spirvMagic = 0x07230203

	opName           = 5
	opMemberName     = 6
	opTypeStruct     = 30
	opDecorate       = 71
	opMemberDecorate = 72

	decorationArrayStride = 6
	decorationOffset      = 35
)

// NagaValidator compiles the emitted WGSL with naga into SPIR-V and reads
// the member Offset and ArrayStride decorations the compiler assigned.
type NagaValidator struct {
	// Compile turns WGSL into SPIR-V bytes. Nil means naga.Compile.
	Compile func(source string) ([]byte, error)
}

// Name implements Validator.
func (NagaValidator) Name() string { return "naga-spirv" }

// ProbeModule wraps declarations in a compute shader that keeps one storage
// buffer of every struct in ls alive, so the compiler must lay them out.
func ProbeModule(decls string, ls []*layout.Layout) string {
	var b strings.Builder
	b.WriteString(decls)
	b.WriteByte('\n')
	for i, l := range ls {
		fmt.Fprintf(&b, "@group(0) @binding(%d) var<storage, read> probe_%d: %s;\n", i, i, l.Name)
	}
	b.WriteString("\n@compute @workgroup_size(1)\nfn probe_main() {\n")
	for i := range ls {
		fmt.Fprintf(&b, "    let p%d = probe_%d;\n", i, i)
	}
	b.WriteString("}\n")
	return b.String()
}

// Validate implements Validator.
func (v NagaValidator) Validate(wgsl string, ls []*layout.Layout) error {
	compile := v.Compile
	if compile == nil {
		compile = naga.Compile
	}
	spirv, err := compile(ProbeModule(wgsl, ls))
	if err != nil {
		msg := err.Error()
		if strings.Contains(msg, "not yet implemented") || strings.Contains(msg, "not supported") {
			return fmt.Errorf("%w: naga: %v", ErrValidatorUnavailable, err)
		}
		return &DerivationMismatchError{Validator: v.Name(), What: "compile", Detail: msg}
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

type spirvModule struct {
	names   map[uint32]string
	structs map[uint32][]uint32 // struct id -> member type ids
	order   []uint32
	offsets map[uint32]map[uint32]uint32
	strides map[uint32]uint32
}

func parseSPIRV(code []byte) (*spirvModule, error) {
	if len(code) < 20 || len(code)%4 != 0 {
		return nil, fmt.Errorf("SPIR-V module of %d bytes", len(code))
	}
	words := make([]uint32, len(code)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(code[i*4:])
	}
	if words[0] != spirvMagic {
		return nil, fmt.Errorf("invalid SPIR-V magic: 0x%08X", words[0])
	}
	m := &spirvModule{
		names:   make(map[uint32]string),
		structs: make(map[uint32][]uint32),
		offsets: make(map[uint32]map[uint32]uint32),
		strides: make(map[uint32]uint32),
	}
	for i := 5; i < len(words); {
		count := int(words[i] >> 16)
		op := words[i] & 0xffff
		if count == 0 || i+count > len(words) {
			return nil, fmt.Errorf("truncated instruction at word %d", i)
		}
		args := words[i+1 : i+count]
		switch {
		case op == opName && len(args) >= 2:
			m.names[args[0]] = spirvString(args[1:])
		case op == opTypeStruct && len(args) >= 1:
			m.structs[args[0]] = slices.Clone(args[1:])
			m.order = append(m.order, args[0])
		case op == opMemberDecorate && len(args) >= 4 && args[2] == decorationOffset:
			if m.offsets[args[0]] == nil {
				m.offsets[args[0]] = make(map[uint32]uint32)
			}
			m.offsets[args[0]][args[1]] = args[3]
		case op == opDecorate && len(args) >= 3 && args[1] == decorationArrayStride:
			m.strides[args[0]] = args[2]
		}
		i += count
	}
	return m, nil
}

func spirvString(words []uint32) string {
	var b []byte
	for _, w := range words {
		for shift := 0; shift < 32; shift += 8 {
			c := byte(w >> shift)
			if c == 0 {
				return string(b)
			}
			b = append(b, c)
		}
	}
	return string(b)
}

func (m *spirvModule) structLayout(id uint32) *wgslStructLayout {
	members := m.structs[id]
	out := &wgslStructLayout{members: make([]wgslMemberLayout, len(members))}
	for i, typ := range members {
		out.members[i] = wgslMemberLayout{
			offset: m.offsets[id][uint32(i)],
			stride: m.strides[typ],
		}
	}
	return out
}

// find returns the struct matching l by debug name, or failing that the
// first struct with the same member offsets. Nil if nothing matches.
func (m *spirvModule) find(l *layout.Layout) *wgslStructLayout {
	for _, id := range m.order {
		if m.names[id] == l.Name {
			return m.structLayout(id)
		}
	}
	want := l.Offsets()
	for _, id := range m.order {
		if len(m.structs[id]) != len(want) {
			continue
		}
		sl := m.structLayout(id)
		match := true
		for i, o := range want {
			if sl.members[i].offset != o {
				match = false
				break
			}
		}
		if match {
			return sl
		}
	}
	return nil
}
