package derive

import (
	"bytes"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/gogpu/gpubridge/layout"
)

func TestRegistryAppendOnly(t *testing.T) {
	c := reflectOnly()
	reg := NewRegistry()

	u1, err := c.Compile(probe())
	if err != nil {
		t.Fatal(err)
	}
	stored, err := reg.Put(u1)
	if err != nil || stored != u1 {
		t.Fatalf("Put() = %p, %v, want %p", stored, err, u1)
	}

	again, _ := c.Compile(probe())
	stored, err = reg.Put(again)
	if err != nil || stored != u1 {
		t.Errorf("Put(rederived) = %p, %v, want the first unit", stored, err)
	}
	if reg.Len() != 1 {
		t.Errorf("Len() = %d, want 1", reg.Len())
	}

	changed := probe()
	changed.Fields = append(changed.Fields, layout.Of("C", layout.KindF32))
	u2, err := c.Compile(changed)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := reg.Put(u2); err != nil {
		t.Fatal(err)
	}
	latest, _ := reg.Latest("Probe")
	if latest != u2 {
		t.Error("Latest() should return the changed definition")
	}
	if h := reg.History("Probe"); len(h) != 2 || h[0] != u1 {
		t.Errorf("History() = %d units, want 2 with the first unit kept", len(h))
	}
	if got, ok := reg.Get(u1.Fingerprint); !ok || got != u1 {
		t.Error("Get() lost the original unit")
	}
}

func TestRegistryRejectsNondeterminism(t *testing.T) {
	reg := NewRegistry()
	u, err := reflectOnly().Compile(probe())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := reg.Put(u); err != nil {
		t.Fatal(err)
	}
	forged := *u
	forged.GLSL = strings.Replace(u.GLSL, "vec3", "vec4", 1)
	if _, err := reg.Put(&forged); !errors.Is(err, ErrNondeterministic) {
		t.Errorf("Put(forged) error = %v, want ErrNondeterministic", err)
	}
}

func TestManifestRoundTrip(t *testing.T) {
	c := reflectOnly()
	reg := NewRegistry()
	u, _ := c.Compile(probe())
	if _, err := reg.Put(u); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := WriteManifest(&buf, reg.Manifest()); err != nil {
		t.Fatalf("WriteManifest() error = %v", err)
	}
	if !strings.Contains(buf.String(), "[[unit]]") {
		t.Errorf("manifest is not a TOML array of tables:\n%s", buf.String())
	}
	m, err := ReadManifest(&buf)
	if err != nil {
		t.Fatalf("ReadManifest() error = %v", err)
	}
	if len(m.Units) != 1 || m.Units[0].Name != "Probe" || !slices.Equal(m.Units[0].Offsets, []uint32{0, 4, 16}) {
		t.Fatalf("manifest = %+v", m)
	}
	if err := m.Verify([]*Unit{u}); err != nil {
		t.Errorf("Verify() error = %v", err)
	}

	m.Units[0].Offsets[1] = 16
	if err := m.Verify([]*Unit{u}); !errors.Is(err, ErrNondeterministic) {
		t.Errorf("Verify(tampered) error = %v, want ErrNondeterministic", err)
	}
}

func TestManifestChanged(t *testing.T) {
	c := reflectOnly()
	u, _ := c.Compile(probe())
	m := Manifest{Units: []ManifestEntry{u.Entry()}}

	changed := probe()
	changed.Fields[0].Kind = layout.KindI32
	u2, _ := c.Compile(changed)
	if got := m.Changed([]*Unit{u2}); !slices.Equal(got, []string{"Probe"}) {
		t.Errorf("Changed() = %v, want [Probe]", got)
	}
	if got := m.Changed([]*Unit{u}); len(got) != 0 {
		t.Errorf("Changed(unchanged) = %v, want none", got)
	}
}
