package dispatch

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/image/math/f32"

	"github.com/gogpu/gpubridge/bindless"
	"github.com/gogpu/gpubridge/shared"
)

func buildScene(t *testing.T) *bindless.Descriptor {
	t.Helper()
	d, err := bindless.NewBuilder(bindless.NewHostAllocator(0)).Build(context.Background(), bindless.SceneInput{
		Materials: bindless.Materials(make([]shared.MaterialRecord, 3)),
		Instances: bindless.Instances(make([]shared.InstanceRecord, 2)),
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return d
}

func TestMake(t *testing.T) {
	d := buildScene(t)
	b, err := Make(d, Material(2), Instance(1), Flags(shared.FlagUnlit), ColorOverride(f32.Vec4{1, 1, 0, 1}))
	if err != nil {
		t.Fatalf("Make() error = %v", err)
	}
	c := b.Constants
	if c.Scene != d.Address() || c.MaterialIndex != 2 || c.InstanceIndex != 1 {
		t.Errorf("constants = %+v", c)
	}
	if c.GeometryIndex != NoIndex {
		t.Errorf("unset geometry index = %d, want NoIndex", c.GeometryIndex)
	}
	if c.Flags != shared.FlagUnlit|shared.FlagColorOverride {
		t.Errorf("Flags = %b", c.Flags)
	}

	var back shared.DispatchConstants
	back.DecodeGPU(b.Bytes())
	if back != c {
		t.Errorf("Bytes() decodes to %+v, want %+v", back, c)
	}
}

func TestMakeRejectsOutOfRange(t *testing.T) {
	d := buildScene(t)
	tests := []struct {
		name  string
		opt   Option
		array string
		count uint32
	}{
		{"material at count", Material(3), "material", 3},
		{"instance past count", Instance(7), "instance", 2},
		{"geometry in empty array", Geometry(0), "geometry", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Make(d, tt.opt)
			if !errors.Is(err, ErrIndexOutOfRange) {
				t.Fatalf("Make() error = %v, want ErrIndexOutOfRange", err)
			}
			var ie *IndexOutOfRangeError
			if !errors.As(err, &ie) || ie.Array != tt.array || ie.Count != tt.count {
				t.Errorf("error = %+v", ie)
			}
		})
	}
}

func TestMakeNoIndexSkipsCheck(t *testing.T) {
	d := buildScene(t)
	if _, err := Make(d, Geometry(NoIndex)); err != nil {
		t.Errorf("Make(Geometry(NoIndex)) error = %v", err)
	}
}

func TestMakeNoScene(t *testing.T) {
	if _, err := Make(nil, Material(0)); !errors.Is(err, ErrNoScene) {
		t.Errorf("Make(nil) error = %v, want ErrNoScene", err)
	}
}

func TestCheckBudget(t *testing.T) {
	if err := CheckBudget(DefaultPushConstantBudget); err != nil {
		t.Errorf("CheckBudget(%d) error = %v", DefaultPushConstantBudget, err)
	}
	if err := CheckBudget(32); !errors.Is(err, ErrOverBudget) {
		t.Errorf("CheckBudget(32) error = %v, want ErrOverBudget", err)
	}
}
