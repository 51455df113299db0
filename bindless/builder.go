package bindless

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/gogpu/gpubridge"
	"github.com/gogpu/gpubridge/shared"
)

// SceneInput is the data of one scene. Any array may be empty.
type SceneInput struct {
	Materials  Array
	Instances  Array
	Geometries Array
	Vertices   Array
	Indices    Array

	WorldToClip [16]float32
}

// Builder uploads scenes and produces their descriptors. Each successful
// Build advances the generation recorded in the descriptor.
//
// A Builder is not safe for concurrent use. It never frees: the caller owns
// every allocation of every descriptor it returns.
type Builder struct {
	alloc      Allocator
	generation uint32
	label      string
	logger     *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithLabel prefixes allocation labels.
func WithLabel(prefix string) Option {
	return func(b *Builder) { b.label = prefix }
}

// WithLogger sets the logger. By default the package logger is used.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) { b.logger = l }
}

// NewBuilder returns a builder allocating through alloc.
func NewBuilder(alloc Allocator, opts ...Option) *Builder {
	b := &Builder{alloc: alloc, label: "scene"}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Generation returns the generation of the last successful build, or 0.
func (b *Builder) Generation() uint32 { return b.generation }

func (b *Builder) log() *slog.Logger {
	if b.logger != nil {
		return b.logger
	}
	return gpubridge.Logger()
}

type slot struct {
	arr   *Array
	addr  *gpubridge.DeviceAddress
	count *uint32
}

// Build validates and uploads every non-empty array of in, then uploads
// the descriptor record that points at them. Empty arrays get a null
// address and a zero count.
//
// Validation happens before any allocation. If an allocation fails, the
// allocations already made for this build are freed and the generation is
// unchanged.
func (b *Builder) Build(ctx context.Context, in SceneInput) (*Descriptor, error) {
	var rec shared.SceneDescriptor
	slots := []slot{
		{&in.Materials, &rec.Materials, &rec.MaterialCount},
		{&in.Instances, &rec.Instances, &rec.InstanceCount},
		{&in.Geometries, &rec.Geometries, &rec.GeometryCount},
		{&in.Vertices, &rec.Vertices, &rec.VertexCount},
		{&in.Indices, &rec.Indices, &rec.IndexCount},
	}
	limit := b.alloc.MaxBufferSize()
	for _, s := range slots {
		if err := s.arr.Validate(limit); err != nil {
			return nil, err
		}
	}

	var allocs []Allocation
	fail := func(err error) (*Descriptor, error) {
		var errs []error
		for _, a := range allocs {
			errs = append(errs, b.alloc.Free(a))
		}
		return nil, errors.Join(append([]error{err}, errs...)...)
	}

	for _, s := range slots {
		if err := ctx.Err(); err != nil {
			return fail(err)
		}
		if s.arr.Empty() {
			continue
		}
		a, err := b.alloc.Allocate(b.label+"/"+s.arr.Name, s.arr.Data)
		if err != nil {
			return fail(fmt.Errorf("bindless: upload %s: %w", s.arr.Name, err))
		}
		allocs = append(allocs, a)
		*s.addr = a.Address
		*s.count = uint32(s.arr.Count) //nolint:gosec // G115: bounded by Validate
	}

	rec.Generation = b.generation + 1
	rec.WorldToClip = in.WorldToClip
	buf := make([]byte, shared.SceneDescriptorSize)
	rec.EncodeGPU(buf)
	if err := ctx.Err(); err != nil {
		return fail(err)
	}
	ra, err := b.alloc.Allocate(b.label+"/descriptor", buf)
	if err != nil {
		return fail(fmt.Errorf("bindless: upload descriptor: %w", err))
	}
	allocs = append(allocs, ra)
	b.generation++

	d := &Descriptor{record: rec, address: ra.Address, allocs: allocs, snapshot: uuid.New()}
	b.log().Debug("bindless: scene built", "generation", rec.Generation, "address", ra.Address.String(),
		"allocations", len(allocs), "snapshot", d.snapshot.String())
	return d, nil
}
