package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"

	"github.com/gogpu/gpubridge/bindless"
	"github.com/gogpu/gpubridge/config"
	"github.com/gogpu/gpubridge/dispatch"
)

// Result is a built scene and the constants of its draws.
type Result struct {
	Descriptor *bindless.Descriptor
	Draws      []dispatch.Block
}

// Build uploads s into alloc and makes the dispatch constants of every
// draw. On a draw error the scene is released again.
func Build(ctx context.Context, s *Scene, alloc bindless.Allocator, cfg *config.Config, logger *slog.Logger) (*Result, error) {
	if err := dispatch.CheckBudget(cfg.Limits.PushConstantBudget); err != nil {
		return nil, err
	}
	label := s.Label
	if label == "" {
		label = "scene"
	}
	b := bindless.NewBuilder(alloc, bindless.WithLabel(label), bindless.WithLogger(logger))
	d, err := b.Build(ctx, s.Input())
	if err != nil {
		return nil, err
	}
	res := &Result{Descriptor: d}
	for i, draw := range s.Draws {
		opts, err := draw.Options()
		if err == nil {
			var blk dispatch.Block
			if blk, err = dispatch.Make(d, opts...); err == nil {
				res.Draws = append(res.Draws, blk)
				continue
			}
		}
		if rerr := d.Release(alloc); rerr != nil {
			logger.Warn("release scene", "err", rerr)
		}
		return nil, fmt.Errorf("draw %d: %w", i, err)
	}
	return res, nil
}

// Dump writes r as the GPU sees it: every allocation read back through
// alloc, then the constants of each draw. With showHex the raw bytes
// follow each entry.
func Dump(w io.Writer, r *Result, alloc *bindless.HostAllocator, showHex bool) error {
	d := r.Descriptor
	fmt.Fprintf(w, "%v\nsnapshot %v\n\n", d, d.Snapshot())
	for _, a := range d.Allocations() {
		fmt.Fprintf(w, "%-24s %v  %d bytes\n", a.Label, a.Address, a.Size)
		if !showHex {
			continue
		}
		b, err := alloc.Read(a.Address, int(a.Size)) //nolint:gosec // G115: allocation sizes are bounded by the buffer limit
		if err != nil {
			return err
		}
		fmt.Fprint(w, hex.Dump(b))
	}

	rec := d.Record()
	fmt.Fprintf(w, "\nrecord: materials=%v instances=%v geometries=%v vertices=%v indices=%v\n",
		rec.Materials, rec.Instances, rec.Geometries, rec.Vertices, rec.Indices)

	for i, blk := range r.Draws {
		c := blk.Constants
		fmt.Fprintf(w, "\ndraw %d: scene=%v material=%s instance=%s geometry=%s flags=%#x color=%v\n",
			i, c.Scene, index(c.MaterialIndex), index(c.InstanceIndex), index(c.GeometryIndex), c.Flags, c.ColorOverride)
		if showHex {
			fmt.Fprint(w, hex.Dump(blk.Bytes()))
		}
	}
	return nil
}

func index(i uint32) string {
	if i == dispatch.NoIndex {
		return "none"
	}
	return fmt.Sprint(i)
}
