package main

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gogpu/gpubridge/internal/gosrc"
)

// settle is how long the watcher waits for a burst of writes to end.
const settle = 200 * time.Millisecond

// relevant reports whether a change to name can alter the derived
// definitions. Generated files are ignored so a regeneration does not
// trigger itself.
func relevant(name string) bool {
	base := filepath.Base(name)
	return strings.HasSuffix(base, ".go") && !strings.HasPrefix(base, "zz_") &&
		!strings.HasSuffix(base, "_test.go")
}

// watch regenerates patterns once, then again after every relevant change
// in a package directory, until ctx is done. Derivation errors are logged
// and the previous outputs are left in place.
func (g *generator) watch(ctx context.Context, patterns []string) error {
	if err := g.run(patterns); err != nil {
		g.opts.logger.Error("generate", "err", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	pkgs, err := gosrc.Load(g.opts.dir, patterns...)
	if err != nil {
		return err
	}
	for _, p := range pkgs {
		if err := watcher.Add(p.Dir); err != nil {
			return err
		}
		g.opts.logger.Info("watching", "dir", p.Dir)
	}

	timer := time.NewTimer(settle)
	timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Chmod) || !relevant(event.Name) {
				continue
			}
			g.opts.logger.Debug("changed", "file", event.Name, "op", event.Op.String())
			timer.Reset(settle)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			g.opts.logger.Warn("watch", "err", err)
		case <-timer.C:
			if err := g.run(patterns); err != nil {
				g.opts.logger.Error("generate", "err", err)
			}
		}
	}
}
