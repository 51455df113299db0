package main

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gogpu/gpubridge/config"
)

// writeLayerSettings writes the validation layer settings for cfg to path
// and logs the device features a renderer built on these layouts needs.
func writeLayerSettings(cfg *config.Config, path string, logger *slog.Logger) error {
	features, err := cfg.RequiredFeatures()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := cfg.WriteLayerSettings(&buf); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write layer settings: %w", err)
	}
	logger.Info("layer settings written", "file", path, "features", strings.Join(features, ","))
	return nil
}
