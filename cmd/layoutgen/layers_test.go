package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gogpu/gpubridge/config"
)

func TestWriteLayerSettings(t *testing.T) {
	tests := []struct {
		name    string
		edit    func(*config.Config)
		want    []string
		notWant []string
	}{
		{
			name: "gpu assisted",
			want: []string{"khronos_validation.gpuav_enable = true", "khronos_validation.validate_sync = true"},
		},
		{
			name:    "disabled",
			edit:    func(c *config.Config) { c.Validation = config.Validation{} },
			want:    []string{"# Validation disabled."},
			notWant: []string{"khronos_validation."},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			if tt.edit != nil {
				tt.edit(cfg)
			}
			path := filepath.Join(t.TempDir(), "vk", "vk_layer_settings.txt")
			var logs bytes.Buffer
			if err := writeLayerSettings(cfg, path, slog.New(slog.NewTextHandler(&logs, nil))); err != nil {
				t.Fatalf("writeLayerSettings() error = %v", err)
			}
			b, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			got := string(b)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("settings missing %q:\n%s", w, got)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(got, w) {
					t.Errorf("settings contain %q:\n%s", w, got)
				}
			}
			if !strings.Contains(logs.String(), config.FeatureBufferDeviceAddress) {
				t.Errorf("log = %q, want required features listed", logs.String())
			}
		})
	}
}
