// Command layoutgen derives GPU layouts from Go struct declarations marked
// with //gpubridge:struct and writes, next to each package, the generated
// host codec (zz_layout.go), the definition catalog (zz_catalog.go), the
// GLSL and WGSL twins and the layout manifest.
//
// Usage:
//
//	layoutgen [flags] [packages]
//
// Every derived layout is cross-validated against an independent WGSL
// layout computation, against the SPIR-V the naga compiler produces and,
// when glslc is installed, against the SPIR-V of the generated GLSL before
// anything is written. With -check nothing is written and stale
// outputs are an error. With -watch the packages are regenerated whenever
// one of their Go files changes. With -layer-settings the Vulkan validation
// layer settings for the configured validation section are written too.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/charmbracelet/log"

	"github.com/gogpu/gpubridge"
	"github.com/gogpu/gpubridge/config"
)

func main() {
	var (
		configPath = flag.String("config", config.FileName, "build configuration file")
		convention = flag.String("convention", "", "override layout.convention (scalar or std430)")
		shaders    = flag.String("shaders", "", "override outputs.shaders")
		manifest   = flag.String("manifest", "", "override outputs.manifest")
		noNaga     = flag.Bool("no-naga", false, "skip the naga SPIR-V cross-check")
		noGlslc    = flag.Bool("no-glslc", false, "skip compiling the generated GLSL with glslc")
		check      = flag.Bool("check", false, "verify generated files are up to date without writing")
		watch      = flag.Bool("watch", false, "regenerate when source files change")
		verbose    = flag.Bool("v", false, "log every derived struct")
		layers     = flag.String("layer-settings", "", "write vk_layer_settings.txt to this path")
	)
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Prefix:          "layoutgen",
	})
	if *verbose {
		logger.SetLevel(log.DebugLevel)
	}
	slogger := slog.New(logger)
	gpubridge.SetLogger(slogger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("load config", "err", err)
	}
	if *convention != "" {
		cfg.Layout.Convention = *convention
	}
	if *shaders != "" {
		cfg.Outputs.Shaders = *shaders
	}
	if *manifest != "" {
		cfg.Outputs.Manifest = *manifest
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid config", "err", err)
	}

	if *layers != "" && !*check {
		if err := writeLayerSettings(cfg, *layers, slogger); err != nil {
			logger.Fatal("layer settings", "err", err)
		}
	}

	g, err := newGenerator(cfg, options{naga: !*noNaga, glslc: !*noGlslc, check: *check, logger: slogger})
	if err != nil {
		logger.Fatal("setup", "err", err)
	}
	patterns := flag.Args()
	if len(patterns) == 0 {
		patterns = []string{"."}
	}

	if !*watch {
		if err := g.run(patterns); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := g.watch(ctx, patterns); err != nil {
		logger.Fatal("watch", "err", err)
	}
}
