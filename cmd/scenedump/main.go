// Command scenedump builds the scene described by a YAML file into a host
// address space and prints the scene descriptor, every array it points to
// and the dispatch constants of each draw, byte for byte as a shader would
// read them.
//
// Usage:
//
//	scenedump [-config gpubridge.toml] [-hex] scene.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/gogpu/gpubridge"
	"github.com/gogpu/gpubridge/bindless"
	"github.com/gogpu/gpubridge/config"
)

func main() {
	var (
		configPath = flag.String("config", config.FileName, "build configuration file")
		showHex    = flag.Bool("hex", false, "dump raw bytes")
		verbose    = flag.Bool("v", false, "log allocations")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: scenedump [flags] scene.yaml\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Prefix:          "scenedump",
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
	scene, err := LoadScene(flag.Arg(0))
	if err != nil {
		logger.Fatal("load scene", "err", err)
	}

	alloc := bindless.NewHostAllocator(cfg.Limits.MaxBufferSize)
	res, err := Build(context.Background(), scene, alloc, cfg, slogger)
	if err != nil {
		logger.Fatal("build", "err", err)
	}
	if err := Dump(os.Stdout, res, alloc, *showHex); err != nil {
		logger.Fatal("dump", "err", err)
	}
}
