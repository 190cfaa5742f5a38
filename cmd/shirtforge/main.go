package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"shirtforge/internal/config"
	"shirtforge/internal/design"
	"shirtforge/internal/geom"
	"shirtforge/internal/live"
	"shirtforge/internal/logging"
	"shirtforge/internal/mapper"
	"shirtforge/internal/placement"
	"shirtforge/internal/raycast"
	"shirtforge/internal/region"
	"shirtforge/internal/viewer"
)

func main() {
	// Run next to the executable for deployed builds. "go run" builds in a
	// temp go-build directory, so stay put there.
	if execPath, err := os.Executable(); err == nil {
		execDir := filepath.Dir(execPath)
		if !strings.Contains(execDir, "go-build") {
			os.Chdir(execDir)
		}
	}

	configFile := flag.String("config", "shirtforge.json", "Path to config file")
	stateFile := flag.String("state", "", "Design state file (default: .shirtforge_state.json)")
	exportDir := flag.String("export", "", "Export directory (default: exports)")
	serve := flag.Bool("serve", false, "Also serve a live session over WebSocket")
	listen := flag.String("listen", "", "Live session listen address (default: :8888)")
	advertise := flag.Bool("advertise", false, "Advertise the live session over mDNS")
	logLevel := flag.String("log", "", "Log level: debug, info, warn, error")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	cfg.Resolve(config.Flags{
		StateFile:  *stateFile,
		ExportDir:  *exportDir,
		ListenAddr: *listen,
		Advertise:  *advertise,
		LogLevel:   *logLevel,
	})
	logging.Set(logging.Stderr(cfg.LogLevel))

	storage := design.FileStorage{Path: cfg.StateFile}
	store := design.NewStore(design.WithSnapshot(design.LoadOrDefault(storage)))
	persister := design.Persist(store, storage)

	guide := geom.Vec2{X: float64(cfg.GuideWidth), Y: float64(cfg.GuideHeight)}
	ctrl := placement.NewController(store, mapper.New(region.Default()), guide)
	placer := raycast.NewAdapter(store)

	v := viewer.New(store, ctrl, placer, viewer.Options{
		Width:          cfg.WindowWidth,
		Height:         cfg.WindowHeight,
		ExportDir:      cfg.ExportDir,
		Layout:         design.FileStorage{Path: cfg.LayoutFile},
		RecordDuration: cfg.RecordDuration(),
		RecordFPS:      cfg.RecordFPS,
		FontSize:       float64(cfg.FontSize),
		ListenAddr:     cfg.ListenAddr,
	})

	var hub *live.Hub
	var srv *live.Server
	if *serve {
		hub = live.NewHub(store, ctrl, placer)
		hub.FontSize = float64(cfg.FontSize)
		srv, err = live.Listen(cfg.ListenAddr, hub, cfg.Advertise)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error starting live session: %v\n", err)
			os.Exit(1)
		}
		v.SetHub(hub)
	}

	if err := v.Run(); err != nil {
		logging.L().Error("viewer stopped", "err", err)
	}

	if hub != nil {
		hub.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		srv.Close(ctx)
		cancel()
	}
	persister.Flush()
}
