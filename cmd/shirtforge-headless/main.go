package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"shirtforge/internal/config"
	"shirtforge/internal/design"
	"shirtforge/internal/export"
	"shirtforge/internal/geom"
	"shirtforge/internal/live"
	"shirtforge/internal/logging"
	"shirtforge/internal/mapper"
	"shirtforge/internal/placement"
	"shirtforge/internal/raycast"
	"shirtforge/internal/region"
	"shirtforge/internal/texture"
)

const usage = `Usage: shirtforge-headless [flags] <command>

Commands:
  serve    serve a live design session over WebSocket (default)
  export   write a still (-format png|webp) or design sheet (-format pdf)
  record   write a fixed-length PNG frame sequence of the guide
  browse   list live sessions advertised on the local network
`

func main() {
	configFile := flag.String("config", "shirtforge.json", "Path to config file")
	stateFile := flag.String("state", "", "Design state file (default: .shirtforge_state.json)")
	exportDir := flag.String("export", "", "Export directory (default: exports)")
	listen := flag.String("listen", "", "Listen address (default: :8888)")
	advertise := flag.Bool("advertise", false, "Advertise the session over mDNS")
	logLevel := flag.String("log", "", "Log level: debug, info, warn, error")
	format := flag.String("format", "png", "Export format: png, webp or pdf")
	regionName := flag.String("region", "", "Region to export (default: front)")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := flag.Arg(0)
	if cmd == "" {
		cmd = "serve"
	}
	switch cmd {
	case "serve":
		err = serve(ctx, cfg)
	case "export":
		err = exportStill(cfg, *format, *regionName)
	case "record":
		err = record(ctx, cfg)
	case "browse":
		err = live.Browse(func(addr string) { fmt.Println(addr) })
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func guideSize(cfg config.Config) geom.Vec2 {
	return geom.Vec2{X: float64(cfg.GuideWidth), Y: float64(cfg.GuideHeight)}
}

func loadStore(cfg config.Config) (*design.Store, design.Storage) {
	storage := design.FileStorage{Path: cfg.StateFile}
	return design.NewStore(design.WithSnapshot(design.LoadOrDefault(storage))), storage
}

func serve(ctx context.Context, cfg config.Config) error {
	store, storage := loadStore(cfg)
	persister := design.Persist(store, storage)
	ctrl := placement.NewController(store, mapper.New(region.Default()), guideSize(cfg))
	hub := live.NewHub(store, ctrl, raycast.NewAdapter(store))
	hub.FontSize = float64(cfg.FontSize)

	srv, err := live.Listen(cfg.ListenAddr, hub, cfg.Advertise)
	if err != nil {
		return err
	}
	err = hub.Run(ctx)

	shutdown, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if cerr := srv.Close(shutdown); cerr != nil {
		logging.L().Warn("shutdown", "err", cerr)
	}
	persister.Flush()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// preview renders the stored design the way the 2D guide shows it.
func preview(cfg config.Config) (design.State, mapper.Mapper, *image.NRGBA) {
	store, _ := loadStore(cfg)
	st := store.State()
	m := mapper.New(region.Default())
	textures := texture.NewCache(func(ref string) (image.Image, error) {
		return texture.Load(ref)
	}, nil)
	return st, m, export.Preview(st, m, guideSize(cfg), textures.Get)
}

func exportStill(cfg config.Config, format, name string) error {
	r := region.Front
	if name != "" {
		var ok bool
		if r, ok = region.Parse(name); !ok {
			return fmt.Errorf("unknown region %q", name)
		}
	}
	st, m, img := preview(cfg)

	if format == "pdf" {
		path := filepath.Join(cfg.ExportDir, export.SheetName(r))
		if err := export.DesignSheet(path, st, m, guideSize(cfg), img); err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	}

	f := export.Format(format)
	if f != export.PNG && f != export.WebP {
		return fmt.Errorf("unknown format %q", format)
	}
	path, err := export.SaveImage(cfg.ExportDir, r, export.RegionCrop(img, m, guideSize(cfg), r), f)
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}

// stillFrames serves the same rendered guide for every frame.
type stillFrames struct {
	img image.Image
}

func (s stillFrames) Frame() (image.Image, error) { return s.img, nil }

func record(ctx context.Context, cfg config.Config) error {
	_, _, img := preview(cfg)
	var rec export.Recorder
	res, err := export.Record(ctx, &rec, stillFrames{img}, export.VideoDir(cfg.ExportDir), cfg.RecordDuration(), cfg.RecordFPS)
	if err != nil {
		return err
	}
	fmt.Printf("%d frames in %s\n", res.Frames, res.Dir)
	return nil
}
