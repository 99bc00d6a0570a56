package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	lib "github.com/theoremus-urban-solutions/utmc-sensors"
	"github.com/theoremus-urban-solutions/utmc-sensors/config"
)

func main() {
	mode := flag.String("mode", "oneshot", "oneshot|server")
	format := flag.String("format", "json", "json|xml")
	call := flag.String("call", "bearings", "bearings|current")
	configPath := flag.String("config", "", "config file (default: config.yml or config/config.yml)")
	feed := flag.String("feed", "", "flow feed URL or file (overrides config)")
	noCache := flag.Bool("nocache", false, "ignore and do not write cache files")
	debug := flag.Bool("debug", false, "log per-way diagnostics")
	flag.Parse()

	logger := lib.InitLogging(*debug)
	if err := loadConfig(*configPath); err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	cfg := config.Config
	if *feed != "" {
		cfg.Flow.FeedURL = *feed
	}
	if *noCache {
		cfg.Cache.Disabled = true
	}

	svc, err := lib.NewService(cfg, logger)
	if err != nil {
		logger.Error("failed to start", "err", err)
		os.Exit(1)
	}

	switch *mode {
	case "oneshot":
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		buf, err := oneshot(ctx, svc, *call, *format)
		if err != nil {
			logger.Error("oneshot failed", "call", *call, "err", err)
			os.Exit(1)
		}
		fmt.Println(string(buf))
	case "server":
		lib.StartServer(svc, cfg.Server.Port)
		lib.HandleGracefulShutdown()
	default:
		logger.Error("unknown mode", "mode", *mode)
		os.Exit(2)
	}
}

// loadConfig reads path, or the default locations when path is empty. A
// missing default file falls back to the built-in configuration.
func loadConfig(path string) error {
	if path != "" {
		return config.LoadAppConfigFrom(path)
	}
	if err := config.LoadAppConfig(); err != nil {
		if os.IsNotExist(err) {
			slog.Info("no config.yml found, using defaults")
			return nil
		}
		return err
	}
	return nil
}

func oneshot(ctx context.Context, svc *lib.Service, call, format string) ([]byte, error) {
	switch call {
	case "bearings":
		l, err := svc.FindSensorDirection(ctx)
		if err != nil {
			return nil, err
		}
		return lib.RenderLookup(l, format)
	case "current":
		snaps, err := svc.AllCurrentSensorData(ctx)
		if err != nil {
			return nil, err
		}
		return lib.RenderSnapshots(snaps, format)
	default:
		return nil, fmt.Errorf("unknown call %q", call)
	}
}
