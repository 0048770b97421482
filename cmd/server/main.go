package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tilekeep/server/cache"
	"github.com/tilekeep/server/config"
	"github.com/tilekeep/server/ecs"
	"github.com/tilekeep/server/game"
	"github.com/tilekeep/server/process"
	"github.com/tilekeep/server/session"
	"github.com/tilekeep/server/transport"
	"github.com/tilekeep/server/util"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to the server's TOML config file")
	bindAddr := flag.String("bind-addr", "", "override the configured UDP bind address")
	regionDir := flag.String("region-dir", "", "override the configured region descriptor directory")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("load config", "error", err)
		os.Exit(1)
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "bind-addr":
			cfg.BindAddr = *bindAddr
		case "region-dir":
			cfg.RegionDir = *regionDir
		}
	})

	if err := run(cfg, log); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	regions, err := config.LoadRegions(cfg)
	if err != nil {
		return fmt.Errorf("loading regions: %w", err)
	}
	log.Info("loaded regions", "count", regions.Len(), "dir", cfg.RegionDir)

	ids := ecs.NewIDAllocator()
	inbound := cache.New(cache.DefaultAllowedDuplicates)
	sessions := session.NewRegistry()
	processor := process.New(inbound, ids)

	srv, err := transport.Listen(cfg.BindAddr, log, sessions, processor, inbound, cfg.OutboundChannelCapacity)
	if err != nil {
		return fmt.Errorf("binding %s: %w", cfg.BindAddr, err)
	}

	gameCfg := cfg.GameConfig(regions)
	gameCfg.Log = log
	gs, err := game.New(gameCfg, ids, inbound, srv)
	if err != nil {
		return fmt.Errorf("starting gamestate: %w", err)
	}

	banner := util.ANSI(0, 200, 255, fmt.Sprintf("listening on %s", srv.LocalAddr()))
	log.Info(banner, "started_at", util.UTC(time.Now()))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx) })
	g.Go(func() error { gs.Run(gctx); return nil })

	return g.Wait()
}
