// Command econosim runs the economy simulation from a saved world file.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/hoenas/econosim/internal/api"
	"github.com/hoenas/econosim/internal/engine"
	"github.com/hoenas/econosim/internal/persistence"
)

func main() {
	worldFile := flag.String("world-file", "data/trained_world.yml", "path to load the world from")
	maxTicks := flag.Uint64("max-ticks", 0, "stop after this many ticks (0 = no limit)")
	infoTicks := flag.Uint64("info-ticks", 500, "log a world report every N ticks")
	fpsLimit := flag.Int("fps-limit", 0, "tick rate limit in ticks/s (0 = unthrottled)")
	apiPort := flag.Int("api-port", 0, "HTTP API port (0 = disabled)")
	dbPath := flag.String("db", "", "telemetry database path (empty = disabled)")
	saveFile := flag.String("save-file", "", "path to save the world to on shutdown (empty = overwrite world-file)")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	slog.Info("=== SIMULATION ===")

	world, err := persistence.LoadWorld(*worldFile)
	if err != nil {
		slog.Error("failed to load world", "error", err)
		os.Exit(1)
	}
	slog.Info("world loaded",
		"file", *worldFile,
		"tick", world.CurrentTick(),
		"companies", len(world.Companies),
		"producers", len(world.Producers),
		"consumers", len(world.Consumers),
	)

	var db *persistence.DB
	if *dbPath != "" {
		os.MkdirAll(filepath.Dir(*dbPath), 0755)
		db, err = persistence.Open(*dbPath)
		if err != nil {
			slog.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		db.SaveMeta("world_file", *worldFile)
		slog.Info("telemetry database opened", "path", *dbPath)
	}

	eng := engine.NewEngine()
	eng.Tick = world.CurrentTick()
	eng.MaxTicks = *maxTicks
	eng.ReportTicks = max(*infoTicks, 1)
	if *fpsLimit > 0 {
		eng.Interval = time.Second / time.Duration(*fpsLimit)
		slog.Info("limiting tick rate", "ticks_per_s", *fpsLimit, "interval", eng.Interval)
	}
	if *maxTicks > 0 {
		slog.Info("limiting simulation", "max_ticks", *maxTicks)
	}

	var feed *api.Feed
	if *apiPort > 0 {
		feed = api.NewFeed()
	}

	eng.OnTick = func(tick uint64) {
		world.Tick(false, 0)
		world.View(func(w *engine.World) {
			trades := w.Market.LastTrades()
			if db != nil {
				if err := db.RecordTick(w.LastTick, len(w.Ledger.Offers), len(w.Ledger.Orders), w.Market.Stats, trades); err != nil {
					slog.Error("telemetry write failed", "error", err)
				}
			}
			if feed != nil {
				feed.Broadcast(w, w.LastTick, trades, w.Market.Stats)
			}
		})
	}
	eng.OnReport = func(tick uint64) {
		world.LogInfo()
	}

	if *apiPort > 0 {
		adminKey := os.Getenv("ECONOSIM_ADMIN_KEY")
		if adminKey == "" {
			slog.Warn("ECONOSIM_ADMIN_KEY not set, admin POST endpoints disabled")
		}
		server := &api.Server{
			World:    world,
			Eng:      eng,
			DB:       db,
			Feed:     feed,
			Port:     *apiPort,
			AdminKey: adminKey,
		}
		server.Start()
		fmt.Printf("API: http://localhost:%d/api/v1/status\n", *apiPort)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		eng.Stop()
	}()

	eng.Run()

	out := *saveFile
	if out == "" {
		out = *worldFile
	}
	if err := persistence.SaveWorld(out, world); err != nil {
		slog.Error("final save failed", "error", err)
		os.Exit(1)
	}
	slog.Info("simulation stopped, world saved", "file", out, "tick", world.CurrentTick())
}
