// Command wbuilder renders a YAML world definition into a runnable
// world file. Definitions reference resources and recipes by name; the
// rendered world carries resolved handles and freshly initialized
// controllers.
package main

import (
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hoenas/econosim/internal/config"
	"github.com/hoenas/econosim/internal/persistence"
)

func main() {
	defFile := flag.String("def-file", "data/world_def.yml", "path to the world definition")
	outFile := flag.String("out-file", "data/generated_world.yml", "path to save the generated world to")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("=== WORLD BUILDER ===")

	def, err := config.Load(*defFile)
	if err != nil {
		slog.Error("failed to load world definition", "error", err)
		os.Exit(1)
	}

	world, err := def.Render()
	if err != nil {
		slog.Error("failed to render world", "error", err)
		os.Exit(1)
	}
	slog.Info("world rendered",
		"resources", world.Resources.Count(),
		"recipes", world.Recipes.Count(),
		"companies", len(world.Companies),
		"producers", len(world.Producers),
		"consumers", len(world.Consumers),
		"actions", world.ActionSpace.Size(),
	)

	os.MkdirAll(filepath.Dir(*outFile), 0755)
	if err := persistence.SaveWorld(*outFile, world); err != nil {
		slog.Error("failed to save world", "error", err)
		os.Exit(1)
	}
	slog.Info("world saved", "file", *outFile)
}
