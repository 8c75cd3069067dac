// Package persistence stores world state: whole-world YAML snapshots for
// exact resume, and a SQLite telemetry store for per-tick market history.
package persistence

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hoenas/econosim/internal/engine"
)

// SaveWorld writes a complete world snapshot. The snapshot preserves
// ledger handle keys and the next-handle counters, so a reloaded world
// continues its handle sequence without renumbering.
func SaveWorld(path string, w *engine.World) error {
	var data []byte
	var err error
	w.View(func(w *engine.World) {
		data, err = yaml.Marshal(w)
	})
	if err != nil {
		return fmt.Errorf("marshal world: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write world: %w", err)
	}
	slog.Info("world saved", "path", path, "tick", w.CurrentTick())
	return nil
}

// LoadWorld reads a world snapshot written by SaveWorld.
func LoadWorld(path string) (*engine.World, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read world: %w", err)
	}
	var w engine.World
	if err := yaml.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("unmarshal world: %w", err)
	}
	slog.Info("world loaded", "path", path, "tick", w.LastTick, "companies", len(w.Companies))
	return &w, nil
}
