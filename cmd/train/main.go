// Command train runs episodic Q-learning over a generated world. Each
// epoch replays the same starting conditions; only the learned policies
// carry over between epochs.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/hoenas/econosim/internal/engine"
	"github.com/hoenas/econosim/internal/persistence"
)

func main() {
	inFile := flag.String("in-file", "data/generated_world.yml", "path to load the world from")
	outFile := flag.String("out-file", "data/trained_world.yml", "path to save the trained world to")
	perfFile := flag.String("training-out-file", "data/training_performance.csv", "path to save per-epoch performance data to")
	epochs := flag.Int("epochs", 10000, "epochs to train")
	trainingTicks := flag.Uint64("training-ticks", 100, "ticks simulated per epoch")
	saveEpochs := flag.Int("save-epochs", 100, "save the trained world every N epochs")
	exploration := flag.Float64("exploration-factor", 0, "fixed exploration factor (0 = decay from 1 over the run)")
	minExploration := flag.Float64("min-exploration-factor", 0.05, "floor for the decaying exploration factor")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("=== TRAINING ===")

	totalEpochs := max(*epochs, 1)
	ticksPerEpoch := max(*trainingTicks, 1)
	saveEvery := max(*saveEpochs, 1)

	world, err := persistence.LoadWorld(*inFile)
	if err != nil {
		slog.Error("failed to load world", "error", err)
		os.Exit(1)
	}

	perf, err := os.Create(*perfFile)
	if err != nil {
		slog.Error("failed to create performance file", "error", err)
		os.Exit(1)
	}
	defer perf.Close()
	writer := csv.NewWriter(perf)
	if err := writer.Write(performanceHeader(world)); err != nil {
		slog.Error("failed to write performance header", "error", err)
		os.Exit(1)
	}

	for epoch := 0; epoch < totalEpochs; epoch++ {
		eps := *exploration
		if eps == 0 {
			eps = 1 - float64(epoch)/float64(totalEpochs)
			if eps < *minExploration {
				eps = *minExploration
			}
		}
		slog.Info("epoch", "n", epoch, "progress", fmt.Sprintf("%.0f%%", float64(epoch)/float64(totalEpochs)*100), "exploration", eps)

		start := time.Now()
		for k := uint64(0); k < ticksPerEpoch; k++ {
			world.Tick(true, eps)
		}
		slog.Info("epoch done", "ticks_per_s", fmt.Sprintf("%.0f", float64(ticksPerEpoch)/time.Since(start).Seconds()))

		if err := writer.Write(performanceRow(world, epoch)); err != nil {
			slog.Error("failed to write performance row", "error", err)
			os.Exit(1)
		}
		writer.Flush()

		// Replay the same starting conditions next epoch; the learned
		// Q-tables are the only state that carries over.
		fresh, err := persistence.LoadWorld(*inFile)
		if err != nil {
			slog.Error("failed to reload world", "error", err)
			os.Exit(1)
		}
		fresh.Deciders = world.Deciders
		world = fresh

		if epoch%saveEvery == 0 {
			if err := persistence.SaveWorld(*outFile, world); err != nil {
				slog.Error("save failed", "error", err)
				os.Exit(1)
			}
		}
	}

	if err := persistence.SaveWorld(*outFile, world); err != nil {
		slog.Error("final save failed", "error", err)
		os.Exit(1)
	}
	slog.Info("training finished", "file", *outFile, "epochs", totalEpochs)
}

func performanceHeader(w *engine.World) []string {
	header := []string{
		"epoch",
		"orders_placed", "orders_partly_fulfilled", "orders_fulfilled",
		"offers_placed", "offers_partly_fulfilled", "offers_fulfilled",
	}
	for _, c := range w.Companies {
		header = append(header, c.Name+" value", c.Name+" processor count")
	}
	return header
}

func performanceRow(w *engine.World, epoch int) []string {
	stats := w.Market.Stats
	row := []string{
		strconv.Itoa(epoch),
		strconv.FormatUint(stats.OrdersPlaced, 10),
		strconv.FormatUint(stats.OrdersPartlyFulfilled, 10),
		strconv.FormatUint(stats.OrdersFulfilled, 10),
		strconv.FormatUint(stats.OffersPlaced, 10),
		strconv.FormatUint(stats.OffersPartlyFulfilled, 10),
		strconv.FormatUint(stats.OffersFulfilled, 10),
	}
	for _, c := range w.Companies {
		row = append(row,
			strconv.FormatFloat(c.Value, 'f', 0, 64),
			strconv.Itoa(len(c.Processors)),
		)
	}
	return row
}
