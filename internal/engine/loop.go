package engine

import (
	"log/slog"
	"time"
)

// Engine drives the simulation loop with wall-clock pacing.
type Engine struct {
	Tick     uint64        // current tick counter (monotonic, never resets)
	Speed    float64       // multiplier: 1.0 = real-time, 0 = paused
	Interval time.Duration // base tick interval; 0 runs unthrottled
	MaxTicks uint64        // stop after this many ticks; 0 = no limit
	Running  bool

	// Callbacks populated during setup.
	OnTick   func(tick uint64)
	OnReport func(tick uint64) // every ReportTicks ticks

	ReportTicks uint64
}

// NewEngine creates an engine that runs unthrottled at full speed.
func NewEngine() *Engine {
	return &Engine{Speed: 1.0, ReportTicks: 500}
}

// Run starts the simulation loop. Blocks until Stop is called or MaxTicks
// is reached.
func (e *Engine) Run() {
	e.Running = true
	slog.Info("simulation engine started", "tick", e.Tick, "speed", e.Speed, "interval", e.Interval)

	for e.Running {
		if e.Speed <= 0 {
			// Paused. Sleep briefly and check again.
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()
		e.step()

		if e.MaxTicks > 0 && e.Tick >= e.MaxTicks {
			e.Running = false
			break
		}

		// Sleep out the remainder of the tick interval, adjusted for speed.
		if e.Interval > 0 {
			elapsed := time.Since(start)
			target := time.Duration(float64(e.Interval) / e.Speed)
			if elapsed < target {
				time.Sleep(target - elapsed)
			}
		}
	}

	slog.Info("simulation engine stopped", "tick", e.Tick)
}

// Stop halts the simulation loop.
func (e *Engine) Stop() {
	e.Running = false
}

func (e *Engine) step() {
	e.Tick++
	if e.OnTick != nil {
		e.OnTick(e.Tick)
	}
	if e.ReportTicks > 0 && e.Tick%e.ReportTicks == 0 && e.OnReport != nil {
		e.OnReport(e.Tick)
	}
}
