// Package sim drives the game world with a fixed-step update loop and
// handles its graceful shutdown.
package sim

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dkoller/skirmish/internal/game"
)

// Loop advances a game world in fixed simulated steps on a real-time ticker.
// The real interval and the simulated step are separate so tests can run the
// clock faster than wall time.
type Loop struct {
	game     *game.Game
	interval time.Duration
	step     float64
	maxTicks int
	logger   *zap.Logger

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewLoop creates a loop that calls g.Update(step) every interval.
//
// Precondition: interval must be positive and step must be positive.
// Precondition: maxTicks >= 0; zero means run until stopped.
func NewLoop(g *game.Game, interval time.Duration, step float64, maxTicks int, logger *zap.Logger) *Loop {
	if interval <= 0 {
		panic("sim: loop interval must be positive")
	}
	if step <= 0 {
		panic("sim: loop step must be positive")
	}
	return &Loop{
		game:     g,
		interval: interval,
		step:     step,
		maxTicks: maxTicks,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

// Start runs the loop. It blocks until Stop is called or, when maxTicks is
// positive, until that many updates have run.
//
// Postcondition: the world has advanced a whole number of steps.
func (l *Loop) Start() error {
	start := time.Now()
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	ticks := 0
	for {
		select {
		case <-l.stopCh:
			l.logger.Info("simulation stopped",
				zap.Int("ticks", ticks),
				zap.Duration("uptime", time.Since(start)),
			)
			return nil
		case <-ticker.C:
			l.game.Update(l.step)
			ticks++
			if l.maxTicks > 0 && ticks >= l.maxTicks {
				l.logger.Info("simulation finished",
					zap.Int("ticks", ticks),
					zap.Float64("simulated_seconds", float64(ticks)*l.step),
				)
				return nil
			}
		}
	}
}

// Stop ends the loop. Safe to call more than once and from any goroutine.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() { close(l.stopCh) })
}
