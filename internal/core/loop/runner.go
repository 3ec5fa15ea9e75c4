package loop

import (
	"context"
	"time"

	"github.com/prism3d/engine/internal/core/ecs"
	"go.uber.org/zap"
)

// Runner drives a World at a fixed tick rate. Each tick hands the measured
// wall-clock delta to World.Update.
type Runner struct {
	world     *ecs.World
	tickRate  time.Duration
	maxFrames int
	log       *zap.Logger
	frames    int
	now       func() time.Time
	stop      func() bool
}

// NewRunner creates a runner. maxFrames <= 0 runs until the context ends.
func NewRunner(world *ecs.World, tickRate time.Duration, maxFrames int, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	if tickRate <= 0 {
		tickRate = 16 * time.Millisecond
	}
	return &Runner{
		world:     world,
		tickRate:  tickRate,
		maxFrames: maxFrames,
		log:       log,
		now:       time.Now,
	}
}

// StopWhen makes Run return after any frame for which fn reports true.
func (r *Runner) StopWhen(fn func() bool) { r.stop = fn }

// Frames returns the number of completed frames.
func (r *Runner) Frames() int { return r.frames }

// Tick runs one frame with the given delta.
func (r *Runner) Tick(dt time.Duration) {
	r.world.Update(dt)
	r.frames++
}

// Run ticks until ctx is done or maxFrames frames have run, then shuts the
// world down. It returns ctx.Err() only when cancelled before maxFrames.
func (r *Runner) Run(ctx context.Context) error {
	defer r.world.Shutdown()

	ticker := time.NewTicker(r.tickRate)
	defer ticker.Stop()

	last := r.now()
	for {
		select {
		case <-ctx.Done():
			r.log.Info("frame loop stopped", zap.Int("frames", r.frames))
			return ctx.Err()
		case <-ticker.C:
			now := r.now()
			r.Tick(now.Sub(last))
			last = now
			if r.maxFrames > 0 && r.frames >= r.maxFrames {
				r.log.Info("frame limit reached", zap.Int("frames", r.frames))
				return nil
			}
			if r.stop != nil && r.stop() {
				r.log.Info("stop requested", zap.Int("frames", r.frames))
				return nil
			}
		}
	}
}
