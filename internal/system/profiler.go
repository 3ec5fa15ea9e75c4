package system

import (
	"context"
	"time"

	"github.com/prism3d/engine/internal/core/ecs"
	"github.com/prism3d/engine/internal/persist"
	"go.uber.org/zap"
)

// ProfileSink receives buffered frame samples. The slice is reused after
// WriteSamples returns.
type ProfileSink interface {
	WriteSamples(ctx context.Context, samples []persist.Sample) error
}

// finisher is implemented by sinks that record the end of a run.
type finisher interface {
	Finish(ctx context.Context, frames int64) error
}

// ProfilerSystem buffers per-system update durations and flushes them to a
// sink every flushEvery frames and at shutdown. Registered near the end, so
// systems after it report the previous frame's timing.
type ProfilerSystem struct {
	sink       ProfileSink
	flushEvery int
	log        *zap.Logger
	frame      int64
	buf        []persist.Sample
	written    int
}

func NewProfilerSystem(sink ProfileSink, flushEvery int, log *zap.Logger) *ProfilerSystem {
	if log == nil {
		log = zap.NewNop()
	}
	if flushEvery <= 0 {
		flushEvery = 1
	}
	return &ProfilerSystem{
		sink:       sink,
		flushEvery: flushEvery,
		log:        log,
		buf:        make([]persist.Sample, 0, 16*flushEvery),
	}
}

func (s *ProfilerSystem) SystemName() string { return "profiler" }

func (s *ProfilerSystem) Update(w *ecs.World, _ time.Duration, _ []ecs.EntityID) {
	s.frame++
	sm := w.SystemManager()
	w.SystemTimings(func(name string, took time.Duration) {
		n := 0
		if key, ok := sm.KeyByName(name); ok {
			n = sm.SubscriberCount(key)
		}
		s.buf = append(s.buf, persist.Sample{Frame: s.frame, System: name, Took: took, Entities: n})
	})
	if s.frame%int64(s.flushEvery) == 0 {
		s.flush()
	}
}

func (s *ProfilerSystem) OnShutdown(_ *ecs.World) {
	s.flush()
	if f, ok := s.sink.(finisher); ok {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := f.Finish(ctx, s.frame); err != nil {
			s.log.Error("finish profile run", zap.Error(err))
		}
	}
	s.log.Info("profiler stopped", zap.Int64("frames", s.frame), zap.Int("samples", s.written))
}

func (s *ProfilerSystem) flush() {
	if len(s.buf) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.sink.WriteSamples(ctx, s.buf); err != nil {
		s.log.Warn("PROFILER::WARNING dropping samples", zap.Int("samples", len(s.buf)), zap.Error(err))
	} else {
		s.written += len(s.buf)
	}
	s.buf = s.buf[:0]
}

// Written returns the number of samples the sink accepted.
func (s *ProfilerSystem) Written() int { return s.written }
