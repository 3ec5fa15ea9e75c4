package persist

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// Sample is one system's update duration in one frame.
type Sample struct {
	Frame    int64
	System   string
	Took     time.Duration
	Entities int
}

var sampleColumns = []string{"run_id", "frame", "system", "micros", "entities"}

type ProfileRepo struct {
	db *DB
}

func NewProfileRepo(db *DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

// BeginRun records a new profiling run and returns its id.
func (r *ProfileRepo) BeginRun(ctx context.Context, label string, tickRate time.Duration) (int64, error) {
	var id int64
	err := r.db.Pool.QueryRow(ctx,
		`INSERT INTO profile_runs (label, tick_rate_us) VALUES ($1, $2) RETURNING id`,
		label, tickRate.Microseconds(),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("begin profile run: %w", err)
	}
	return id, nil
}

// WriteSamples bulk-inserts samples for runID with COPY.
func (r *ProfileRepo) WriteSamples(ctx context.Context, runID int64, samples []Sample) error {
	if len(samples) == 0 {
		return nil
	}
	n, err := r.db.Pool.CopyFrom(ctx,
		pgx.Identifier{"frame_samples"},
		sampleColumns,
		sampleRows(runID, samples),
	)
	if err != nil {
		return fmt.Errorf("copy frame samples: %w", err)
	}
	if int(n) != len(samples) {
		return fmt.Errorf("copy frame samples: wrote %d of %d rows", n, len(samples))
	}
	return nil
}

// FinishRun stamps the run's end time and frame count.
func (r *ProfileRepo) FinishRun(ctx context.Context, runID int64, frames int64) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE profile_runs SET finished_at = now(), frames = $2 WHERE id = $1`,
		runID, frames,
	)
	if err != nil {
		return fmt.Errorf("finish profile run %d: %w", runID, err)
	}
	return nil
}

func sampleRows(runID int64, samples []Sample) pgx.CopyFromSource {
	return pgx.CopyFromSlice(len(samples), func(i int) ([]any, error) {
		s := samples[i]
		return []any{runID, s.Frame, s.System, s.Took.Microseconds(), int32(s.Entities)}, nil
	})
}

// RunSink binds a ProfileRepo to one run so it can be handed to the
// profiler system.
type RunSink struct {
	repo  *ProfileRepo
	runID int64
}

func NewRunSink(repo *ProfileRepo, runID int64) *RunSink {
	return &RunSink{repo: repo, runID: runID}
}

func (s *RunSink) WriteSamples(ctx context.Context, samples []Sample) error {
	return s.repo.WriteSamples(ctx, s.runID, samples)
}

func (s *RunSink) Finish(ctx context.Context, frames int64) error {
	return s.repo.FinishRun(ctx, s.runID, frames)
}
