package persist

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/neonmatrix/neonmatrix/internal/game"
)

// SessionSink records a finished game with the backend.
type SessionSink interface {
	RecordSession(ctx context.Context, timeTaken, moves int, difficulty, result string) error
}

// Recorder watches a game and, when it completes, records it with the
// backend and saves a local snapshot. Each attached game is recorded at
// most once; attaching a new game resets the guard.
type Recorder struct {
	snapshots *SnapshotStore
	remote    SessionSink
	logger    *slog.Logger

	game      *game.Game
	persisted bool
}

// NewRecorder creates a Recorder. remote may be nil for offline play, in
// which case only local snapshots are written.
func NewRecorder(snapshots *SnapshotStore, remote SessionSink, logger *slog.Logger) *Recorder {
	return &Recorder{
		snapshots: snapshots,
		remote:    remote,
		logger:    logger,
	}
}

// Attach points the recorder at a new game and clears the persisted flag.
func (r *Recorder) Attach(g *game.Game) {
	r.game = g
	r.persisted = false
}

// Persisted reports whether the attached game has already been recorded.
func (r *Recorder) Persisted() bool {
	return r.persisted
}

// MaybeRecord records the attached game if it has completed and has not
// been recorded yet. The remote call is best effort; its failure is logged
// and does not prevent the local snapshot. Returns true if the game was
// recorded by this call.
func (r *Recorder) MaybeRecord(ctx context.Context, now time.Time) (bool, error) {
	if r.game == nil || !r.game.Over() || r.persisted {
		return false, nil
	}
	r.persisted = true

	if r.remote != nil {
		err := r.remote.RecordSession(ctx, r.game.Elapsed(), r.game.Moves(), string(r.game.Difficulty()), r.game.Result())
		if err != nil {
			r.logger.Warn("failed to record session with backend", "error", err)
		}
	}

	if err := r.snapshots.Save(r.game.Snapshot(now)); err != nil {
		return true, fmt.Errorf("failed to save final snapshot: %w", err)
	}
	return true, nil
}

// SaveNow writes a snapshot of the attached game regardless of completion.
// Used for manual saves mid-game.
func (r *Recorder) SaveNow(now time.Time) (game.Snapshot, error) {
	if r.game == nil {
		return game.Snapshot{}, fmt.Errorf("no game attached")
	}
	snap := r.game.Snapshot(now)
	if err := r.snapshots.Save(snap); err != nil {
		return game.Snapshot{}, err
	}
	return snap, nil
}
