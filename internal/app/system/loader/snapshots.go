package loader

import (
	"context"
	"errors"

	snapshotstore "github.com/dalemusser/surveydash/internal/app/store/snapshots"
	"github.com/dalemusser/surveydash/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Hydrate restores the newest persisted snapshot into the catalog. It is a
// no-op without a snapshot store or when nothing has been saved yet.
func (l *Loader) Hydrate(ctx context.Context) error {
	if l.snapshots == nil {
		return nil
	}

	sctx, cancel := context.WithTimeout(ctx, timeouts.Store())
	defer cancel()

	snap, err := l.snapshots.Latest(sctx)
	if errors.Is(err, snapshotstore.ErrNotFound) {
		l.log.Info("no catalog snapshot to restore")
		return nil
	}
	if err != nil {
		l.metrics.snapshotErr.Inc()
		return err
	}

	l.cat.Restore(snap)
	l.metrics.observeCatalog(l.cat)
	n := l.cat.Counts()
	l.log.Info("catalog restored from snapshot",
		zap.String("snapshot_id", snap.ID),
		zap.Time("loaded_at", snap.LoadedAt),
		zap.Int("surveys", n.Surveys),
		zap.Int("questions", n.Questions),
		zap.Int("choices", n.Choices))
	return nil
}

// persist saves the current catalog and prunes old snapshots. Errors are
// logged only.
func (l *Loader) persist(ctx context.Context, log *zap.Logger, source string) {
	if l.snapshots == nil {
		return
	}

	sctx, cancel := context.WithTimeout(ctx, timeouts.Store())
	defer cancel()

	snap := l.cat.Snapshot()
	snap.Source = source
	saved, err := l.snapshots.Save(sctx, snap)
	if err != nil {
		l.metrics.snapshotErr.Inc()
		log.Warn("snapshot save failed", zap.Error(err))
		return
	}

	removed, err := l.snapshots.Prune(sctx, l.keep)
	if err != nil {
		l.metrics.snapshotErr.Inc()
		log.Warn("snapshot prune failed", zap.Error(err))
		return
	}
	log.Debug("snapshot saved",
		zap.String("snapshot_id", saved.ID),
		zap.Int64("pruned", removed))
}
