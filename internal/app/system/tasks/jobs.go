// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	"github.com/dalemusser/surveydash/internal/app/system/loader"
	"go.uber.org/zap"
)

// CatalogRefreshJob reloads the catalog from the survey backend on every
// tick. Load failures are logged by the loader and never fail the job.
func CatalogRefreshJob(l *loader.Loader, logger *zap.Logger, interval time.Duration) Job {
	return Job{
		Name:     "catalog-refresh",
		Interval: interval,
		Run: func(ctx context.Context) error {
			res := l.Refresh(ctx, loader.SourceInterval)
			if !res.Merged() {
				logger.Debug("periodic refresh merged nothing")
			}
			return nil
		},
	}
}
