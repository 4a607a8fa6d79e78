// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/surveydash/internal/app/system/loader"
	"github.com/dalemusser/surveydash/internal/app/system/tasks"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup warms the catalog before the HTTP handler is built: it restores
// the newest snapshot (if persistence is on), performs the first backend
// load, and starts the periodic refresh job.
//
// Neither step is fatal. A dashboard with an unreachable backend still
// starts and serves whatever the snapshot held.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if err := deps.Loader.Hydrate(ctx); err != nil {
		logger.Warn("catalog snapshot restore failed", zap.Error(err))
	}

	res := deps.Loader.Refresh(ctx, loader.SourceStartup)
	n := deps.Loader.Catalog().Counts()
	logger.Info("initial catalog load",
		zap.Bool("merged", res.Merged()),
		zap.Int("surveys", n.Surveys),
		zap.Int("questions", n.Questions),
		zap.Int("choices", n.Choices))

	deps.Tasks.Add(tasks.CatalogRefreshJob(deps.Loader, logger, appCfg.RefreshInterval))
	deps.Tasks.Start()
	return nil
}
