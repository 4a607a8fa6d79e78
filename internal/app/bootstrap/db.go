// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"
	"time"

	snapshotstore "github.com/dalemusser/surveydash/internal/app/store/snapshots"
	"github.com/dalemusser/surveydash/internal/app/system/catalog"
	"github.com/dalemusser/surveydash/internal/app/system/loader"
	"github.com/dalemusser/surveydash/internal/app/system/ratelimit"
	"github.com/dalemusser/surveydash/internal/app/system/surveyapi"
	"github.com/dalemusser/surveydash/internal/app/system/tasks"
	"github.com/dalemusser/surveydash/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB builds the back-end dependencies: the survey backend client, the
// catalog loader and, when configured, the MongoDB snapshot store.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	timeouts.Configure(timeouts.Config{Fetch: appCfg.BackendTimeout})

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	deps := DBDeps{
		Backend:  surveyapi.New(appCfg.BackendURL, appCfg.BackendTimeout),
		Tasks:    tasks.NewRunner(logger),
		Registry: reg,
	}
	if appCfg.ManualRefreshLimit > 0 {
		deps.RefreshLimiter = ratelimit.New(appCfg.ManualRefreshLimit, time.Minute)
	}

	if appCfg.SnapshotsEnabled() {
		client, err := connectMongo(ctx, appCfg.MongoURI)
		if err != nil {
			logger.Error("mongo connect failed", zap.Error(err))
			return DBDeps{}, err
		}
		deps.MongoClient = client
		deps.MongoDatabase = client.Database(appCfg.MongoDatabase)
		deps.Snapshots = snapshotstore.New(deps.MongoDatabase)
		logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))
	} else {
		logger.Info("mongo_uri not set; catalog snapshots disabled")
	}

	deps.Loader = loader.New(deps.Backend, catalog.New(), logger, loader.Options{
		AdminSurveyURL: appCfg.AdminSurveyURL,
		Snapshots:      deps.Snapshots,
		SnapshotKeep:   appCfg.SnapshotKeep,
		Metrics:        loader.NewMetrics(reg),
	})

	return deps, nil
}

func connectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	cctx, cancel := context.WithTimeout(ctx, timeouts.Store())
	defer cancel()

	client, err := mongo.Connect(cctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(cctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

// EnsureSchema creates the snapshot indexes when persistence is enabled.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.MongoDatabase == nil {
		return nil
	}
	sctx, cancel := context.WithTimeout(ctx, timeouts.Store())
	defer cancel()

	if err := snapshotstore.EnsureIndexes(sctx, deps.MongoDatabase); err != nil {
		logger.Error("ensure snapshot indexes failed", zap.Error(err))
		return fmt.Errorf("ensure snapshot indexes: %w", err)
	}
	return nil
}
