// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	snapshotstore "github.com/dalemusser/surveydash/internal/app/store/snapshots"
	"github.com/dalemusser/surveydash/internal/app/system/loader"
	"github.com/dalemusser/surveydash/internal/app/system/ratelimit"
	"github.com/dalemusser/surveydash/internal/app/system/surveyapi"
	"github.com/dalemusser/surveydash/internal/app/system/tasks"
	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds the back-end dependencies shared by every lifecycle hook.
// All fields are pointers, so the copies WAFFLE passes around share state.
type DBDeps struct {
	// MongoDB, nil when snapshot persistence is disabled.
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database
	Snapshots     *snapshotstore.Store

	// Survey backend and the catalog it fills.
	Backend *surveyapi.Client
	Loader  *loader.Loader

	// Background jobs, started in Startup and stopped in Shutdown.
	Tasks *tasks.Runner

	// Per-client limit on manual refreshes, nil when disabled.
	RefreshLimiter *ratelimit.Limiter

	// Metrics registry served on /metrics.
	Registry *prometheus.Registry
}
