// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	errorsfeature "github.com/dalemusser/surveydash/internal/app/features/errors"
	healthfeature "github.com/dalemusser/surveydash/internal/app/features/health"
	homefeature "github.com/dalemusser/surveydash/internal/app/features/home"
	_ "github.com/dalemusser/surveydash/internal/app/features/shared/views"
	surveydashfeature "github.com/dalemusser/surveydash/internal/app/features/surveydash"
	"github.com/dalemusser/surveydash/internal/app/system/selection"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, back-end setup and Startup have
// completed. It boots the template engine, builds the selection cookie
// manager and mounts the feature routers: health and metrics outside CSRF
// protection, the home redirect and the dashboard inside it.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"

	sel, err := selection.NewManager(appCfg.SessionKey, appCfg.SessionName, secure, logger)
	if err != nil {
		logger.Error("selection manager init failed", zap.Error(err))
		return nil, err
	}

	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	errLog := errorsfeature.NewErrorLogger(logger)
	errorsHandler := errorsfeature.NewHandler()

	r := chi.NewRouter()
	r.NotFound(errorsHandler.NotFound)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.Backend, deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Prometheus scrape endpoint
	r.Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))

	r.Group(func(pr chi.Router) {
		pr.Use(markPlaintext(secure))
		pr.Use(csrf.Protect([]byte(appCfg.CSRFKey),
			csrf.Secure(secure),
			csrf.Path("/"),
			csrf.SameSite(csrf.SameSiteLaxMode),
		))

		homeHandler := homefeature.NewHandler(logger)
		pr.Mount("/", homefeature.Routes(homeHandler))

		dashHandler := surveydashfeature.NewHandler(deps.Loader, sel, errLog, appCfg.RefreshOnPageLoad, logger)
		dashHandler.RefreshLimiter = deps.RefreshLimiter
		pr.Mount("/dashboard", surveydashfeature.Routes(dashHandler))
	})

	return r, nil
}

// markPlaintext tells the CSRF middleware that requests arriving without TLS
// outside production are plain HTTP, so its origin checks do not assume
// https.
func markPlaintext(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !secure && r.TLS == nil {
				r = csrf.PlaintextHTTPRequest(r)
			}
			next.ServeHTTP(w, r)
		})
	}
}
