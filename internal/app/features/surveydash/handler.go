// internal/app/features/surveydash/handler.go
package surveydash

import (
	uierrors "github.com/dalemusser/surveydash/internal/app/features/errors"
	"github.com/dalemusser/surveydash/internal/app/system/catalog"
	"github.com/dalemusser/surveydash/internal/app/system/loader"
	"github.com/dalemusser/surveydash/internal/app/system/ratelimit"
	"github.com/dalemusser/surveydash/internal/app/system/selection"
	"go.uber.org/zap"
)

// Handler serves the survey dashboard: the full page, the HTMX fragments
// behind the two cascading dropdowns, the chart image and the JSON API.
//
// It is constructed once at startup in bootstrap and shares the loader's
// catalog with the periodic refresh job.
type Handler struct {
	Loader    *loader.Loader
	Catalog   *catalog.Catalog
	Selection *selection.Manager
	ErrLog    *uierrors.ErrorLogger
	Log       *zap.Logger

	// RefreshOnPageLoad reloads the catalog before every full page render.
	RefreshOnPageLoad bool

	// RefreshLimiter throttles POST /refresh per client. Nil means unlimited.
	RefreshLimiter *ratelimit.Limiter
}

// NewHandler constructs a dashboard Handler. sel may be nil, in which case
// choices are not remembered across page loads.
func NewHandler(l *loader.Loader, sel *selection.Manager, errLog *uierrors.ErrorLogger, refreshOnPageLoad bool, logger *zap.Logger) *Handler {
	return &Handler{
		Loader:            l,
		Catalog:           l.Catalog(),
		Selection:         sel,
		ErrLog:            errLog,
		Log:               logger,
		RefreshOnPageLoad: refreshOnPageLoad,
	}
}
