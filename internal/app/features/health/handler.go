package health

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/surveydash/internal/app/system/surveyapi"
	"github.com/dalemusser/surveydash/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Handler holds dependencies needed for health checks.
type Handler struct {
	Backend *surveyapi.Client
	Client  *mongo.Client // nil when snapshot persistence is disabled
	Log     *zap.Logger
}

// NewHandler constructs a health Handler. client may be nil.
func NewHandler(backend *surveyapi.Client, client *mongo.Client, logger *zap.Logger) *Handler {
	return &Handler{
		Backend: backend,
		Client:  client,
		Log:     logger,
	}
}

// healthResponse is the JSON structure for the health check response.
type healthResponse struct {
	Status   string `json:"status"`
	Backend  string `json:"backend"`
	Database string `json:"database"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "backend":"reachable", "database":"connected" }
//
// "database" is "disabled" when no MongoDB is configured. A failed database
// ping degrades the status but still answers 200, since the dashboard keeps
// serving from memory. An unreachable backend answers 503:
//
//	{ "status":"error", "backend":"unreachable", "message":"Survey backend unavailable", "error":"…" }
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	w.Header().Set("Content-Type", "application/json")

	resp := healthResponse{
		Status:   "ok",
		Backend:  "reachable",
		Database: "disabled",
	}

	if h.Client != nil {
		resp.Database = "connected"
		if err := h.Client.Ping(ctx, readpref.Primary()); err != nil {
			h.Log.Warn("health-check: mongo ping failed", zap.Error(err))
			resp.Status = "degraded"
			resp.Database = "disconnected"
		}
	}

	if err := h.Backend.Ping(ctx); err != nil {
		h.Log.Error("health-check: survey backend unreachable",
			zap.String("backend", h.Backend.BaseURL()),
			zap.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		resp.Status = "error"
		resp.Backend = "unreachable"
		resp.Message = "Survey backend unavailable"
		resp.Error = err.Error()
		_ = json.NewEncoder(w).Encode(resp)
		return
	}

	_ = json.NewEncoder(w).Encode(resp)
}
