// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables (SURVEYDASH_*), configuration
// files, or command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig
// covers the framework-level settings: ports, TLS, logging, request limits.
type AppConfig struct {
	// Survey backend
	BackendURL     string        // Root of the survey backend (e.g., http://localhost:8000)
	AdminSurveyURL string        // Admin detail page of a survey, with {id} placeholder
	BackendTimeout time.Duration // Per-request deadline for backend calls

	// Refresh behaviour
	RefreshInterval    time.Duration // Periodic reload interval; 0 disables the job
	RefreshOnPageLoad  bool          // Reload before every full dashboard render
	ManualRefreshLimit int           // Manual refreshes allowed per client per minute; 0 disables the limit

	// MongoDB snapshot persistence (optional; empty URI disables it)
	MongoURI      string
	MongoDatabase string
	SnapshotKeep  int // Snapshots kept after each save

	// Session and CSRF
	SessionKey  string // Secret key for signing the selection cookie
	SessionName string // Cookie name for the selection cookie
	CSRFKey     string // 32-byte key for CSRF tokens
}

// SnapshotsEnabled reports whether MongoDB persistence is configured.
func (c AppConfig) SnapshotsEnabled() bool {
	return c.MongoURI != ""
}
