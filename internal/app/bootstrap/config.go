// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dalemusser/surveydash/internal/app/system/loader"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for the survey dashboard.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: backend_url, mongo_uri, etc.
//   - Environment variables: SURVEYDASH_BACKEND_URL, SURVEYDASH_MONGO_URI, etc.
//   - Command-line flags: --backend_url, --mongo_uri, etc.
var appConfigKeys = []config.AppKey{
	// Survey backend
	{Name: "backend_url", Default: "http://localhost:8000", Desc: "Survey backend base URL"},
	{Name: "admin_survey_url", Default: "http://localhost:8000/admin/survey/survey/{id}", Desc: "Admin detail URL of a survey; {id} is replaced with the survey id"},
	{Name: "backend_timeout", Default: "10s", Desc: "Timeout for a single backend request (e.g., 10s, 1m)"},

	// Refresh
	{Name: "refresh_interval", Default: "0s", Desc: "Reload the catalog on this interval; 0 disables periodic refresh"},
	{Name: "refresh_on_page_load", Default: true, Desc: "Reload the catalog before every dashboard page render"},
	{Name: "manual_refresh_limit", Default: 6, Desc: "Manual refreshes allowed per client per minute; 0 disables the limit"},

	// MongoDB snapshots
	{Name: "mongo_uri", Default: "", Desc: "MongoDB connection URI for catalog snapshots (blank disables persistence)"},
	{Name: "mongo_database", Default: "surveydash", Desc: "MongoDB database name"},
	{Name: "snapshot_keep", Default: loader.DefaultSnapshotKeep, Desc: "Number of catalog snapshots to keep"},

	// Session / CSRF
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Selection cookie signing key (must be strong in production)"},
	{Name: "session_name", Default: "surveydash-session", Desc: "Selection cookie name"},
	{Name: "csrf_key", Default: "dev-only-csrf-key-change-me-0123", Desc: "32-byte CSRF key (must be strong in production)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig merges .env files, config files,
// environment variables (WAFFLE_* for core, SURVEYDASH_* for the app) and
// flags with precedence: flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "SURVEYDASH", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		BackendURL:     strings.TrimRight(appValues.String("backend_url"), "/"),
		AdminSurveyURL: appValues.String("admin_survey_url"),
		BackendTimeout: appValues.Duration("backend_timeout", 10*time.Second),

		RefreshInterval:    appValues.Duration("refresh_interval", 0),
		RefreshOnPageLoad:  appValues.Bool("refresh_on_page_load"),
		ManualRefreshLimit: appValues.Int("manual_refresh_limit"),

		MongoURI:      appValues.String("mongo_uri"),
		MongoDatabase: appValues.String("mongo_database"),
		SnapshotKeep:  appValues.Int("snapshot_keep"),

		SessionKey:  appValues.String("session_key"),
		SessionName: appValues.String("session_name"),
		CSRFKey:     appValues.String("csrf_key"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := validateHTTPURL(appCfg.BackendURL); err != nil {
		return fmt.Errorf("invalid backend_url: %w", err)
	}
	if err := validateHTTPURL(strings.ReplaceAll(appCfg.AdminSurveyURL, loader.IDPlaceholder, "0")); err != nil {
		return fmt.Errorf("invalid admin_survey_url: %w", err)
	}
	if appCfg.BackendTimeout <= 0 {
		return fmt.Errorf("backend_timeout must be positive, got %s", appCfg.BackendTimeout)
	}
	if appCfg.RefreshInterval < 0 {
		return fmt.Errorf("refresh_interval must not be negative, got %s", appCfg.RefreshInterval)
	}
	if appCfg.ManualRefreshLimit < 0 {
		return fmt.Errorf("manual_refresh_limit must not be negative, got %d", appCfg.ManualRefreshLimit)
	}

	if appCfg.SnapshotsEnabled() {
		if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
			logger.Error("invalid MongoDB URI", zap.Error(err))
			return fmt.Errorf("invalid MongoDB URI: %w", err)
		}
		if appCfg.MongoDatabase == "" {
			return fmt.Errorf("mongo_database is required when mongo_uri is set")
		}
	}

	if len(appCfg.CSRFKey) != 32 {
		return fmt.Errorf("csrf_key must be exactly 32 bytes, got %d", len(appCfg.CSRFKey))
	}
	if coreCfg != nil && coreCfg.Env == "prod" && strings.HasPrefix(appCfg.SessionKey, "dev-only") {
		return fmt.Errorf("session_key must be set in production")
	}
	return nil
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https: %q", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host: %q", raw)
	}
	return nil
}
