// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"net/http"
	"time"

	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/gorilla/csrf"
)

// DefaultSiteName is shown in page titles and the header.
const DefaultSiteName = "Survey Admin"

// BaseVM contains common fields for all view models.
// Embed this struct in feature-specific view models:
//
//	type pageData struct {
//	    viewdata.BaseVM
//	    // page-specific fields...
//	}
type BaseVM struct {
	SiteName string

	// Page context
	Title       string
	BackURL     string
	CurrentPath string

	// CSRF protection
	CSRFToken string

	// Data freshness, zero when nothing has loaded yet.
	LoadedAt time.Time
}

// NewBaseVM creates a populated BaseVM for a page.
func NewBaseVM(r *http.Request, title, backDefault string) BaseVM {
	return BaseVM{
		SiteName:    DefaultSiteName,
		Title:       title,
		BackURL:     httpnav.ResolveBackURL(r, backDefault),
		CurrentPath: httpnav.CurrentPath(r),
		CSRFToken:   csrf.Token(r),
	}
}

// HasLoaded reports whether LoadedAt is set.
func (vm BaseVM) HasLoaded() bool {
	return !vm.LoadedAt.IsZero()
}
