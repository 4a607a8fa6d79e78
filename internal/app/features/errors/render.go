// internal/app/features/errors/render.go
package errors

import (
	"net/http"

	"github.com/dalemusser/surveydash/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// ErrorLogger logs server-side failures and answers the client without
// exposing the underlying error.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger creates an ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: logger}
}

// LogServerError logs err with msg and request context, then responds with
// 500. HTML clients get the error page with userMsg and a back link; others
// get userMsg as plain text.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg, backURL string) {
	e.log.Error(msg,
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path))

	if !wantsHTML(r) {
		http.Error(w, userMsg, http.StatusInternalServerError)
		return
	}

	vm := viewdata.NewBaseVM(r, "Something went wrong", backURL)
	if backURL != "" {
		vm.BackURL = backURL
	}
	w.WriteHeader(http.StatusInternalServerError)
	templates.Render(w, r, "error_page", pageData{BaseVM: vm, Message: userMsg})
}
