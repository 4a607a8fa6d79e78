package surveydash_test

import (
	"fmt"
	"os"
	"testing"

	_ "github.com/dalemusser/surveydash/internal/app/features/shared/views"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// TestMain boots the template engine with the shared layout and the
// dashboard set. A boot failure fails the whole package.
func TestMain(m *testing.M) {
	logger := zap.NewNop()
	eng := templates.New(false)
	if err := eng.Boot(logger); err != nil {
		fmt.Fprintf(os.Stderr, "template engine boot: %v\n", err)
		os.Exit(1)
	}
	templates.UseEngine(eng, logger)
	os.Exit(m.Run())
}
