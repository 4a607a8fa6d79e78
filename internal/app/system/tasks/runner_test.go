package tasks

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dalemusser/surveydash/internal/app/system/catalog"
	"github.com/dalemusser/surveydash/internal/app/system/loader"
	"github.com/dalemusser/surveydash/internal/app/system/surveyapi"
	"github.com/dalemusser/surveydash/internal/testutil"
	"go.uber.org/zap"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within 2s")
}

func TestRunner_RunsJobsUntilStopped(t *testing.T) {
	var runs atomic.Int32
	r := NewRunner(zap.NewNop())
	r.Add(Job{
		Name:     "count",
		Interval: 10 * time.Millisecond,
		Run: func(ctx context.Context) error {
			runs.Add(1)
			return errors.New("errors are logged, not fatal")
		},
	})
	r.Start()

	waitFor(t, func() bool { return runs.Load() >= 3 })
	r.Stop()

	after := runs.Load()
	time.Sleep(30 * time.Millisecond)
	if runs.Load() != after {
		t.Errorf("job ran after Stop: got %d, want %d", runs.Load(), after)
	}

	r.Stop()
}

func TestRunner_SkipsDisabledJobs(t *testing.T) {
	r := NewRunner(zap.NewNop())
	r.Add(Job{Name: "off", Interval: 0, Run: func(context.Context) error { return nil }})
	if r.Len() != 0 {
		t.Errorf("Len: got %d, want 0", r.Len())
	}
	r.Start()
	r.Stop()
}

func TestCatalogRefreshJob(t *testing.T) {
	b := testutil.NewBackend(t)
	cat := catalog.New()
	l := loader.New(surveyapi.New(b.URL, time.Second), cat, zap.NewNop(), loader.Options{
		AdminSurveyURL: "http://localhost:8000/admin/survey/survey/{id}",
	})

	r := NewRunner(zap.NewNop())
	r.Add(CatalogRefreshJob(l, zap.NewNop(), 10*time.Millisecond))
	r.Start()
	defer r.Stop()

	waitFor(t, func() bool { return cat.Counts().Surveys == 2 })
	if b.AllHits() < 1 {
		t.Errorf("backend was not called")
	}
}
