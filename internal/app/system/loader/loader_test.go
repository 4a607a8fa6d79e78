package loader

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	snapshotstore "github.com/dalemusser/surveydash/internal/app/store/snapshots"
	"github.com/dalemusser/surveydash/internal/app/system/catalog"
	"github.com/dalemusser/surveydash/internal/app/system/surveyapi"
	"github.com/dalemusser/surveydash/internal/domain/models"
	"github.com/dalemusser/surveydash/internal/testutil"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
)

const adminURL = "http://localhost:8000/admin/survey/survey/{id}"

func newLoader(t *testing.T, b *testutil.Backend, opts Options) *Loader {
	t.Helper()
	if opts.AdminSurveyURL == "" {
		opts.AdminSurveyURL = adminURL
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics(prometheus.NewRegistry())
	}
	client := surveyapi.New(b.URL, 5*time.Second)
	return New(client, catalog.New(), zap.NewNop(), opts)
}

func TestRefresh_LoadsCatalog(t *testing.T) {
	b := testutil.NewBackend(t)
	l := newLoader(t, b, Options{})

	res := l.Refresh(context.Background(), SourceStartup)
	if !res.Surveys || !res.Questions || !res.Choices || !res.Popular {
		t.Fatalf("Refresh result: got %+v, want everything merged", res)
	}

	n := l.Catalog().Counts()
	if n.Surveys != 2 || n.Questions != 3 || n.Choices != 5 {
		t.Errorf("Counts: got %+v, want 2/3/5", n)
	}

	qs := l.Catalog().QuestionsFor(3)
	if len(qs) != 2 || qs[0].ID != 10 || qs[1].ID != 12 {
		t.Errorf("QuestionsFor(3): got %+v, want questions 10 then 12", qs)
	}

	got := promtest.ToFloat64(l.metrics.loads.WithLabelValues(endpointAll, outcomeOK))
	if got != 1 {
		t.Errorf("ok loads: got %v, want 1", got)
	}
	if got := promtest.ToFloat64(l.metrics.records.WithLabelValues("choices")); got != 5 {
		t.Errorf("choices gauge: got %v, want 5", got)
	}
}

func TestRefresh_PopularSurvey(t *testing.T) {
	b := testutil.NewBackend(t)
	l := newLoader(t, b, Options{})

	l.Refresh(context.Background(), SourceStartup)

	p, ok := l.Catalog().Popular()
	if !ok {
		t.Fatalf("popular survey not set")
	}
	if p.Name != "Pets" {
		t.Errorf("popular name: got %q, want %q", p.Name, "Pets")
	}
	if p.ID != 3 {
		t.Errorf("popular id: got %v, want 3", p.ID)
	}
	if !strings.Contains(p.LinkURL, "/3") {
		t.Errorf("popular link: got %q, want it to contain /3", p.LinkURL)
	}
	if p.LinkURL != "http://localhost:8000/admin/survey/survey/3" {
		t.Errorf("popular link: got %q", p.LinkURL)
	}
}

func TestRefresh_PopularStringEncoded(t *testing.T) {
	b := testutil.NewBackend(t)
	b.SetPopular(testutil.QuotedJSON(testutil.SamplePopular))
	l := newLoader(t, b, Options{})

	res := l.Refresh(context.Background(), SourceStartup)
	if !res.Popular {
		t.Fatalf("string-encoded popular survey should merge")
	}
	if p, _ := l.Catalog().Popular(); p.Name != "Pets" {
		t.Errorf("popular name: got %q, want Pets", p.Name)
	}
}

func TestRefresh_PopularEmptyLeavesUnset(t *testing.T) {
	for _, body := range []string{"[]", "null"} {
		b := testutil.NewBackend(t)
		b.SetPopular(body)
		l := newLoader(t, b, Options{})

		l.Refresh(context.Background(), SourceStartup)
		if _, ok := l.Catalog().Popular(); ok {
			t.Errorf("popular body %s: popular survey should stay unset", body)
		}
	}
}

func TestRefresh_MalformedCollectionKeepsPrevious(t *testing.T) {
	b := testutil.NewBackend(t)
	l := newLoader(t, b, Options{})
	l.Refresh(context.Background(), SourceStartup)

	hamster := `[{"model": "survey.choice", "pk": 200, "fields": {"question": 10, "choice_text": "Hamster", "votes": 1}}]`
	b.SetAll(testutil.AllSurveysBody(`{not json`, `[{"pk": "x"}]`, hamster))
	b.SetPopular(`[{"pk": }`)

	res := l.Refresh(context.Background(), SourcePageLoad)
	if res.Surveys || res.Questions || res.Popular {
		t.Errorf("malformed parts should not merge: %+v", res)
	}
	if !res.Choices {
		t.Errorf("valid choices should still merge")
	}

	n := l.Catalog().Counts()
	if n.Surveys != 2 {
		t.Errorf("surveys after malformed load: got %d, want 2", n.Surveys)
	}
	if n.Questions != 3 {
		t.Errorf("questions after malformed load: got %d, want 3", n.Questions)
	}
	choices := l.Catalog().ChoicesFor(10)
	if len(choices) != 1 || choices[0].Text != "Hamster" {
		t.Errorf("ChoicesFor(10): got %+v, want only Hamster", choices)
	}
	if p, ok := l.Catalog().Popular(); !ok || p.Name != "Pets" {
		t.Errorf("popular after malformed load: got %+v, %v", p, ok)
	}

	got := promtest.ToFloat64(l.metrics.loads.WithLabelValues(endpointAll, outcomePartial))
	if got != 1 {
		t.Errorf("partial loads: got %v, want 1", got)
	}
}

func TestRefresh_BackendDown(t *testing.T) {
	b := testutil.NewBackend(t)
	b.SetAllStatus(http.StatusInternalServerError)
	b.SetPopularStatus(http.StatusBadGateway)
	l := newLoader(t, b, Options{})

	res := l.Refresh(context.Background(), SourceStartup)
	if res.Merged() {
		t.Errorf("nothing should merge when the backend fails: %+v", res)
	}
	if n := l.Catalog().Counts(); n != (catalog.Counts{}) {
		t.Errorf("Counts: got %+v, want zero", n)
	}
	if got := promtest.ToFloat64(l.metrics.loads.WithLabelValues(endpointAll, outcomeFailed)); got != 1 {
		t.Errorf("failed all-surveys loads: got %v, want 1", got)
	}
	if got := promtest.ToFloat64(l.metrics.loads.WithLabelValues(endpointPopular, outcomeFailed)); got != 1 {
		t.Errorf("failed popular loads: got %v, want 1", got)
	}
}

func TestRefresh_KeepsLabelsVerbatim(t *testing.T) {
	b := testutil.NewBackend(t)
	b.SetAll(testutil.AllSurveysBody(
		`[{"model": "survey.survey", "pk": 1, "fields": {"name": "Food &amp;  Drink"}}]`,
		`[{"model": "survey.question", "pk": 2, "fields": {"survey": 1, "question_text": "Best<script>alert(1)</script>?"}}]`,
		`[{"model": "survey.choice", "pk": 3, "fields": {"question": 2, "choice_text": "<None>", "votes": 1}}]`,
	))
	l := newLoader(t, b, Options{})

	l.Refresh(context.Background(), SourceStartup)

	if s := l.Catalog().Surveys(); len(s) != 1 || s[0].Name != "Food &amp;  Drink" {
		t.Errorf("survey name: got %+v, want Food &amp;  Drink", s)
	}
	if q := l.Catalog().QuestionsFor(1); len(q) != 1 || q[0].Text != "Best<script>alert(1)</script>?" {
		t.Errorf("question text: got %+v, want the raw text", q)
	}
	if c := l.Catalog().ChoicesFor(2); len(c) != 1 || c[0].Text != "<None>" {
		t.Errorf("choice text: got %+v, want <None>", c)
	}
}

func TestRefresh_Coalesces(t *testing.T) {
	b := testutil.NewBackend(t)
	b.SetDelay(200 * time.Millisecond)
	l := newLoader(t, b, Options{})

	const callers = 5
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			l.Refresh(context.Background(), SourcePageLoad)
		}()
	}
	close(start)
	wg.Wait()

	if b.AllHits() != 1 {
		t.Errorf("all-surveys hits: got %d, want 1", b.AllHits())
	}
	if b.PopularHits() != 1 {
		t.Errorf("popular hits: got %d, want 1", b.PopularHits())
	}
	if got := promtest.ToFloat64(l.metrics.coalesced); got != callers-1 {
		t.Errorf("coalesced: got %v, want %d", got, callers-1)
	}
}

func TestRefresh_CanceledCallerDoesNotAbort(t *testing.T) {
	b := testutil.NewBackend(t)
	l := newLoader(t, b, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := l.Refresh(ctx, SourcePageLoad)
	if !res.Surveys {
		t.Errorf("refresh should complete for a canceled caller: %+v", res)
	}
}

func TestAdminLink(t *testing.T) {
	cases := []struct {
		template string
		want     string
	}{
		{"http://localhost:8000/admin/survey/survey/{id}", "http://localhost:8000/admin/survey/survey/7"},
		{"http://localhost:8000/admin/survey/survey/{id}/change/", "http://localhost:8000/admin/survey/survey/7/change/"},
		{"http://localhost:8000/admin/survey/survey/", "http://localhost:8000/admin/survey/survey/7"},
	}
	for _, tc := range cases {
		l := New(nil, catalog.New(), zap.NewNop(), Options{AdminSurveyURL: tc.template})
		if got := l.AdminLink(models.ID(7)); got != tc.want {
			t.Errorf("AdminLink(%q): got %q, want %q", tc.template, got, tc.want)
		}
	}
}

func TestRefresh_PersistsAndHydrates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := snapshotstore.EnsureIndexes(ctx, db); err != nil {
		t.Fatalf("EnsureIndexes: %v", err)
	}
	store := snapshotstore.New(db)

	b := testutil.NewBackend(t)
	l := newLoader(t, b, Options{Snapshots: store, SnapshotKeep: 2})
	for i := 0; i < 3; i++ {
		l.Refresh(ctx, SourceInterval)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 2 {
		t.Errorf("snapshots after prune: got %d, want 2", count)
	}

	// A fresh loader against a dead backend still serves the saved catalog.
	b.SetAllStatus(http.StatusServiceUnavailable)
	fresh := newLoader(t, b, Options{Snapshots: store})
	if err := fresh.Hydrate(ctx); err != nil {
		t.Fatalf("Hydrate: %v", err)
	}
	if n := fresh.Catalog().Counts(); n.Surveys != 2 || n.Questions != 3 || n.Choices != 5 {
		t.Errorf("hydrated counts: got %+v, want 2/3/5", n)
	}
	if p, ok := fresh.Catalog().Popular(); !ok || p.Name != "Pets" {
		t.Errorf("hydrated popular: got %+v, %v", p, ok)
	}
}

func TestHydrate_WithoutStore(t *testing.T) {
	l := New(nil, catalog.New(), zap.NewNop(), Options{})
	if err := l.Hydrate(context.Background()); err != nil {
		t.Errorf("Hydrate without store: %v", err)
	}
}
