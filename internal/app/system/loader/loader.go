// Package loader refreshes the catalog from the survey backend.
//
// A refresh issues the all-surveys and popular-survey requests concurrently.
// Each request merges into the catalog as soon as it completes, and each
// embedded collection of the all-surveys response is merged on its own, so a
// malformed collection only costs that collection. Failures are logged and
// swallowed: the catalog keeps whatever it held before. Nothing is retried.
//
// Concurrent callers (page loads, the periodic job, manual refresh) share a
// single in-flight refresh.
package loader

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	snapshotstore "github.com/dalemusser/surveydash/internal/app/store/snapshots"
	"github.com/dalemusser/surveydash/internal/app/system/catalog"
	"github.com/dalemusser/surveydash/internal/app/system/surveyapi"
	"github.com/dalemusser/surveydash/internal/app/system/timeouts"
	"github.com/dalemusser/surveydash/internal/domain/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Refresh sources, recorded on snapshots and in logs.
const (
	SourceStartup  = "startup"
	SourcePageLoad = "page_load"
	SourceInterval = "interval"
	SourceManual   = "manual"
)

// IDPlaceholder is replaced with the survey id in the admin link template.
const IDPlaceholder = "{id}"

// DefaultSnapshotKeep is how many snapshots survive a prune when Options
// leaves SnapshotKeep at zero.
const DefaultSnapshotKeep = 20

// Options configures a Loader.
type Options struct {
	// AdminSurveyURL is the admin detail page of a survey, with {id} where the
	// identifier goes. Without the placeholder the id is appended as a path
	// segment.
	AdminSurveyURL string

	// Snapshots, when set, receives a copy of the catalog after every refresh
	// that merged something.
	Snapshots    *snapshotstore.Store
	SnapshotKeep int

	// Metrics defaults to an unregistered set.
	Metrics *Metrics
}

// Result reports which parts of the catalog a refresh replaced.
type Result struct {
	Surveys   bool
	Questions bool
	Choices   bool
	Popular   bool

	// Shared is true when the caller joined a refresh already in flight.
	Shared bool
}

// Merged reports whether anything was replaced.
func (r Result) Merged() bool {
	return r.Surveys || r.Questions || r.Choices || r.Popular
}

// Loader owns the refresh of one catalog.
type Loader struct {
	client *surveyapi.Client
	cat    *catalog.Catalog
	log    *zap.Logger

	adminURL  string
	snapshots *snapshotstore.Store
	keep      int
	metrics   *Metrics

	group singleflight.Group
}

// New creates a Loader that fills cat from client.
func New(client *surveyapi.Client, cat *catalog.Catalog, logger *zap.Logger, opts Options) *Loader {
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics(nil)
	}
	if opts.SnapshotKeep <= 0 {
		opts.SnapshotKeep = DefaultSnapshotKeep
	}
	return &Loader{
		client:    client,
		cat:       cat,
		log:       logger,
		adminURL:  opts.AdminSurveyURL,
		snapshots: opts.Snapshots,
		keep:      opts.SnapshotKeep,
		metrics:   opts.Metrics,
	}
}

// Catalog returns the catalog this loader writes to.
func (l *Loader) Catalog() *catalog.Catalog {
	return l.cat
}

// Refresh reloads the catalog from the backend. The refresh runs detached
// from ctx's cancellation, bounded by timeouts.Refresh, so that a caller
// going away does not abort the refresh other callers are waiting on.
func (l *Loader) Refresh(ctx context.Context, source string) Result {
	leader := false
	v, _, _ := l.group.Do("refresh", func() (any, error) {
		leader = true
		rctx, cancel := timeouts.WithTimeout(context.WithoutCancel(ctx), timeouts.Refresh(), l.log, "catalog refresh")
		defer cancel()
		return l.refresh(rctx, source), nil
	})
	res := v.(Result)
	if !leader {
		l.metrics.coalesced.Inc()
		res.Shared = true
	}
	return res
}

func (l *Loader) refresh(ctx context.Context, source string) Result {
	log := l.log.With(zap.String("load_id", uuid.NewString()), zap.String("source", source))
	start := time.Now()

	var (
		res Result
		wg  sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		res.Surveys, res.Questions, res.Choices = l.loadAll(ctx, log)
	}()
	go func() {
		defer wg.Done()
		res.Popular = l.loadPopular(ctx, log)
	}()
	wg.Wait()

	l.metrics.observeCatalog(l.cat)
	if res.Merged() {
		l.persist(ctx, log, source)
	}

	n := l.cat.Counts()
	log.Debug("catalog refreshed",
		zap.Bool("surveys", res.Surveys),
		zap.Bool("questions", res.Questions),
		zap.Bool("choices", res.Choices),
		zap.Bool("popular", res.Popular),
		zap.Int("survey_count", n.Surveys),
		zap.Int("question_count", n.Questions),
		zap.Int("choice_count", n.Choices),
		zap.Duration("took", time.Since(start)))
	return res
}

// loadAll fetches the all-surveys envelope and merges each collection that
// decodes.
func (l *Loader) loadAll(ctx context.Context, log *zap.Logger) (surveysOK, questionsOK, choicesOK bool) {
	fctx, cancel := context.WithTimeout(ctx, timeouts.Fetch())
	defer cancel()

	env, err := l.client.FetchAll(fctx)
	if err != nil {
		l.fetchFailed(log, endpointAll, err)
		return false, false, false
	}

	if surveys, err := surveyapi.DecodeSurveys(env.Surveys); err != nil {
		log.Error("skipping surveys collection", zap.Error(err))
	} else {
		l.cat.ReplaceSurveys(surveys)
		surveysOK = true
	}

	if questions, err := surveyapi.DecodeQuestions(env.Questions); err != nil {
		log.Error("skipping questions collection", zap.Error(err))
	} else {
		l.cat.ReplaceQuestions(questions)
		questionsOK = true
	}

	if choices, err := surveyapi.DecodeChoices(env.Choices); err != nil {
		log.Error("skipping choices collection", zap.Error(err))
	} else {
		l.cat.ReplaceChoices(choices)
		choicesOK = true
	}

	switch {
	case surveysOK && questionsOK && choicesOK:
		l.metrics.observeLoad(endpointAll, outcomeOK)
	case surveysOK || questionsOK || choicesOK:
		l.metrics.observeLoad(endpointAll, outcomePartial)
	default:
		l.metrics.observeLoad(endpointAll, outcomeMalformed)
	}
	return surveysOK, questionsOK, choicesOK
}

// loadPopular fetches the popular survey and merges the first element.
func (l *Loader) loadPopular(ctx context.Context, log *zap.Logger) bool {
	fctx, cancel := context.WithTimeout(ctx, timeouts.Fetch())
	defer cancel()

	body, err := l.client.FetchPopular(fctx)
	if err != nil {
		l.fetchFailed(log, endpointPopular, err)
		return false
	}

	s, err := surveyapi.DecodePopular(body)
	if err != nil {
		log.Error("skipping popular survey", zap.Error(err))
		l.metrics.observeLoad(endpointPopular, outcomeMalformed)
		return false
	}
	l.metrics.observeLoad(endpointPopular, outcomeOK)
	if s == nil {
		log.Debug("backend reported no popular survey")
		return false
	}

	l.cat.SetPopular(models.PopularSurvey{Survey: *s, LinkURL: l.AdminLink(s.ID)})
	return true
}

func (l *Loader) fetchFailed(log *zap.Logger, endpoint string, err error) {
	if errors.Is(err, surveyapi.ErrMalformed) {
		log.Error("backend response malformed", zap.String("endpoint", endpoint), zap.Error(err))
		l.metrics.observeLoad(endpoint, outcomeMalformed)
		return
	}
	log.Warn("backend request failed", zap.String("endpoint", endpoint), zap.Error(err))
	l.metrics.observeLoad(endpoint, outcomeFailed)
}

// AdminLink returns the admin detail URL of survey id.
func (l *Loader) AdminLink(id models.ID) string {
	if strings.Contains(l.adminURL, IDPlaceholder) {
		return strings.ReplaceAll(l.adminURL, IDPlaceholder, id.String())
	}
	return strings.TrimRight(l.adminURL, "/") + "/" + id.String()
}
