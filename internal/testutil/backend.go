package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// Sample catalog served by NewBackend unless overridden.
//
//	survey 1 "Food":  question 11 (Apple 2)
//	survey 3 "Pets":  question 10 (Dog 5, Cat 7, Fish 0), question 12 (One 3)
var (
	SampleSurveys = `[
		{"model": "survey.survey", "pk": 1, "fields": {"name": "Food", "published_on": "2020-01-01T00:00:00Z"}},
		{"model": "survey.survey", "pk": 3, "fields": {"name": "Pets", "published_on": "2020-01-02T00:00:00Z"}}
	]`
	SampleQuestions = `[
		{"model": "survey.question", "pk": 10, "fields": {"survey": 3, "question_text": "Favorite pet?"}},
		{"model": "survey.question", "pk": 11, "fields": {"survey": 1, "question_text": "Favorite fruit?"}},
		{"model": "survey.question", "pk": 12, "fields": {"survey": 3, "question_text": "How many pets?"}}
	]`
	SampleChoices = `[
		{"model": "survey.choice", "pk": 100, "fields": {"question": 10, "choice_text": "Dog", "votes": 5}},
		{"model": "survey.choice", "pk": 101, "fields": {"question": 10, "choice_text": "Cat", "votes": 7}},
		{"model": "survey.choice", "pk": 102, "fields": {"question": 11, "choice_text": "Apple", "votes": 2}},
		{"model": "survey.choice", "pk": 103, "fields": {"question": 10, "choice_text": "Fish", "votes": 0}},
		{"model": "survey.choice", "pk": 104, "fields": {"question": 12, "choice_text": "One", "votes": 3}}
	]`
	SamplePopular = `[{"model": "survey.survey", "pk": 3, "fields": {"name": "Pets"}}]`
)

// AllSurveysBody builds an all-surveys response where each collection is
// JSON-encoded into a string, the way the backend serializes it.
func AllSurveysBody(surveys, questions, choices string) string {
	env := map[string]string{
		"surveys":   surveys,
		"questions": questions,
		"choices":   choices,
	}
	b, err := json.Marshal(env)
	if err != nil {
		panic(err)
	}
	return string(b)
}

// QuotedJSON encodes s as a JSON string literal.
func QuotedJSON(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		panic(err)
	}
	return string(b)
}

type response struct {
	status int
	body   string
}

// Backend is a fake survey backend for handler and loader tests.
type Backend struct {
	*httptest.Server

	mu      sync.Mutex
	all     response
	popular response
	delay   time.Duration

	allHits     atomic.Int32
	popularHits atomic.Int32
}

// NewBackend starts a fake backend serving the sample catalog. It is closed
// when the test finishes.
func NewBackend(t *testing.T) *Backend {
	t.Helper()

	b := &Backend{
		all:     response{status: http.StatusOK, body: AllSurveysBody(SampleSurveys, SampleQuestions, SampleChoices)},
		popular: response{status: http.StatusOK, body: SamplePopular},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/survey/get_all_surveys/", func(w http.ResponseWriter, r *http.Request) {
		b.allHits.Add(1)
		b.pause()
		b.write(w, b.snapshot(&b.all))
	})
	mux.HandleFunc("/survey/get_popular_survey/", func(w http.ResponseWriter, r *http.Request) {
		b.popularHits.Add(1)
		b.pause()
		b.write(w, b.snapshot(&b.popular))
	})

	b.Server = httptest.NewServer(mux)
	t.Cleanup(b.Close)
	return b
}

// SetAll replaces the all-surveys response body (status 200).
func (b *Backend) SetAll(body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.all = response{status: http.StatusOK, body: body}
}

// SetAllStatus makes the all-surveys endpoint fail with status.
func (b *Backend) SetAllStatus(status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.all = response{status: status, body: http.StatusText(status)}
}

// SetPopular replaces the popular-survey response body (status 200).
func (b *Backend) SetPopular(body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.popular = response{status: http.StatusOK, body: body}
}

// SetPopularStatus makes the popular-survey endpoint fail with status.
func (b *Backend) SetPopularStatus(status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.popular = response{status: status, body: http.StatusText(status)}
}

// SetDelay makes both endpoints wait d before answering.
func (b *Backend) SetDelay(d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.delay = d
}

func (b *Backend) pause() {
	b.mu.Lock()
	d := b.delay
	b.mu.Unlock()
	if d > 0 {
		time.Sleep(d)
	}
}

// AllHits returns how many times the all-surveys endpoint was called.
func (b *Backend) AllHits() int { return int(b.allHits.Load()) }

// PopularHits returns how many times the popular-survey endpoint was called.
func (b *Backend) PopularHits() int { return int(b.popularHits.Load()) }

func (b *Backend) snapshot(r *response) response {
	b.mu.Lock()
	defer b.mu.Unlock()
	return *r
}

func (b *Backend) write(w http.ResponseWriter, r response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(r.status)
	fmt.Fprint(w, strings.TrimSpace(r.body))
}
