// Package catalog holds the dashboard's in-memory view of the survey backend.
//
// A Catalog is the single owner of the survey, question and choice lists and
// of the popular survey. Loaders write through the Replace/Set methods; HTTP
// handlers read through the filter methods, which always return copies.
// Each collection is replaced as a whole, so a failed load of one collection
// never disturbs the others.
package catalog

import (
	"slices"
	"sync"
	"time"

	"github.com/dalemusser/surveydash/internal/domain/models"
)

// Counts summarizes the sizes of the loaded collections.
type Counts struct {
	Surveys   int
	Questions int
	Choices   int
}

// Catalog is safe for concurrent use.
type Catalog struct {
	mu sync.RWMutex

	surveys   []models.Survey
	questions []models.Question
	choices   []models.Choice
	popular   *models.PopularSurvey

	loadedAt time.Time
}

// New returns an empty Catalog.
func New() *Catalog {
	return &Catalog{}
}

// ReplaceSurveys installs a freshly loaded survey list.
func (c *Catalog) ReplaceSurveys(surveys []models.Survey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.surveys = slices.Clone(surveys)
	c.loadedAt = time.Now().UTC()
}

// ReplaceQuestions installs a freshly loaded question list.
func (c *Catalog) ReplaceQuestions(questions []models.Question) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.questions = slices.Clone(questions)
	c.loadedAt = time.Now().UTC()
}

// ReplaceChoices installs a freshly loaded choice list.
func (c *Catalog) ReplaceChoices(choices []models.Choice) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.choices = slices.Clone(choices)
	c.loadedAt = time.Now().UTC()
}

// SetPopular records the popular survey.
func (c *Catalog) SetPopular(p models.PopularSurvey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.popular = &p
}

// Surveys returns the survey list in backend order.
func (c *Catalog) Surveys() []models.Survey {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.surveys)
}

// Popular returns the popular survey, if one has been loaded.
func (c *Catalog) Popular() (models.PopularSurvey, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.popular == nil {
		return models.PopularSurvey{}, false
	}
	return *c.popular, true
}

// QuestionsFor returns the questions of a survey in backend order.
func (c *Catalog) QuestionsFor(surveyID models.ID) []models.Question {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Question, 0)
	for _, q := range c.questions {
		if q.SurveyID == surveyID {
			out = append(out, q)
		}
	}
	return out
}

// Question looks up a single question by id.
func (c *Catalog) Question(id models.ID) (models.Question, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, q := range c.questions {
		if q.ID == id {
			return q, true
		}
	}
	return models.Question{}, false
}

// ChoicesFor returns the choices of a question in backend order.
func (c *Catalog) ChoicesFor(questionID models.ID) []models.Choice {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Choice, 0)
	for _, ch := range c.choices {
		if ch.QuestionID == questionID {
			out = append(out, ch)
		}
	}
	return out
}

// Counts returns the current collection sizes.
func (c *Catalog) Counts() Counts {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Counts{
		Surveys:   len(c.surveys),
		Questions: len(c.questions),
		Choices:   len(c.choices),
	}
}

// LoadedAt returns when a collection was last replaced. Zero means nothing
// has been loaded yet.
func (c *Catalog) LoadedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadedAt
}

// Snapshot copies the whole catalog for persistence. ID and Source are left
// for the caller to fill in.
func (c *Catalog) Snapshot() models.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snap := models.Snapshot{
		LoadedAt:  c.loadedAt,
		Surveys:   slices.Clone(c.surveys),
		Questions: slices.Clone(c.questions),
		Choices:   slices.Clone(c.choices),
	}
	if c.popular != nil {
		p := *c.popular
		snap.Popular = &p
	}
	return snap
}

// Restore replaces the whole catalog with a persisted snapshot.
func (c *Catalog) Restore(snap models.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.surveys = slices.Clone(snap.Surveys)
	c.questions = slices.Clone(snap.Questions)
	c.choices = slices.Clone(snap.Choices)
	c.popular = nil
	if snap.Popular != nil {
		p := *snap.Popular
		c.popular = &p
	}
	c.loadedAt = snap.LoadedAt
}
