// internal/app/features/surveydash/types.go
package surveydash

import (
	"html/template"

	"github.com/dalemusser/surveydash/internal/app/system/viewdata"
	"github.com/dalemusser/surveydash/internal/domain/models"
)

// PlaceholderLabel is the first entry of the question dropdown. It doubles
// as the option's value, which never parses as an id, so it selects nothing.
const PlaceholderLabel = "Select a Question"

// option is one <option> of a dropdown.
type option struct {
	Value    models.ID
	Label    string
	Selected bool
}

// popularVM is the popular survey link; empty Name means none is known.
type popularVM struct {
	Name    string
	LinkURL string
}

// questionOptionsData feeds the question dropdown fragment.
type questionOptionsData struct {
	// PlaceholderSelected is true unless one of Options is selected.
	PlaceholderSelected bool
	Options             []option
}

// Placeholder returns the label of the empty first option.
func (questionOptionsData) Placeholder() string { return PlaceholderLabel }

// chartData feeds the chart fragment that replaces #votes_bar_chart.
type chartData struct {
	QuestionID models.ID
	Title      string
	SVG        template.HTML // empty when there is nothing to draw
	Bars       int
}

// pageData is the full dashboard view model.
type pageData struct {
	viewdata.BaseVM

	Surveys   []option
	Questions questionOptionsData
	Chart     chartData
	Popular   popularVM
}

// surveyJSON and friends shape the JSON API.
type surveyJSON struct {
	SurveyID   models.ID `json:"surveyId"`
	SurveyName string    `json:"surveyName"`
}

type popularJSON struct {
	SurveyID   models.ID `json:"surveyId"`
	SurveyName string    `json:"surveyName"`
	LinkURL    string    `json:"linkUrl"`
}

type surveysResponse struct {
	Surveys  []surveyJSON `json:"surveys"`
	Popular  *popularJSON `json:"popular"`
	LoadedAt string       `json:"loadedAt,omitempty"`
}

type questionJSON struct {
	QuestionID   models.ID `json:"questionId"`
	QuestionText string    `json:"questionText"`
	SurveyID     models.ID `json:"surveyId"`
}

type questionsResponse struct {
	SurveyID  models.ID      `json:"surveyId"`
	Questions []questionJSON `json:"questions"`
}

type errorResponse struct {
	Error string `json:"error"`
}
