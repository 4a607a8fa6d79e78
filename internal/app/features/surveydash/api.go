// internal/app/features/surveydash/api.go
package surveydash

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/dalemusser/surveydash/internal/app/system/votechart"
)

// ServeSurveysJSON handles GET /dashboard/api/surveys.
//
//	{ "surveys":[{"surveyId":1,"surveyName":"Food"}],
//	  "popular":{"surveyId":3,"surveyName":"Pets","linkUrl":"…/3"} }
func (h *Handler) ServeSurveysJSON(w http.ResponseWriter, r *http.Request) {
	surveys := h.Catalog.Surveys()
	resp := surveysResponse{Surveys: make([]surveyJSON, 0, len(surveys))}
	for _, s := range surveys {
		resp.Surveys = append(resp.Surveys, surveyJSON{SurveyID: s.ID, SurveyName: s.Name})
	}
	if p, ok := h.Catalog.Popular(); ok {
		resp.Popular = &popularJSON{SurveyID: p.ID, SurveyName: p.Name, LinkURL: p.LinkURL}
	}
	if at := h.Catalog.LoadedAt(); !at.IsZero() {
		resp.LoadedAt = at.Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, resp)
}

// ServeQuestionsJSON handles GET /dashboard/api/questions?survey=ID and
// returns the survey's questions in backend order.
func (h *Handler) ServeQuestionsJSON(w http.ResponseWriter, r *http.Request) {
	surveyID, ok := idParam(r, "survey")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "survey must be a numeric id"})
		return
	}

	questions := h.Catalog.QuestionsFor(surveyID)
	resp := questionsResponse{SurveyID: surveyID, Questions: make([]questionJSON, 0, len(questions))}
	for _, q := range questions {
		resp.Questions = append(resp.Questions, questionJSON{
			QuestionID:   q.ID,
			QuestionText: q.Text,
			SurveyID:     q.SurveyID,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// ServeChartJSON handles GET /dashboard/api/chart?question=ID and returns a
// Chart.js configuration for the question's votes.
func (h *Handler) ServeChartJSON(w http.ResponseWriter, r *http.Request) {
	questionID, ok := idParam(r, "question")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "question must be a numeric id"})
		return
	}
	writeJSON(w, http.StatusOK, votechart.Build(h.Catalog.ChoicesFor(questionID)).ChartJS())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
