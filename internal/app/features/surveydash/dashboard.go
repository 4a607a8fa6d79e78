// internal/app/features/surveydash/dashboard.go
package surveydash

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/dalemusser/surveydash/internal/app/system/htmlsanitize"
	"github.com/dalemusser/surveydash/internal/app/system/loader"
	"github.com/dalemusser/surveydash/internal/app/system/selection"
	"github.com/dalemusser/surveydash/internal/app/system/viewdata"
	"github.com/dalemusser/surveydash/internal/app/system/votechart"
	"github.com/dalemusser/surveydash/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| GET /dashboard – full page                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeDashboard renders the survey dropdown, the popular survey link and an
// empty chart area. A previously remembered survey and question are
// re-selected; a remembered survey the backend no longer has is forgotten.
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	if h.RefreshOnPageLoad {
		h.Loader.Refresh(r.Context(), loader.SourcePageLoad)
	}

	sel := h.loadSelection(r)
	if sel.HasSurvey() && !h.Catalog.LoadedAt().IsZero() && !h.hasSurvey(sel.SurveyID) {
		// The remembered survey was deleted in the backend.
		h.Selection.Clear(w, r)
		sel = selection.Selection{}
	}

	data := pageData{
		BaseVM:    viewdata.NewBaseVM(r, "Survey Dashboard", "/dashboard"),
		Surveys:   h.surveyOptions(sel.SurveyID),
		Questions: questionOptionsData{PlaceholderSelected: true},
		Chart:     chartData{},
	}
	data.LoadedAt = h.Catalog.LoadedAt()

	if p, ok := h.Catalog.Popular(); ok {
		data.Popular = popularVM{Name: p.Name, LinkURL: p.LinkURL}
	}
	if sel.HasSurvey() {
		data.Questions = h.questionOptions(sel.SurveyID, sel.QuestionID)
	}
	if sel.HasQuestion() && !data.Questions.PlaceholderSelected {
		data.Chart = h.chart(sel.QuestionID)
	}

	templates.Render(w, r, "surveydash_page", data)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /dashboard/refresh – manual reload                                     |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleRefresh reloads the catalog and sends the browser back to the page.
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	res := h.Loader.Refresh(r.Context(), loader.SourceManual)
	h.Log.Info("manual refresh",
		zap.Bool("merged", res.Merged()),
		zap.Bool("shared", res.Shared))

	// HTMX handling: HX-Redirect forces a full client-side navigation.
	if r.Header.Get("HX-Request") != "" {
		w.Header().Set("HX-Redirect", "/dashboard")
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /dashboard/questions?survey=ID – question options (HTMX)                |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeQuestionOptions rebuilds the question dropdown for the clicked survey:
// the placeholder, selected, followed by the survey's questions in backend
// order. It answers every click, so re-selecting the same survey resets the
// dropdown again. An unknown or non-numeric id yields only the placeholder.
func (h *Handler) ServeQuestionOptions(w http.ResponseWriter, r *http.Request) {
	surveyID, ok := idParam(r, "survey")
	data := questionOptionsData{PlaceholderSelected: true}
	if ok {
		data = h.questionOptions(surveyID, 0)
		if h.Selection != nil {
			h.Selection.RememberSurvey(w, r, surveyID)
		}
	}
	templates.RenderSnippet(w, "surveydash_question_options", data)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /dashboard/chart?question=ID – chart fragment (HTMX)                    |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeChart renders the vote chart for the clicked question. The fragment
// replaces #votes_bar_chart entirely. The placeholder value selects no
// choices and renders an empty chart area.
func (h *Handler) ServeChart(w http.ResponseWriter, r *http.Request) {
	data := chartData{}
	if questionID, ok := idParam(r, "question"); ok {
		data = h.chart(questionID)
		if h.Selection != nil {
			h.Selection.RememberQuestion(w, r, questionID)
		}
	}
	templates.RenderSnippet(w, "surveydash_chart", data)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /dashboard/chart.svg?question=ID – chart image                          |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeChartSVG writes the vote chart as an SVG document. A question without
// choices has no chart and answers 204.
func (h *Handler) ServeChartSVG(w http.ResponseWriter, r *http.Request) {
	questionID, ok := idParam(r, "question")
	if !ok {
		http.Error(w, "question must be a numeric id", http.StatusBadRequest)
		return
	}

	var buf bytes.Buffer
	err := votechart.RenderSVG(&buf, votechart.Build(h.Catalog.ChoicesFor(questionID)), votechart.Options{
		Title: h.questionText(questionID),
	})
	if errors.Is(err, votechart.ErrEmpty) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "render chart svg failed", err, "Chart unavailable.", "/dashboard")
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

// helpers

func (h *Handler) loadSelection(r *http.Request) selection.Selection {
	if h.Selection == nil {
		return selection.Selection{}
	}
	return h.Selection.Load(r)
}

func (h *Handler) hasSurvey(id models.ID) bool {
	for _, s := range h.Catalog.Surveys() {
		if s.ID == id {
			return true
		}
	}
	return false
}

func (h *Handler) surveyOptions(selected models.ID) []option {
	surveys := h.Catalog.Surveys()
	opts := make([]option, 0, len(surveys))
	for _, s := range surveys {
		opts = append(opts, option{Value: s.ID, Label: s.Name, Selected: s.ID == selected})
	}
	return opts
}

func (h *Handler) questionOptions(surveyID, selected models.ID) questionOptionsData {
	questions := h.Catalog.QuestionsFor(surveyID)
	data := questionOptionsData{
		PlaceholderSelected: true,
		Options:             make([]option, 0, len(questions)),
	}
	for _, q := range questions {
		isSel := selected != 0 && q.ID == selected
		if isSel {
			data.PlaceholderSelected = false
		}
		data.Options = append(data.Options, option{Value: q.ID, Label: q.Text, Selected: isSel})
	}
	return data
}

// chart renders the SVG for a question. Render failures are logged and leave
// an empty chart area.
func (h *Handler) chart(questionID models.ID) chartData {
	model := votechart.Build(h.Catalog.ChoicesFor(questionID))
	data := chartData{
		QuestionID: questionID,
		Title:      h.questionText(questionID),
		Bars:       len(model.Labels),
	}

	var buf bytes.Buffer
	err := votechart.RenderSVG(&buf, model, votechart.Options{Title: data.Title})
	switch {
	case errors.Is(err, votechart.ErrEmpty):
	case err != nil:
		h.Log.Error("render chart failed", zap.Int64("question_id", int64(questionID)), zap.Error(err))
	default:
		data.SVG = htmlsanitize.InlineSVG(buf.String())
	}
	return data
}

func (h *Handler) questionText(questionID models.ID) string {
	if q, ok := h.Catalog.Question(questionID); ok {
		return q.Text
	}
	return ""
}

// idParam reads a numeric identifier from the query string.
func idParam(r *http.Request, key string) (models.ID, bool) {
	id, err := models.ParseID(query.Get(r, key))
	if err != nil {
		return 0, false
	}
	return id, true
}
