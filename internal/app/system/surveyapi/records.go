// internal/app/system/surveyapi/records.go
package surveyapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dalemusser/surveydash/internal/domain/models"
)

var (
	// ErrMissing is returned when an expected collection is absent from a payload.
	ErrMissing = errors.New("collection missing")
	// ErrMalformed is returned when a collection is not an array of records
	// or a record does not have the expected shape.
	ErrMalformed = errors.New("collection malformed")
)

// record is one entry of the backend's serializer output:
//
//	{"model": "survey.survey", "pk": 3, "fields": {"name": "Pets", ...}}
type record[F any] struct {
	Model  string    `json:"model"`
	PK     models.ID `json:"pk"`
	Fields *F        `json:"fields"`
}

type surveyFields struct {
	Name string `json:"name"`
}

type questionFields struct {
	Survey       models.ID `json:"survey"`
	QuestionText string    `json:"question_text"`
}

type choiceFields struct {
	Question   models.ID `json:"question"`
	ChoiceText string    `json:"choice_text"`
	Votes      int       `json:"votes"`
}

// AllSurveys is the envelope returned by the all-surveys endpoint. Each
// field normally holds a JSON string whose content is itself a JSON array.
type AllSurveys struct {
	Surveys   json.RawMessage `json:"surveys"`
	Questions json.RawMessage `json:"questions"`
	Choices   json.RawMessage `json:"choices"`
}

// DecodeSurveys decodes the surveys collection.
func DecodeSurveys(raw json.RawMessage) ([]models.Survey, error) {
	recs, err := decodeRecords[surveyFields](raw)
	if err != nil {
		return nil, fmt.Errorf("surveys: %w", err)
	}
	out := make([]models.Survey, 0, len(recs))
	for _, r := range recs {
		out = append(out, models.Survey{ID: r.PK, Name: r.Fields.Name})
	}
	return out, nil
}

// DecodeQuestions decodes the questions collection.
func DecodeQuestions(raw json.RawMessage) ([]models.Question, error) {
	recs, err := decodeRecords[questionFields](raw)
	if err != nil {
		return nil, fmt.Errorf("questions: %w", err)
	}
	out := make([]models.Question, 0, len(recs))
	for _, r := range recs {
		out = append(out, models.Question{
			ID:       r.PK,
			Text:     r.Fields.QuestionText,
			SurveyID: r.Fields.Survey,
		})
	}
	return out, nil
}

// DecodeChoices decodes the choices collection.
func DecodeChoices(raw json.RawMessage) ([]models.Choice, error) {
	recs, err := decodeRecords[choiceFields](raw)
	if err != nil {
		return nil, fmt.Errorf("choices: %w", err)
	}
	out := make([]models.Choice, 0, len(recs))
	for _, r := range recs {
		out = append(out, models.Choice{
			ID:         r.PK,
			Text:       r.Fields.ChoiceText,
			QuestionID: r.Fields.Question,
			Votes:      r.Fields.Votes,
		})
	}
	return out, nil
}

// DecodePopular decodes the popular-survey response and returns its first
// element. A null body or an empty array yields (nil, nil).
func DecodePopular(body []byte) (*models.Survey, error) {
	raw := json.RawMessage(bytes.TrimSpace(body))
	if len(raw) == 0 || isNull(raw) {
		return nil, nil
	}
	recs, err := decodeRecords[surveyFields](raw)
	if err != nil {
		return nil, fmt.Errorf("popular survey: %w", err)
	}
	if len(recs) == 0 {
		return nil, nil
	}
	first := recs[0]
	return &models.Survey{ID: first.PK, Name: first.Fields.Name}, nil
}

// decodeRecords unwraps a string-encoded collection if needed and decodes it
// as an array of records. Every record must carry a fields object.
func decodeRecords[F any](raw json.RawMessage) ([]record[F], error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || isNull(raw) {
		return nil, ErrMissing
	}

	if raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		raw = bytes.TrimSpace([]byte(inner))
		if len(raw) == 0 || isNull(raw) {
			return nil, ErrMissing
		}
	}

	if raw[0] != '[' {
		return nil, fmt.Errorf("%w: not an array", ErrMalformed)
	}

	var recs []record[F]
	if err := json.Unmarshal(raw, &recs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	for i, r := range recs {
		if r.Fields == nil {
			return nil, fmt.Errorf("%w: record %d has no fields", ErrMalformed, i)
		}
	}
	return recs, nil
}

func isNull(raw []byte) bool {
	return bytes.Equal(raw, []byte("null"))
}
