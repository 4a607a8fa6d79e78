// internal/domain/models/survey.go
package models

// Survey is a named questionnaire.
type Survey struct {
	ID   ID     `bson:"survey_id" json:"surveyId"`
	Name string `bson:"name" json:"surveyName"`
}

// Question belongs to exactly one survey.
type Question struct {
	ID       ID     `bson:"question_id" json:"questionId"`
	Text     string `bson:"text" json:"questionText"`
	SurveyID ID     `bson:"survey_id" json:"surveyId"`
}

// Choice is a selectable answer to a question with its accumulated vote count.
type Choice struct {
	ID         ID     `bson:"choice_id" json:"choiceId"`
	Text       string `bson:"text" json:"choiceText"`
	QuestionID ID     `bson:"question_id" json:"questionId"`
	Votes      int    `bson:"votes" json:"votes"`
}

// PopularSurvey is the survey ranked first by submission count, plus the
// admin URL it links to.
type PopularSurvey struct {
	Survey  `bson:",inline"`
	LinkURL string `bson:"link_url" json:"linkUrl"`
}
