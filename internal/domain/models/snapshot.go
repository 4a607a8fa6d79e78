// internal/domain/models/snapshot.go
package models

import "time"

// Snapshot is one successful load of the survey catalog as persisted to
// the survey_snapshots collection.
type Snapshot struct {
	ID       string    `bson:"_id" json:"id"`
	LoadedAt time.Time `bson:"loaded_at" json:"loaded_at"`
	Source   string    `bson:"source" json:"source"`

	Surveys   []Survey       `bson:"surveys" json:"surveys"`
	Questions []Question     `bson:"questions" json:"questions"`
	Choices   []Choice       `bson:"choices" json:"choices"`
	Popular   *PopularSurvey `bson:"popular,omitempty" json:"popular,omitempty"`
}
