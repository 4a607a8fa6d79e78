package snapshotstore_test

import (
	"errors"
	"testing"
	"time"

	snapshotstore "github.com/dalemusser/surveydash/internal/app/store/snapshots"
	"github.com/dalemusser/surveydash/internal/domain/models"
	"github.com/dalemusser/surveydash/internal/testutil"
)

func sampleSnapshot(at time.Time) models.Snapshot {
	return models.Snapshot{
		LoadedAt:  at,
		Source:    "http://backend",
		Surveys:   []models.Survey{{ID: 3, Name: "Pets"}},
		Questions: []models.Question{{ID: 10, Text: "Favorite pet?", SurveyID: 3}},
		Choices:   []models.Choice{{ID: 100, Text: "Dog", QuestionID: 10, Votes: 5}},
		Popular: &models.PopularSurvey{
			Survey:  models.Survey{ID: 3, Name: "Pets"},
			LinkURL: "http://backend/admin/survey/survey/3",
		},
	}
}

func TestStore_Latest_Empty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := snapshotstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.Latest(ctx)
	if !errors.Is(err, snapshotstore.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestStore_SaveAndLatest(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := snapshotstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := snapshotstore.EnsureIndexes(ctx, db); err != nil {
		t.Fatalf("EnsureIndexes failed: %v", err)
	}

	base := time.Now().UTC().Truncate(time.Millisecond)
	if _, err := store.Save(ctx, sampleSnapshot(base.Add(-time.Hour))); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	newer := sampleSnapshot(base)
	newer.Choices[0].Votes = 9
	saved, err := store.Save(ctx, newer)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if saved.ID == "" {
		t.Error("expected generated ID")
	}

	latest, err := store.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if latest.ID != saved.ID {
		t.Errorf("ID: got %q, want %q", latest.ID, saved.ID)
	}
	if len(latest.Choices) != 1 || latest.Choices[0].Votes != 9 {
		t.Errorf("choices: got %+v", latest.Choices)
	}
	if latest.Popular == nil || latest.Popular.ID != 3 || latest.Popular.LinkURL == "" {
		t.Errorf("popular: got %+v", latest.Popular)
	}
}

func TestStore_Prune(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := snapshotstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	base := time.Now().UTC()
	var newest models.Snapshot
	for i := 0; i < 5; i++ {
		s, err := store.Save(ctx, sampleSnapshot(base.Add(time.Duration(i)*time.Minute)))
		if err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		newest = s
	}

	removed, err := store.Prune(ctx, 2)
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if removed != 3 {
		t.Errorf("removed: got %d, want 3", removed)
	}

	n, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 2 {
		t.Errorf("count: got %d, want 2", n)
	}

	latest, err := store.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if latest.ID != newest.ID {
		t.Errorf("newest snapshot was pruned")
	}
}
