// internal/app/store/snapshots/snapshotstore.go
package snapshotstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/surveydash/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the collection holding persisted catalog snapshots.
const CollectionName = "survey_snapshots"

// ErrNotFound is returned by Latest when no snapshot has been saved.
var ErrNotFound = errors.New("no snapshot")

// Store provides access to the survey_snapshots collection.
// Each successful catalog load is stored as one document.
type Store struct {
	c *mongo.Collection
}

// New creates a new snapshot store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(CollectionName)}
}

// EnsureIndexes creates the loaded_at index used by Latest and Prune.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(CollectionName).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "loaded_at", Value: -1}},
		Options: options.Index().SetName("idx_loaded_at_desc"),
	})
	return err
}

// Save inserts a snapshot. A missing ID is generated and a zero LoadedAt is
// set to now. The stored snapshot is returned.
func (s *Store) Save(ctx context.Context, snap models.Snapshot) (models.Snapshot, error) {
	if snap.ID == "" {
		snap.ID = uuid.NewString()
	}
	if snap.LoadedAt.IsZero() {
		snap.LoadedAt = time.Now().UTC()
	}
	if _, err := s.c.InsertOne(ctx, snap); err != nil {
		return models.Snapshot{}, err
	}
	return snap, nil
}

// Latest returns the most recently loaded snapshot.
func (s *Store) Latest(ctx context.Context) (models.Snapshot, error) {
	var snap models.Snapshot
	opts := options.FindOne().SetSort(bson.D{{Key: "loaded_at", Value: -1}})
	err := s.c.FindOne(ctx, bson.M{}, opts).Decode(&snap)
	if err == mongo.ErrNoDocuments {
		return models.Snapshot{}, ErrNotFound
	}
	if err != nil {
		return models.Snapshot{}, err
	}
	return snap, nil
}

// Prune deletes all but the newest keep snapshots and returns how many were
// removed. keep < 1 is treated as 1.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 1 {
		keep = 1
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "loaded_at", Value: -1}}).
		SetLimit(int64(keep)).
		SetProjection(bson.M{"_id": 1})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		ID string `bson:"_id"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return 0, err
	}
	if len(rows) < keep {
		return 0, nil
	}

	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	res, err := s.c.DeleteMany(ctx, bson.M{"_id": bson.M{"$nin": ids}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Count returns the number of stored snapshots.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}
