package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/peopleops/docflow/internal/workflow"
)

// MongoRecordRepo is the MongoDB-backed record repository. Records are keyed
// by an "id" string field with a unique index; the "rev" field carries the
// optimistic-concurrency stamp checked by Update.
type MongoRecordRepo struct {
	col *mongo.Collection
}

func NewMongoRecordRepo(col *mongo.Collection) *MongoRecordRepo {
	idx := mongo.IndexModel{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)}
	col.Indexes().CreateOne(context.Background(), idx)
	return &MongoRecordRepo{col: col}
}

func (m *MongoRecordRepo) Insert(ctx context.Context, rec *workflow.DocumentRecord) error {
	if _, err := m.col.InsertOne(ctx, rec); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return workflow.Conflictf("record %s already exists", rec.ID)
		}
		return err
	}
	return nil
}

func (m *MongoRecordRepo) Get(ctx context.Context, id string) (*workflow.DocumentRecord, error) {
	var rec workflow.DocumentRecord
	if err := m.col.FindOne(ctx, bson.M{"id": id}).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, workflow.NotFoundf("record %s not found", id)
		}
		return nil, err
	}
	return &rec, nil
}

// Update replaces the stored record only when its rev still matches rec.Rev.
// A zero match count means either the record is gone or another writer won;
// a re-read distinguishes the two.
func (m *MongoRecordRepo) Update(ctx context.Context, rec *workflow.DocumentRecord) error {
	filter := bson.M{"id": rec.ID, "rev": rec.Rev}
	next := rec.Clone()
	next.Rev = rec.Rev + 1
	res, err := m.col.ReplaceOne(ctx, filter, next)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		if err := m.col.FindOne(ctx, bson.M{"id": rec.ID}).Err(); errors.Is(err, mongo.ErrNoDocuments) {
			return workflow.NotFoundf("record %s not found", rec.ID)
		}
		return workflow.Conflictf("record %s was modified concurrently", rec.ID)
	}
	rec.Rev = next.Rev
	return nil
}

func (m *MongoRecordRepo) Delete(ctx context.Context, id string) error {
	res, err := m.col.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return workflow.NotFoundf("record %s not found", id)
	}
	return nil
}

func (m *MongoRecordRepo) List(ctx context.Context, f Filter) ([]*workflow.DocumentRecord, error) {
	filter := bson.M{}
	if f.Track != "" {
		filter["track"] = f.Track
	}
	if f.OwnerID != "" {
		filter["ownerId"] = f.OwnerID
	}
	if f.AssigneeID != "" {
		filter["assigneeId"] = f.AssigneeID
	}
	if len(f.Statuses) > 0 {
		filter["status"] = bson.M{"$in": f.Statuses}
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := m.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*workflow.DocumentRecord{}
	for cur.Next(ctx) {
		var rec workflow.DocumentRecord
		if err := cur.Decode(&rec); err != nil {
			return nil, err
		}
		out = append(out, &rec)
	}
	return out, cur.Err()
}

// MongoTrailRepo is the MongoDB-backed append-only trail store.
type MongoTrailRepo struct {
	col *mongo.Collection
}

func NewMongoTrailRepo(col *mongo.Collection) *MongoTrailRepo {
	idx := mongo.IndexModel{Keys: bson.D{{Key: "recordId", Value: 1}, {Key: "createdAt", Value: 1}}}
	col.Indexes().CreateOne(context.Background(), idx)
	return &MongoTrailRepo{col: col}
}

func (m *MongoTrailRepo) Append(ctx context.Context, e *workflow.TrailEntry) error {
	_, err := m.col.InsertOne(ctx, e)
	return err
}

func (m *MongoTrailRepo) ListByRecord(ctx context.Context, recordID string) ([]*workflow.TrailEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cur, err := m.col.Find(ctx, bson.M{"recordId": recordID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*workflow.TrailEntry{}
	for cur.Next(ctx) {
		var e workflow.TrailEntry
		if err := cur.Decode(&e); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, cur.Err()
}

func (m *MongoTrailRepo) DeleteByRecord(ctx context.Context, recordID string) error {
	_, err := m.col.DeleteMany(ctx, bson.M{"recordId": recordID})
	return err
}
