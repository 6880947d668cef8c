package employees

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Repository defines persistence operations for the employee directory.
// GetBySub returns (nil, nil) when the employee is unknown.
type Repository interface {
	UpsertBySub(ctx context.Context, e *Employee) (*Employee, error)
	GetBySub(ctx context.Context, sub string) (*Employee, error)
}

// MongoRepository implements Repository using MongoDB.
type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) UpsertBySub(ctx context.Context, e *Employee) (*Employee, error) {
	now := time.Now().UTC()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now

	filter := bson.M{"sub": e.Sub}
	set := bson.M{"$set": bson.M{
		"email":      e.Email,
		"name":       e.Name,
		"department": e.Department,
		"updatedAt":  e.UpdatedAt,
		"createdAt":  e.CreatedAt,
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var updated Employee
	if err := r.col.FindOneAndUpdate(ctx, filter, set, opts).Decode(&updated); err != nil {
		if err == mongo.ErrNoDocuments {
			// Shouldn't happen because of upsert, but handle gracefully
			return e, nil
		}
		return nil, err
	}
	return &updated, nil
}

func (r *MongoRepository) GetBySub(ctx context.Context, sub string) (*Employee, error) {
	var e Employee
	if err := r.col.FindOne(ctx, bson.M{"sub": sub}).Decode(&e); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

// MemoryRepository is the in-memory directory used in tests and local setups.
type MemoryRepository struct {
	mu    sync.RWMutex
	store map[string]*Employee
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{store: make(map[string]*Employee)}
}

func (r *MemoryRepository) UpsertBySub(ctx context.Context, e *Employee) (*Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	if cur, ok := r.store[e.Sub]; ok {
		e.CreatedAt = cur.CreatedAt
	} else if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now
	cp := *e
	r.store[e.Sub] = &cp
	return &cp, nil
}

func (r *MemoryRepository) GetBySub(ctx context.Context, sub string) (*Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.store[sub]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, nil
}
