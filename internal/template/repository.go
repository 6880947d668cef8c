package template

import (
	"context"
	"errors"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/peopleops/docflow/internal/workflow"
)

// Repository persists document templates.
type Repository interface {
	Insert(ctx context.Context, t *Template) error
	Get(ctx context.Context, id string) (*Template, error)
	List(ctx context.Context) ([]*Template, error)
	Update(ctx context.Context, t *Template) error
	Delete(ctx context.Context, id string) error
}

// MemoryRepo is the in-memory template store for tests and local development.
type MemoryRepo struct {
	mu    sync.RWMutex
	store map[string]*Template
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[string]*Template)}
}

func (m *MemoryRepo) Insert(ctx context.Context, t *Template) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[t.ID]; ok {
		return workflow.Conflictf("template %s already exists", t.ID)
	}
	cp := *t
	m.store[t.ID] = &cp
	return nil
}

func (m *MemoryRepo) Get(ctx context.Context, id string) (*Template, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if t, ok := m.store[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, workflow.NotFoundf("template %s not found", id)
}

func (m *MemoryRepo) List(ctx context.Context) ([]*Template, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Template, 0, len(m.store))
	for _, t := range m.store {
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MemoryRepo) Update(ctx context.Context, t *Template) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[t.ID]; !ok {
		return workflow.NotFoundf("template %s not found", t.ID)
	}
	cp := *t
	m.store[t.ID] = &cp
	return nil
}

func (m *MemoryRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return workflow.NotFoundf("template %s not found", id)
	}
	delete(m.store, id)
	return nil
}

// MongoRepo is the MongoDB-backed template store.
type MongoRepo struct {
	col *mongo.Collection
}

func NewMongoRepo(col *mongo.Collection) *MongoRepo {
	idx := mongo.IndexModel{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)}
	col.Indexes().CreateOne(context.Background(), idx)
	return &MongoRepo{col: col}
}

func (m *MongoRepo) Insert(ctx context.Context, t *Template) error {
	if _, err := m.col.InsertOne(ctx, t); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return workflow.Conflictf("template %s already exists", t.ID)
		}
		return err
	}
	return nil
}

func (m *MongoRepo) Get(ctx context.Context, id string) (*Template, error) {
	var t Template
	if err := m.col.FindOne(ctx, bson.M{"id": id}).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, workflow.NotFoundf("template %s not found", id)
		}
		return nil, err
	}
	return &t, nil
}

func (m *MongoRepo) List(ctx context.Context) ([]*Template, error) {
	cur, err := m.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*Template{}
	for cur.Next(ctx) {
		var t Template
		if err := cur.Decode(&t); err != nil {
			return nil, err
		}
		out = append(out, &t)
	}
	return out, cur.Err()
}

func (m *MongoRepo) Update(ctx context.Context, t *Template) error {
	res, err := m.col.ReplaceOne(ctx, bson.M{"id": t.ID}, t)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return workflow.NotFoundf("template %s not found", t.ID)
	}
	return nil
}

func (m *MongoRepo) Delete(ctx context.Context, id string) error {
	res, err := m.col.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return workflow.NotFoundf("template %s not found", id)
	}
	return nil
}
