package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const MongoCollectionName = "Ledger_snapshots"

type mongoSnapshot struct {
	ScopeID   string    `bson:"_id"`
	Payload   []byte    `bson:"payload"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	timeout    time.Duration
}

// NewMongoStore uses an already connected client. The client stays owned by
// the caller; Close does not disconnect it.
func NewMongoStore(client *mongo.Client, database string, timeout time.Duration) *MongoStore {
	return &MongoStore{
		client:     client,
		collection: client.Database(database).Collection(MongoCollectionName),
		timeout:    timeout,
	}
}

func (s *MongoStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *MongoStore) Load(ctx context.Context, scopeID string) ([]byte, bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var doc mongoSnapshot
	err := s.collection.FindOne(ctx, bson.M{"_id": scopeID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("find snapshot: %w", err)
	}
	return doc.Payload, true, nil
}

func (s *MongoStore) Save(ctx context.Context, scopeID string, data []byte) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	doc := mongoSnapshot{
		ScopeID:   scopeID,
		Payload:   data,
		UpdatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	_, err := s.collection.ReplaceOne(ctx, bson.M{"_id": scopeID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, scopeID string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.collection.DeleteOne(ctx, bson.M{"_id": scopeID}); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}

func (s *MongoStore) Keys(ctx context.Context) ([]string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	opts := options.Find().SetProjection(bson.M{"_id": 1}).SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := s.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find snapshots: %w", err)
	}
	defer cursor.Close(ctx)

	var keys []string
	for cursor.Next(ctx) {
		var doc struct {
			ScopeID string `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode snapshot id: %w", err)
		}
		keys = append(keys, doc.ScopeID)
	}
	return keys, cursor.Err()
}

func (s *MongoStore) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *MongoStore) Close() error { return nil }
