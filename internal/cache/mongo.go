// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoOptions configures a MongoStore.
type MongoOptions struct {
	URI        string
	Database   string
	Collection string
}

// MongoStore keeps one document per identity with a unique index on hash.
type MongoStore struct {
	client     *mongo.Client
	identities *mongo.Collection
}

type identityDoc struct {
	Hash       string    `bson:"hash"`
	ExternalID string    `bson:"external_id"`
	CreatedAt  time.Time `bson:"created_at"`
}

// NewMongoStore connects, pings and ensures the unique hash index.
func NewMongoStore(ctx context.Context, opts MongoOptions) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("pinging mongodb: %w", err)
	}

	s := &MongoStore{
		client:     client,
		identities: client.Database(opts.Database).Collection(opts.Collection),
	}
	if err := s.createIndexes(ctx); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("creating indexes: %w", err)
	}
	return s, nil
}

func (s *MongoStore) createIndexes(ctx context.Context) error {
	_, err := s.identities.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "hash", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (s *MongoStore) Get(ctx context.Context, key string) (string, bool, error) {
	var doc identityDoc
	err := s.identities.FindOne(ctx, bson.M{"hash": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("finding identity: %w", err)
	}
	return doc.ExternalID, true, nil
}

func (s *MongoStore) SetNX(ctx context.Context, key, value string) (string, bool, error) {
	_, err := s.identities.InsertOne(ctx, identityDoc{
		Hash:       key,
		ExternalID: value,
		CreatedAt:  time.Now().UTC(),
	})
	if err == nil {
		return value, true, nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return "", false, fmt.Errorf("inserting identity: %w", err)
	}

	existing, ok, err := s.Get(ctx, key)
	if err != nil {
		return "", false, err
	}
	if !ok {
		return "", false, fmt.Errorf("identity %s vanished after conflict", key)
	}
	return existing, false, nil
}

func (s *MongoStore) Delete(ctx context.Context, key string) error {
	if _, err := s.identities.DeleteOne(ctx, bson.M{"hash": key}); err != nil {
		return fmt.Errorf("deleting identity: %w", err)
	}
	return nil
}

func (s *MongoStore) Flush(ctx context.Context) error {
	if _, err := s.identities.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("flushing identities: %w", err)
	}
	return nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
