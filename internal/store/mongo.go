package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	defaultDatabase   = "financial_news_aggregator"
	defaultCollection = "news_articles"

	// A primary that cannot answer a ping within this window at startup
	// is treated as absent.
	mongoProbeTimeout = 2 * time.Second
)

type mongoBackend struct {
	client     *mongo.Client
	collection *mongo.Collection
}

func newMongoBackend(ctx context.Context, cfg Config) (*mongoBackend, error) {
	opts := options.Client().
		ApplyURI(cfg.MongoURI).
		SetServerSelectionTimeout(mongoProbeTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}

	probeCtx, cancel := context.WithTimeout(ctx, mongoProbeTimeout)
	defer cancel()
	if err := client.Ping(probeCtx, readpref.Primary()); err != nil {
		client.Disconnect(ctx)
		return nil, err
	}

	database := cfg.Database
	if database == "" {
		database = defaultDatabase
	}
	collection := cfg.Collection
	if collection == "" {
		collection = defaultCollection
	}

	return &mongoBackend{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}, nil
}

func (m *mongoBackend) close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// save upserts with $set, so the primary keeps field-merge semantics.
func (m *mongoBackend) save(ctx context.Context, a Article) error {
	opts := options.Update().SetUpsert(true)
	_, err := m.collection.UpdateByID(ctx, a.ID, bson.M{"$set": a}, opts)
	return err
}

func (m *mongoBackend) all(ctx context.Context) ([]Article, error) {
	cursor, err := m.collection.Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var articles []Article
	if err := cursor.All(ctx, &articles); err != nil {
		return nil, err
	}
	return articles, nil
}

// deleteOlderThan selects expired records client-side so that the cutoff
// comparison matches the file backend exactly, then removes them by ID.
func (m *mongoBackend) deleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	articles, err := m.all(ctx)
	if err != nil {
		return 0, err
	}

	var ids []string
	for _, a := range articles {
		if isOlderThan(a, cutoff) {
			ids = append(ids, a.ID)
		}
	}
	if len(ids) == 0 {
		return 0, nil
	}

	result, err := m.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, err
	}
	return int(result.DeletedCount), nil
}
