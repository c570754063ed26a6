package docstore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/biblioworks/marcflow/pkg/config"
	"github.com/biblioworks/marcflow/pkg/errors"
	"github.com/biblioworks/marcflow/pkg/logger"
)

// MongoSink writes record documents into a MongoDB collection.
type MongoSink struct {
	client     *mongo.Client
	collection *mongo.Collection
	logger     *zap.Logger
	inserted   int64
}

// NewMongoSink connects to MongoDB and verifies the connection with a
// ping before any record is exported.
func NewMongoSink(ctx context.Context, cfg *config.DocStoreConfig) (*MongoSink, error) {
	if cfg.URI == "" || cfg.Database == "" || cfg.Collection == "" {
		return nil, errors.New(errors.ErrorTypeConfig, "docstore destination requires uri, database and collection")
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConnection, "failed to connect to mongodb")
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(err, errors.ErrorTypeConnection, "failed to ping mongodb")
	}

	log := logger.Get().With(zap.String("sink", "mongodb"))
	log.Info("connected to mongodb",
		zap.String("database", cfg.Database),
		zap.String("collection", cfg.Collection))

	return &MongoSink{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
		logger:     log,
	}, nil
}

// Insert stores one record document.
func (s *MongoSink) Insert(ctx context.Context, doc map[string]interface{}) error {
	if _, err := s.collection.InsertOne(ctx, bson.M(doc)); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConnection, "failed to insert record document")
	}
	s.inserted++
	return nil
}

// Close disconnects from MongoDB.
func (s *MongoSink) Close(ctx context.Context) error {
	s.logger.Info("mongodb sink closed", zap.Int64("inserted", s.inserted))
	if err := s.client.Disconnect(ctx); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConnection, "failed to disconnect from mongodb")
	}
	return nil
}
