package storage

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/charmbracelet/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/mondrian/pkg/errors"
)

// Collection names.
const (
	CollectionLayouts = "layouts"
	CollectionAtlases = "atlases"
)

// MongoStore is a Store backed by MongoDB.
type MongoStore struct {
	client  *mongo.Client
	layouts *mongo.Collection
	atlases *mongo.Collection
	logger  *log.Logger
}

// NewMongoStore connects to uri and pings the primary.
func NewMongoStore(ctx context.Context, uri, database string, logger *log.Logger) (*MongoStore, error) {
	if logger == nil {
		logger = log.Default()
	}
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().
		ApplyURI(uri).
		SetAppName("mondrian").
		SetServerSelectionTimeout(5*time.Second))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "connect to mongodb")
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "ping mongodb")
	}

	db := client.Database(database)
	s := &MongoStore{
		client:  client,
		layouts: db.Collection(CollectionLayouts),
		atlases: db.Collection(CollectionAtlases),
		logger:  logger.With("component", "store"),
	}
	if err := s.ensureIndexes(connectCtx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	s.logger.Debug("mongodb store ready", "database", database)
	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.layouts.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "trace_hash", Value: 1}},
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create layouts index")
	}
	return nil
}

func (s *MongoStore) SaveLayout(ctx context.Context, doc *LayoutDoc) error {
	stamp(&doc.ID, &doc.CreatedAt)
	if _, err := s.layouts.InsertOne(ctx, doc); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "insert layout")
	}
	return nil
}

func (s *MongoStore) GetLayout(ctx context.Context, id string) (*LayoutDoc, error) {
	var doc LayoutDoc
	if err := s.layouts.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if stderrors.Is(err, mongo.ErrNoDocuments) {
			return nil, errors.New(errors.ErrCodeNotFound, "layout %s not found", id)
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "find layout")
	}
	return &doc, nil
}

func (s *MongoStore) SaveAtlas(ctx context.Context, doc *AtlasDoc) error {
	stamp(&doc.ID, &doc.CreatedAt)
	if _, err := s.atlases.InsertOne(ctx, doc); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "insert atlas")
	}
	return nil
}

func (s *MongoStore) GetAtlas(ctx context.Context, id string) (*AtlasDoc, error) {
	var doc AtlasDoc
	if err := s.atlases.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if stderrors.Is(err, mongo.ErrNoDocuments) {
			return nil, errors.New(errors.ErrCodeNotFound, "atlas %s not found", id)
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "find atlas")
	}
	return &doc, nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
