package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	errs "github.com/matzehuels/stackcanvas/pkg/errors"
	"github.com/matzehuels/stackcanvas/pkg/stack"
)

// Default MongoDB names.
const (
	DefaultMongoDatabase   = "stackcanvas"
	DefaultMongoCollection = "stacks"
)

// MongoConfig configures the MongoDB backend.
type MongoConfig struct {
	URI        string `toml:"uri" json:"-"`
	Database   string `toml:"database" json:"database,omitempty"`
	Collection string `toml:"collection" json:"collection,omitempty"`
}

// MongoStore keeps one BSON document per stack, keyed by _id.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	now    func() time.Time
}

// NewMongoStore connects to MongoDB and pings the primary, retrying while
// the server comes up.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.Database == "" {
		cfg.Database = DefaultMongoDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultMongoCollection
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeStorage, err, "connect to mongodb")
	}
	err = retry(ctx, DefaultConnectAttempts, DefaultConnectDelay, func() error {
		return transient(client.Ping(ctx, readpref.Primary()))
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, errs.Wrap(errs.ErrCodeStorage, err, "ping mongodb")
	}

	coll := client.Database(cfg.Database).Collection(cfg.Collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "updated_at", Value: -1}}})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, errs.Wrap(errs.ErrCodeStorage, err, "create mongodb index")
	}
	return &MongoStore{client: client, coll: coll, now: time.Now}, nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (doc stack.Document, err error) {
	defer func(start time.Time) { observe(ctx, "mongo", "get", start, err) }(time.Now())

	err = s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return stack.Document{}, notFound(id)
	}
	if err != nil {
		return stack.Document{}, errs.Wrap(errs.ErrCodeStorage, err, "mongodb get %q", id)
	}
	return doc, nil
}

func (s *MongoStore) Put(ctx context.Context, doc stack.Document) (err error) {
	defer func(start time.Time) { observe(ctx, "mongo", "put", start, err) }(time.Now())

	doc, err = stamp(doc, s.now())
	if err != nil {
		return err
	}
	// Mongo keeps millisecond precision.
	doc.CreatedAt = doc.CreatedAt.Truncate(time.Millisecond)
	doc.UpdatedAt = doc.UpdatedAt.Truncate(time.Millisecond)

	_, err = s.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return errs.Wrap(errs.ErrCodeStorage, err, "mongodb put %q", doc.ID)
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) (err error) {
	defer func(start time.Time) { observe(ctx, "mongo", "delete", start, err) }(time.Now())

	if _, err = s.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return errs.Wrap(errs.ErrCodeStorage, err, "mongodb delete %q", id)
	}
	return nil
}

// List projects the summary fields server-side.
func (s *MongoStore) List(ctx context.Context) (out []Summary, err error) {
	defer func(start time.Time) { observe(ctx, "mongo", "list", start, err) }(time.Now())

	pipeline := mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "updated_at", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$project", Value: bson.D{
			{Key: "name", Value: "$state.name"},
			{Key: "updated_at", Value: 1},
			{Key: "containers", Value: bson.M{"$size": bson.M{"$ifNull": bson.A{"$state.containers", bson.A{}}}}},
			{Key: "nodes", Value: bson.M{"$add": bson.A{
				bson.M{"$size": bson.M{"$ifNull": bson.A{"$state.nodes", bson.A{}}}},
				bson.M{"$sum": bson.M{"$map": bson.M{
					"input": bson.M{"$ifNull": bson.A{"$state.containers", bson.A{}}},
					"as":    "c",
					"in":    bson.M{"$size": bson.M{"$ifNull": bson.A{"$$c.members", bson.A{}}}},
				}}},
			}}},
		}}},
	}

	cur, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeStorage, err, "mongodb list")
	}
	out = []Summary{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, errs.Wrap(errs.ErrCodeStorage, err, "mongodb list")
	}
	return out, nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
