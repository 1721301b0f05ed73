package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	siteerrors "github.com/matzehuels/siteview/pkg/errors"
)

const (
	// DefaultMongoDatabase is used when no database name is configured.
	DefaultMongoDatabase = "siteview"

	mongoCollection = "candidate_sets"
)

// MongoStore keeps one document per set in the candidate_sets collection.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// OpenMongo connects to uri and ensures the created_at index exists.
func OpenMongo(ctx context.Context, uri, database string) (*MongoStore, error) {
	if database == "" {
		database = DefaultMongoDatabase
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, storeErr(err, "connect mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, storeErr(err, "ping mongo")
	}

	coll := client.Database(database).Collection(mongoCollection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})
	if err != nil {
		client.Disconnect(ctx)
		return nil, storeErr(err, "create index")
	}
	return &MongoStore{client: client, coll: coll}, nil
}

func (s *MongoStore) Save(ctx context.Context, set *CandidateSet) error {
	if err := validateSet(set); err != nil {
		return err
	}
	if _, err := s.coll.InsertOne(ctx, set); err != nil {
		return storeErr(err, "insert candidate set")
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (*CandidateSet, error) {
	if err := siteerrors.ValidateSetID(id); err != nil {
		return nil, err
	}
	var set CandidateSet
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&set)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, storeErr(err, "find candidate set")
	}
	set.CreatedAt = set.CreatedAt.UTC()
	return &set, nil
}

type mongoSummary struct {
	ID        string    `bson:"_id"`
	CreatedAt time.Time `bson:"created_at"`
	Source    string    `bson:"source"`
	Count     int       `bson:"count"`
}

func (s *MongoStore) List(ctx context.Context, limit int) ([]Summary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$limit", Value: int64(listLimit(limit))}},
		{{Key: "$project", Value: bson.D{
			{Key: "created_at", Value: 1},
			{Key: "source", Value: 1},
			{Key: "count", Value: bson.D{{Key: "$size", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$layouts", bson.A{}}}}}}},
		}}},
	}
	cur, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, storeErr(err, "list candidate sets")
	}
	defer cur.Close(ctx)

	var docs []mongoSummary
	if err := cur.All(ctx, &docs); err != nil {
		return nil, storeErr(err, "decode candidate sets")
	}
	out := make([]Summary, len(docs))
	for i, d := range docs {
		out[i] = Summary{ID: d.ID, CreatedAt: d.CreatedAt.UTC(), Source: d.Source, Count: d.Count}
	}
	return out, nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
