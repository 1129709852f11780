package tasklog

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore persists records to a MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to the MongoDB instance at uri and verifies the
// connection before returning.
func NewMongoStore(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}, nil
}

// Append inserts the record.
func (s *MongoStore) Append(ctx context.Context, rec Record) error {
	_, err := s.coll.InsertOne(ctx, rec)
	return err
}

// Query returns records matching q in timestamp order.
func (s *MongoStore) Query(ctx context.Context, q Query) ([]Record, error) {
	filter := bson.M{}
	ts := bson.M{}
	if !q.Start.IsZero() {
		ts["$gte"] = q.Start
	}
	if !q.End.IsZero() {
		ts["$lte"] = q.End
	}
	if len(ts) > 0 {
		filter["timestamp"] = ts
	}
	if q.Type != "" {
		filter["type"] = q.Type
	}
	if q.Outcome != "" {
		filter["outcome"] = string(q.Outcome)
	}
	cur, err := s.coll.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var res []Record
	if err := cur.All(ctx, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// Close disconnects from the server.
func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}
