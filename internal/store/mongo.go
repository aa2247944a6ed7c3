package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const mongoConnectTimeout = 10 * time.Second

// MongoStore implements DocumentStore with one MongoDB collection per
// collection name and ObjectID primary keys.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// Ensure MongoStore implements DocumentStore.
var _ DocumentStore = (*MongoStore)(nil)

// NewMongo connects to uri and returns a store over database dbName.
// dbName defaults to "solvix" if empty.
func NewMongo(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	connectCtx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return NewMongoWithClient(client, dbName), nil
}

// NewMongoWithClient wraps an already connected client.
func NewMongoWithClient(client *mongo.Client, dbName string) *MongoStore {
	if dbName == "" {
		dbName = "solvix"
	}
	return &MongoStore{client: client, db: client.Database(dbName)}
}

// Backend returns "mongo".
func (s *MongoStore) Backend() string { return "mongo" }

// Ping verifies the primary is reachable.
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnect mongo: %w", err)
	}
	return nil
}

// mongoDocument is a raw BSON document.
type mongoDocument struct {
	raw bson.Raw
}

func (d mongoDocument) ID() string {
	if oid, ok := d.raw.Lookup("_id").ObjectIDOK(); ok {
		return oid.Hex()
	}
	return ""
}

func (d mongoDocument) Decode(v any) error {
	return bson.Unmarshal(d.raw, v)
}

// toBSON converts a Filter; the id key becomes an _id ObjectID match. A
// malformed id can never match, which is reported as ErrNotFound.
func toBSON(filter Filter) (bson.M, error) {
	if err := checkFilter(filter); err != nil {
		return nil, err
	}

	m := bson.M{}
	for k, v := range filter {
		if k == SearchKey {
			search := v.(AnyContains)
			pattern := regexp.QuoteMeta(search.Text)
			or := make(bson.A, 0, len(search.Fields))
			for _, f := range search.Fields {
				or = append(or, bson.M{f: bson.M{"$regex": pattern, "$options": "i"}})
			}
			m["$or"] = or
			continue
		}
		if k != IDField {
			m[k] = v
			continue
		}
		hex, _ := v.(string)
		oid, err := primitive.ObjectIDFromHex(hex)
		if err != nil {
			return nil, ErrNotFound
		}
		m["_id"] = oid
	}
	return m, nil
}

var ascendingID = bson.D{{Key: "_id", Value: 1}}

// Insert stores doc under a new ObjectID.
func (s *MongoStore) Insert(ctx context.Context, collection string, doc any) (string, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	var fields bson.D
	if err := bson.Unmarshal(raw, &fields); err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}

	oid := primitive.NewObjectID()
	withID := append(bson.D{{Key: "_id", Value: oid}}, fields...)
	if _, err := s.db.Collection(collection).InsertOne(ctx, withID); err != nil {
		return "", fmt.Errorf("insert document: %w", err)
	}
	return oid.Hex(), nil
}

// FindOne returns the lowest-_id document matching filter.
func (s *MongoStore) FindOne(ctx context.Context, collection string, filter Filter) (Document, error) {
	m, err := toBSON(filter)
	if err != nil {
		return nil, err
	}

	raw, err := s.db.Collection(collection).FindOne(ctx, m, options.FindOne().SetSort(ascendingID)).Raw()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find document: %w", err)
	}
	return mongoDocument{raw: raw}, nil
}

// FindMany returns the documents matching filter sorted by _id, which
// follows insertion order within the precision of ObjectID timestamps.
func (s *MongoStore) FindMany(ctx context.Context, collection string, filter Filter, opts FindOptions) ([]Document, error) {
	m, err := toBSON(filter)
	if errors.Is(err, ErrNotFound) {
		return []Document{}, nil
	}
	if err != nil {
		return nil, err
	}

	findOpts := options.Find().SetSort(ascendingID)
	if opts.Limit > 0 {
		findOpts.SetLimit(int64(opts.Limit))
	}

	cur, err := s.db.Collection(collection).Find(ctx, m, findOpts)
	if err != nil {
		return nil, fmt.Errorf("find documents: %w", err)
	}
	defer cur.Close(ctx)

	docs := []Document{}
	for cur.Next(ctx) {
		// cur.Current is reused by the next call.
		raw := make(bson.Raw, len(cur.Current))
		copy(raw, cur.Current)
		docs = append(docs, mongoDocument{raw: raw})
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}

// UpdateOne applies $set on the given fields.
func (s *MongoStore) UpdateOne(ctx context.Context, collection string, filter Filter, fields Fields) error {
	if len(fields) == 0 {
		return nil
	}
	if err := checkFields(fields); err != nil {
		return err
	}
	m, err := toBSON(filter)
	if err != nil {
		return err
	}

	res, err := s.db.Collection(collection).UpdateOne(ctx, m, bson.M{"$set": bson.M(fields)})
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Collections lists the database's collection names.
func (s *MongoStore) Collections(ctx context.Context) ([]string, error) {
	names, err := s.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	sort.Strings(names)
	return names, nil
}
