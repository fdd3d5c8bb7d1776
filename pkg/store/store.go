// Package store persists hierarchies in MongoDB.
//
// Each node is one document in a collection:
//
//	{_id: "D", parents: ["B", "C"], meta: {...}, seq: 3}
//
// seq records declaration order so a loaded hierarchy lists its nodes the
// way they were saved. [MongoStore.Load] reads the whole collection into an
// in-memory [hierarchy.Hierarchy]; linearization then runs against that
// snapshot and never queries the database while merging.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/moose/Algorithm-C3/pkg/hierarchy"
)

// Defaults used by the CLI when flags are omitted.
const (
	DefaultDatabase   = "c3"
	DefaultCollection = "hierarchy"

	connectTimeout = 10 * time.Second
)

// ErrEmpty is returned by Load when the collection has no documents.
var ErrEmpty = errors.New("collection is empty")

// nodeDoc is the stored form of one node.
type nodeDoc struct {
	ID      string         `bson:"_id"`
	Parents []string       `bson:"parents"`
	Meta    map[string]any `bson:"meta,omitempty"`
	Seq     int            `bson:"seq"`
}

// MongoStore reads and writes hierarchy nodes in one collection.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	owned  bool
}

// Connect dials uri and returns a store over db.coll. The connection is
// verified with a ping before returning.
func Connect(ctx context.Context, uri, db, coll string) (*MongoStore, error) {
	if db == "" {
		db = DefaultDatabase
	}
	if coll == "" {
		coll = DefaultCollection
	}

	cctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(cctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(cctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	s := New(client.Database(db).Collection(coll))
	s.owned = true
	return s, nil
}

// New wraps an existing collection. The caller keeps ownership of the
// client; Close is then a no-op.
func New(coll *mongo.Collection) *MongoStore {
	return &MongoStore{client: coll.Database().Client(), coll: coll}
}

// Load reads every node document into a new hierarchy, ordered by seq.
func (s *MongoStore) Load(ctx context.Context) (*hierarchy.Hierarchy, error) {
	opts := options.Find().SetSort(bson.D{{Key: "seq", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find nodes: %w", err)
	}
	defer cur.Close(ctx)

	var docs []nodeDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode nodes: %w", err)
	}
	if len(docs) == 0 {
		return nil, ErrEmpty
	}
	return fromDocs(docs)
}

// Save upserts one document per node of h. Documents for nodes not in h
// are left untouched.
func (s *MongoStore) Save(ctx context.Context, h *hierarchy.Hierarchy) error {
	docs := toDocs(h)
	if len(docs) == 0 {
		return nil
	}

	models := make([]mongo.WriteModel, len(docs))
	for i, d := range docs {
		models[i] = mongo.NewReplaceOneModel().
			SetFilter(bson.D{{Key: "_id", Value: d.ID}}).
			SetReplacement(d).
			SetUpsert(true)
	}
	if _, err := s.coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("save nodes: %w", err)
	}
	return nil
}

// Close disconnects the client if the store created it.
func (s *MongoStore) Close(ctx context.Context) error {
	if !s.owned {
		return nil
	}
	return s.client.Disconnect(ctx)
}

func toDocs(h *hierarchy.Hierarchy) []nodeDoc {
	nodes := h.Nodes()
	docs := make([]nodeDoc, len(nodes))
	for i, n := range nodes {
		parents := n.Parents
		if parents == nil {
			parents = []string{}
		}
		docs[i] = nodeDoc{ID: n.ID, Parents: parents, Meta: n.Meta, Seq: i}
	}
	return docs
}

func fromDocs(docs []nodeDoc) (*hierarchy.Hierarchy, error) {
	h := hierarchy.New(nil)
	for _, d := range docs {
		if err := h.AddNode(hierarchy.Node{ID: d.ID, Parents: d.Parents, Meta: d.Meta}); err != nil {
			return nil, fmt.Errorf("load node %q: %w", d.ID, err)
		}
	}
	return h, nil
}
