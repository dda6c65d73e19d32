package store

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/splitplan/pkg/errors"
	"github.com/matzehuels/splitplan/pkg/splitter"
)

// MongoOptions configures [NewMongoStore].
type MongoOptions struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
}

// MongoStore keeps records in a MongoDB collection.
type MongoStore struct {
	client  *mongo.Client
	coll    *mongo.Collection
	timeout time.Duration
}

type planDoc struct {
	ID        string     `bson:"_id"`
	CreatedAt time.Time  `bson:"created_at"`
	Input     []int64    `bson:"input"`
	Demand    []int64    `bson:"demand"`
	Order     []int      `bson:"order"`
	Layers    []layerDoc `bson:"layers"`
}

type layerDoc struct {
	Arity  int     `bson:"arity"`
	Total  int64   `bson:"total"`
	Return bool    `bson:"return"`
	Takes  []int64 `bson:"takes"`
}

// NewMongoStore connects, pings and ensures the created_at index.
func NewMongoStore(ctx context.Context, opts MongoOptions) (*MongoStore, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(opts.URI).
		SetServerSelectionTimeout(opts.Timeout))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	coll := client.Database(opts.Database).Collection(opts.Collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &MongoStore{client: client, coll: coll, timeout: opts.Timeout}, nil
}

// Save inserts p.
func (s *MongoStore) Save(ctx context.Context, p *splitter.Plan) (*Record, error) {
	if err := p.Verify(); err != nil {
		return nil, err
	}
	rec := newRecord(p, time.Now())

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if _, err := s.coll.InsertOne(ctx, toDoc(rec)); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "insert plan")
	}
	return rec, nil
}

// Get loads and re-verifies a record.
func (s *MongoStore) Get(ctx context.Context, id string) (*Record, error) {
	if err := errors.ValidatePlanID(id); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var doc planDoc
	err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "find plan %s", id)
	}
	return fromDoc(doc)
}

// List returns the newest records first.
func (s *MongoStore) List(ctx context.Context, limit int) ([]*Record, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cur, err := s.coll.Find(ctx, bson.D{}, options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(ClampLimit(limit))))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "list plans")
	}
	defer cur.Close(ctx)

	var docs []planDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "decode plans")
	}

	out := make([]*Record, 0, len(docs))
	for _, d := range docs {
		rec, err := fromDoc(d)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// Close disconnects the client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func toDoc(r *Record) planDoc {
	doc := planDoc{
		ID:        r.ID,
		CreatedAt: r.CreatedAt,
		Input:     r.Plan.Input,
		Demand:    r.Plan.Demand,
		Order:     r.Plan.Order,
		Layers:    make([]layerDoc, len(r.Plan.Layers)),
	}
	for i, l := range r.Plan.Layers {
		doc.Layers[i] = layerDoc{Arity: l.Arity, Total: l.Total, Return: l.Return, Takes: l.Takes}
	}
	return doc
}

// fromDoc rebuilds a record. Stored plans are verified like any import.
func fromDoc(d planDoc) (*Record, error) {
	p := &splitter.Plan{
		Input:  d.Input,
		Demand: d.Demand,
		Order:  d.Order,
		Layers: make([]splitter.Layer, len(d.Layers)),
	}
	for i, l := range d.Layers {
		p.Layers[i] = splitter.Layer{Arity: l.Arity, Total: l.Total, Return: l.Return, Takes: l.Takes}
	}
	if err := p.Verify(); err != nil {
		return nil, fmt.Errorf("stored plan %s: %w", d.ID, err)
	}
	return &Record{ID: d.ID, CreatedAt: d.CreatedAt.UTC(), Plan: p}, nil
}

var _ PlanStore = (*MongoStore)(nil)
