// Package mongo registers the MongoDB backend for mongodb:// and
// mongodb+srv:// store URIs.
package mongo

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"

	"github.com/kbukum/gonogo/logger"
	"github.com/kbukum/gonogo/store"
)

func init() {
	store.Register("mongodb", Dial)
	store.Register("mongodb+srv", Dial)
}

// Backend writes records to one MongoDB database.
type Backend struct {
	client *mongo.Client
	db     *mongo.Database
	hosts  []string
}

var _ store.Backend = (*Backend)(nil)

// Dial connects to cfg.URI and pings the primary. The database is the one
// named in the URI path, otherwise cfg.Database.
func Dial(ctx context.Context, cfg store.Config, log *logger.Logger) (store.Backend, error) {
	cs, err := connstring.ParseAndValidate(cfg.URI)
	if err != nil {
		return nil, fmt.Errorf("parse mongodb uri: %w", err)
	}

	opts := options.Client().ApplyURI(cfg.URI)
	if cs.ConnectTimeout == 0 {
		opts.SetConnectTimeout(cfg.Timeout())
	}
	if cs.ServerSelectionTimeout == 0 {
		opts.SetServerSelectionTimeout(cfg.Timeout())
	}
	if cfg.TLS.Enabled() {
		tlsCfg, err := cfg.TLS.Build()
		if err != nil {
			return nil, fmt.Errorf("mongodb tls: %w", err)
		}
		opts.SetTLSConfig(tlsCfg)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongodb ping: %w", err)
	}

	name := DatabaseName(cs, cfg.Database)
	log.Debug("MongoDB client ready", map[string]interface{}{
		"hosts":    strings.Join(cs.Hosts, ","),
		"database": name,
	})
	return &Backend{client: client, db: client.Database(name), hosts: cs.Hosts}, nil
}

// DatabaseName picks the URI database, then fallback, then the store default.
func DatabaseName(cs *connstring.ConnString, fallback string) string {
	if cs != nil && cs.Database != "" {
		return cs.Database
	}
	if fallback != "" {
		return fallback
	}
	return store.DefaultDatabase
}

// Document builds the stored document for rec. Only data is always present.
func Document(rec store.Record) bson.D {
	doc := bson.D{{Key: "data", Value: rec.Data}}
	if rec.SessionID != "" {
		doc = append(doc, bson.E{Key: "session_id", Value: rec.SessionID})
	}
	if !rec.ReceivedAt.IsZero() {
		doc = append(doc, bson.E{Key: "received_at", Value: rec.ReceivedAt.UTC()})
	}
	return doc
}

func (b *Backend) Name() string { return "mongodb" }

func (b *Backend) Target() string {
	return strings.Join(b.hosts, ",") + "/" + b.db.Name()
}

func (b *Backend) Insert(ctx context.Context, collection string, rec store.Record) error {
	_, err := b.db.Collection(collection).InsertOne(ctx, Document(rec))
	return err
}

func (b *Backend) Close(ctx context.Context) error {
	return b.client.Disconnect(ctx)
}
