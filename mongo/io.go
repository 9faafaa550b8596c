package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/origon-labs/apiutils/errors"
	"github.com/origon-labs/apiutils/logger"
	"github.com/origon-labs/apiutils/observability"
)

// IO wraps a MongoDB client and database handle. A single IO is safe for
// concurrent use; the underlying driver pools connections.
type IO struct {
	client *mongo.Client
	db     *mongo.Database
	cfg    Config
	log    *logger.Logger
}

// Connect establishes a MongoDB connection with retry and ping verification.
func Connect(ctx context.Context, cfg Config) (*IO, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, apperrors.StartupConfig(err.Error())
	}

	log := logger.WithComponent("mongo")

	var client *mongo.Client
	var err error
	for attempt := 1; attempt <= cfg.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("mongo connection canceled: %w", ctx.Err())
		}

		connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
		client, err = mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
		if err == nil {
			err = client.Ping(connectCtx, nil)
		}
		cancel()

		if err == nil {
			log.Info("Mongo connection established", map[string]interface{}{
				"database": cfg.Database,
				"attempt":  attempt,
			})
			return &IO{
				client: client,
				db:     client.Database(cfg.Database),
				cfg:    cfg,
				log:    log,
			}, nil
		}

		if attempt < cfg.MaxRetries {
			backoff := time.Duration(attempt) * time.Second
			log.Warn("Mongo connection attempt failed, retrying", map[string]interface{}{
				"attempt": attempt,
				"error":   err.Error(),
				"backoff": backoff.String(),
			})
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, fmt.Errorf("mongo connection canceled during retry: %w", ctx.Err())
			}
		}
	}

	return nil, apperrors.DatabaseError(fmt.Errorf("failed to connect after %d attempts: %w", cfg.MaxRetries, err))
}

// Disconnect closes the client connection.
func (io *IO) Disconnect(ctx context.Context) error {
	if io == nil || io.client == nil {
		return nil
	}
	io.log.Info("Disconnecting from Mongo")
	if err := io.client.Disconnect(ctx); err != nil {
		return apperrors.DatabaseError(err)
	}
	return nil
}

// opContext bounds an operation with the configured timeout when the caller
// supplied no deadline.
func (io *IO) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, io.cfg.OperationTimeout)
}

// startSpan opens a db.query span tagged with the operation and collection.
func (io *IO) startSpan(ctx context.Context, op, collection string) (context.Context, trace.Span) {
	return observability.StartSpan(ctx, observability.SpanDBQuery,
		trace.WithAttributes(
			attribute.String("db.operation", op),
			attribute.String("db.collection", collection),
		))
}

// GetDocuments returns all documents in a collection matching the filter.
// A nil filter matches everything.
func (io *IO) GetDocuments(ctx context.Context, collection string, filter bson.M) ([]map[string]any, error) {
	ctx, cancel := io.opContext(ctx)
	defer cancel()
	ctx, span := io.startSpan(ctx, "find", collection)
	defer span.End()

	if filter == nil {
		filter = bson.M{}
	}

	cursor, err := io.db.Collection(collection).Find(ctx, filter)
	if err != nil {
		span.RecordError(err)
		return nil, apperrors.DatabaseError(err)
	}
	defer cursor.Close(ctx)

	docs := []map[string]any{}
	for cursor.Next(ctx) {
		var doc map[string]any
		if err := cursor.Decode(&doc); err != nil {
			span.RecordError(err)
			return nil, apperrors.DatabaseError(err)
		}
		docs = append(docs, doc)
	}
	if err := cursor.Err(); err != nil {
		span.RecordError(err)
		return nil, apperrors.DatabaseError(err)
	}
	return docs, nil
}

// GetDocument returns a single document by its ObjectID hex string.
func (io *IO) GetDocument(ctx context.Context, collection, id string) (map[string]any, error) {
	ctx, cancel := io.opContext(ctx)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.Validation(fmt.Sprintf("invalid document id: %s", id))
	}

	ctx, span := io.startSpan(ctx, "findOne", collection)
	defer span.End()

	var doc map[string]any
	err = io.db.Collection(collection).FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, apperrors.NotFound("document")
	}
	if err != nil {
		span.RecordError(err)
		return nil, apperrors.DatabaseError(err)
	}
	return doc, nil
}

// CreateDocument inserts a document and returns its generated ID as a hex
// string.
func (io *IO) CreateDocument(ctx context.Context, collection string, doc map[string]any) (string, error) {
	ctx, cancel := io.opContext(ctx)
	defer cancel()
	ctx, span := io.startSpan(ctx, "insertOne", collection)
	defer span.End()

	res, err := io.db.Collection(collection).InsertOne(ctx, doc)
	if err != nil {
		span.RecordError(err)
		return "", apperrors.DatabaseError(err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Sprintf("%v", res.InsertedID), nil
	}
	return oid.Hex(), nil
}

// UpdateDocument applies a $set patch to the document with the given ID and
// returns the updated document.
func (io *IO) UpdateDocument(ctx context.Context, collection, id string, patch map[string]any) (map[string]any, error) {
	ctx, cancel := io.opContext(ctx)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.Validation(fmt.Sprintf("invalid document id: %s", id))
	}

	ctx, span := io.startSpan(ctx, "findOneAndUpdate", collection)
	defer span.End()

	after := options.After
	var doc map[string]any
	err = io.db.Collection(collection).FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": patch},
		options.FindOneAndUpdate().SetReturnDocument(after),
	).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, apperrors.NotFound("document")
	}
	if err != nil {
		span.RecordError(err)
		return nil, apperrors.DatabaseError(err)
	}
	return doc, nil
}

// DeleteDocument removes the document with the given ID.
func (io *IO) DeleteDocument(ctx context.Context, collection, id string) error {
	ctx, cancel := io.opContext(ctx)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperrors.Validation(fmt.Sprintf("invalid document id: %s", id))
	}

	ctx, span := io.startSpan(ctx, "deleteOne", collection)
	defer span.End()

	res, err := io.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		span.RecordError(err)
		return apperrors.DatabaseError(err)
	}
	if res.DeletedCount == 0 {
		return apperrors.NotFound("document")
	}
	return nil
}

// DropCollection removes an entire collection. Intended for test fixtures.
func (io *IO) DropCollection(ctx context.Context, collection string) error {
	ctx, cancel := io.opContext(ctx)
	defer cancel()
	ctx, span := io.startSpan(ctx, "drop", collection)
	defer span.End()

	if err := io.db.Collection(collection).Drop(ctx); err != nil {
		span.RecordError(err)
		return apperrors.DatabaseError(err)
	}
	io.log.Warn("Collection dropped", map[string]interface{}{
		"collection": collection,
	})
	return nil
}

// Versions returns the schema version catalog surfaced by the config
// endpoint.
func (io *IO) Versions(ctx context.Context) ([]map[string]any, error) {
	return io.GetDocuments(ctx, io.cfg.VersionsCollection, nil)
}

// Enumerators returns the enumerator catalog surfaced by the config
// endpoint.
func (io *IO) Enumerators(ctx context.Context) ([]map[string]any, error) {
	return io.GetDocuments(ctx, io.cfg.EnumeratorsCollection, nil)
}

// CheckHealth pings the server and reports component health.
func (io *IO) CheckHealth(ctx context.Context) observability.Health {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := io.client.Ping(ctx, nil); err != nil {
		return observability.Down("mongo", err)
	}
	return observability.Up("mongo")
}
