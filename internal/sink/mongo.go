package sink

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/relaywire/connector/internal/connectorerr"
	"github.com/relaywire/connector/internal/event"
)

// MongoSink upserts or deletes a canonical event's body in a single
// MongoDB collection, keyed on a top-level "id" field (synthesized from
// the event's content-addressed id when the body has none).
type MongoSink struct {
	collection *mongo.Collection
	insertOnly bool
}

// NewMongoSink returns a MongoSink bound to database.collection on client.
func NewMongoSink(client *mongo.Client, database, collection string, insertOnly bool) *MongoSink {
	return &MongoSink{
		collection: client.Database(database).Collection(collection),
		insertOnly: insertOnly,
	}
}

// Write implements pipeline.Sink.
func (s *MongoSink) Write(ctx context.Context, evt *event.CanonicalEvent) error {
	switch evt.Operation {
	case event.OpWrite:
		return s.upsert(ctx, evt)
	case event.OpDelete:
		return s.delete(ctx, evt)
	default:
		return fmt.Errorf("%w: unsupported operation %v", connectorerr.ErrDatabase, evt.Operation)
	}
}

func (s *MongoSink) upsert(ctx context.Context, evt *event.CanonicalEvent) error {
	document, err := toBSONDocument(evt.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", connectorerr.ErrDatabase, err)
	}

	if s.insertOnly {
		if _, err := s.collection.InsertOne(ctx, document); err != nil {
			return fmt.Errorf("%w: insert: %v", connectorerr.ErrDatabase, err)
		}
		return nil
	}

	idValue, hasID := document["id"]
	if !hasID {
		idValue = evt.ID
	}
	filter := bson.M{"id": idValue}

	var existing bson.M
	err = s.collection.FindOne(ctx, filter).Decode(&existing)
	switch {
	case err == nil:
		if mongoID, ok := existing["_id"]; ok {
			document["_id"] = mongoID
		}
		if _, ok := document["id"]; !ok {
			document["id"] = idValue
		}
		if _, err := s.collection.ReplaceOne(ctx, filter, document); err != nil {
			return fmt.Errorf("%w: replace: %v", connectorerr.ErrDatabase, err)
		}
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		if _, ok := document["id"]; !ok {
			document["id"] = idValue
		}
		if _, err := s.collection.InsertOne(ctx, document); err != nil {
			return fmt.Errorf("%w: insert: %v", connectorerr.ErrDatabase, err)
		}
		return nil
	default:
		return fmt.Errorf("%w: query: %v", connectorerr.ErrDatabase, err)
	}
}

func (s *MongoSink) delete(ctx context.Context, evt *event.CanonicalEvent) error {
	document, err := toBSONDocument(evt.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", connectorerr.ErrDatabase, err)
	}

	idValue, hasID := document["id"]
	if !hasID {
		idValue = evt.ID
	}

	if _, err := s.collection.DeleteOne(ctx, bson.M{"id": idValue}); err != nil {
		return fmt.Errorf("%w: delete: %v", connectorerr.ErrDatabase, err)
	}
	return nil
}

// toBSONDocument converts the event body (a generic JSON tree) into a
// bson.M, the shape the driver expects for query filters and documents.
func toBSONDocument(body interface{}) (bson.M, error) {
	data, err := bson.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("convert body to bson: %w", err)
	}
	var doc bson.M
	if err := bson.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("convert body to bson: %w", err)
	}
	return doc, nil
}
