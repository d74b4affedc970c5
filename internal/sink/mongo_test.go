package sink

import (
	"context"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/relaywire/connector/internal/event"
)

func TestToBSONDocument_ObjectBody(t *testing.T) {
	body := map[string]interface{}{"id": "42", "title": "hello", "watchers": float64(3)}
	doc, err := toBSONDocument(body)
	if err != nil {
		t.Fatalf("toBSONDocument: %v", err)
	}
	if doc["id"] != "42" {
		t.Errorf("id = %v", doc["id"])
	}
	if doc["title"] != "hello" {
		t.Errorf("title = %v", doc["title"])
	}
}

func TestToBSONDocument_NonObjectBody(t *testing.T) {
	if _, err := toBSONDocument("not an object"); err == nil {
		t.Fatal("expected an error converting a scalar body to a bson document")
	}
}

// TestMongoSink_Live exercises the sink's upsert/delete semantics against
// a real MongoDB deployment. It is skipped unless MONGO_TEST_URL is set.
func TestMongoSink_Live(t *testing.T) {
	url := os.Getenv("MONGO_TEST_URL")
	if url == "" {
		t.Skip("MONGO_TEST_URL not set; skipping live MongoDB test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(url))
	if err != nil {
		t.Fatalf("mongo.Connect: %v", err)
	}
	defer client.Disconnect(ctx)

	sinkCollection := "connector_sink_test"
	s := NewMongoSink(client, "connector_test", sinkCollection, false)
	defer client.Database("connector_test").Collection(sinkCollection).Drop(ctx)

	body := map[string]interface{}{"id": "issue-1", "title": "first"}
	evt := event.New(body, "jira:issue_created", []event.PrimaryKeyField{{Key: "issue.id", Value: "1"}}, event.OpWrite)

	if err := s.Write(ctx, evt); err != nil {
		t.Fatalf("Write (insert): %v", err)
	}

	evt.Body = map[string]interface{}{"id": "issue-1", "title": "updated"}
	if err := s.Write(ctx, evt); err != nil {
		t.Fatalf("Write (replace): %v", err)
	}

	deleteEvt := event.New(map[string]interface{}{"id": "issue-1"}, "jira:issue_deleted", nil, event.OpDelete)
	if err := s.Write(ctx, deleteEvt); err != nil {
		t.Fatalf("Write (delete): %v", err)
	}
}
