package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

func TestNewEvent(t *testing.T) {
	before := time.Now().UTC()
	e := NewEvent(TypePostCreated, PostPayload{ID: "abc", Title: "Hello"})
	if e.Type != TypePostCreated || e.Payload.ID != "abc" {
		t.Errorf("got %+v", e)
	}
	if e.Timestamp.Before(before) || e.Timestamp.Location() != time.UTC {
		t.Errorf("timestamp = %v", e.Timestamp)
	}
}

func TestNewPostDeleted_OmitsSnapshot(t *testing.T) {
	body, err := json.Marshal(NewPostDeleted("abc"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]map[string]any
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	payload := decoded["payload"]
	if payload["id"] != "abc" {
		t.Errorf("payload id = %v", payload["id"])
	}
	for _, key := range []string{"title", "body", "author", "createdAt", "updatedAt"} {
		if _, ok := payload[key]; ok {
			t.Errorf("payload unexpectedly has %q: %s", key, body)
		}
	}
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}
	if err := p.Publish(context.Background(), NewPostDeleted("x")); err != nil {
		t.Errorf("Publish: %v", err)
	}
}

func TestRabbitMQPublisher_RedialsAfterDrop(t *testing.T) {
	brokerDown := errors.New("dial rabbitmq: connection refused")
	dials := 0
	p := &RabbitMQPublisher{
		url: "amqp://localhost:5672/",
		dial: func(string) (*amqp.Connection, *amqp.Channel, error) {
			dials++
			return nil, nil, brokerDown
		},
	}

	for i := 1; i <= 2; i++ {
		if err := p.Publish(context.Background(), NewPostDeleted("p1")); !errors.Is(err, brokerDown) {
			t.Fatalf("Publish #%d err = %v", i, err)
		}
		if dials != i {
			t.Errorf("dials = %d after publish #%d", dials, i)
		}
	}

	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := p.Publish(context.Background(), NewPostDeleted("p1")); !errors.Is(err, errPublisherClosed) {
		t.Errorf("Publish after Close err = %v", err)
	}
	if dials != 2 {
		t.Errorf("dialed after Close: dials = %d", dials)
	}
	if err := p.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}
