package inbound

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

// envelope is the push-service message shape on the wire.
type envelope struct {
	MessageID    string `json:"messageId"`
	Notification *struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	} `json:"notification"`
	Data map[string]string `json:"data"`
}

// PubSubSource feeds the router from a Cloud Pub/Sub subscription. It is the
// live (foreground) entry point; a process has no cold-start pending message,
// so Pending always reports none.
type PubSubSource struct {
	client    *pubsub.Client
	topicName string
	subName   string
}

func NewPubSubSource(projectID, topicName, credentialsFile string) (*PubSubSource, error) {
	ctx := context.Background()

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %w", err)
	}

	return &PubSubSource{
		client:    client,
		topicName: topicName,
		subName:   topicName + "-sub", // Convention: topic-sub
	}, nil
}

func (s *PubSubSource) Pending(ctx context.Context) (*Event, error) {
	return nil, nil
}

// Receive ensures the subscription exists, then pumps decoded events into
// dispatch until ctx is cancelled.
func (s *PubSubSource) Receive(ctx context.Context, dispatch func(Event)) error {
	log.Printf("[PubSub] Starting event source with topic: %s, subscription: %s", s.topicName, s.subName)

	sub := s.client.Subscription(s.subName)
	exists, err := sub.Exists(ctx)
	if err != nil {
		return fmt.Errorf("failed to check subscription existence: %w", err)
	}

	if !exists {
		topic := s.client.Topic(s.topicName)
		topicExists, err := topic.Exists(ctx)
		if err != nil {
			return fmt.Errorf("failed to check topic existence: %w", err)
		}
		if !topicExists {
			return fmt.Errorf("topic %s does not exist, cannot create subscription", s.topicName)
		}

		sub, err = s.client.CreateSubscription(ctx, s.subName, pubsub.SubscriptionConfig{
			Topic:       topic,
			AckDeadline: 10 * time.Second,
		})
		if err != nil {
			return fmt.Errorf("failed to create subscription: %w", err)
		}
		log.Printf("[PubSub] Created subscription: %s", s.subName)
	}

	log.Printf("[PubSub] Listening for messages on subscription: %s", s.subName)
	return sub.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		var env envelope
		if err := json.Unmarshal(msg.Data, &env); err != nil {
			log.Printf("[PubSub] Failed to unmarshal event: %v", err)
			msg.Ack()
			return
		}

		ev := Event{
			MessageID: env.MessageID,
			Type:      env.Data["type"],
			Data:      env.Data,
		}
		if env.Notification != nil {
			ev.Title = env.Notification.Title
			ev.Body = env.Notification.Body
		}
		if ev.Data == nil {
			ev.Data = map[string]string{}
		}

		dispatch(ev)
		msg.Ack()
	})
}

// Close releases the underlying client.
func (s *PubSubSource) Close() error {
	return s.client.Close()
}

// ChannelSource is an in-process entry point used by tests and embedded
// callers. A pending event, if set, models the cold-start launch message.
type ChannelSource struct {
	pending *Event
	ch      chan Event
}

func NewChannelSource(pending *Event, buffer int) *ChannelSource {
	return &ChannelSource{pending: pending, ch: make(chan Event, buffer)}
}

// Send enqueues a live event.
func (s *ChannelSource) Send(ev Event) {
	s.ch <- ev
}

func (s *ChannelSource) Pending(ctx context.Context) (*Event, error) {
	p := s.pending
	s.pending = nil
	return p, nil
}

func (s *ChannelSource) Receive(ctx context.Context, dispatch func(Event)) error {
	for {
		select {
		case ev := <-s.ch:
			dispatch(ev)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
