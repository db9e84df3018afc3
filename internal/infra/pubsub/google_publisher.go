package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"vanguard/internal/domain/service"

	"cloud.google.com/go/pubsub/v2"
	pubsubpb "cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"github.com/pkg/errors"
)

// googlePubSubPublisher implements EventPublisher using Google Cloud Pub/Sub
type googlePubSubPublisher struct {
	client    *pubsub.Client
	publisher *pubsub.Publisher
	logger    *slog.Logger
}

// NewGooglePubSubPublisher creates a new Google Pub/Sub publisher
func NewGooglePubSubPublisher(ctx context.Context, projectID, topicID string, logger *slog.Logger) (service.EventPublisher, error) {
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	// Check if topic exists using TopicAdminClient
	topicPath := fmt.Sprintf("projects/%s/topics/%s", projectID, topicID)
	_, err = client.TopicAdminClient.GetTopic(ctx, &pubsubpb.GetTopicRequest{
		Topic: topicPath,
	})
	if err != nil {
		client.Close()

		return nil, errors.Wrapf(err, "failed to get topic %s", topicID)
	}

	publisher := client.Publisher(topicID)

	logger.Info("Google Pub/Sub publisher initialized",
		slog.String("project_id", projectID),
		slog.String("topic_id", topicID),
	)

	return &googlePubSubPublisher{
		client:    client,
		publisher: publisher,
		logger:    logger,
	}, nil
}

// PublishEmailVerification publishes a first-time verification event.
func (p *googlePubSubPublisher) PublishEmailVerification(ctx context.Context, event *service.EmailVerificationEvent) error {
	return p.publish(ctx, service.RoutingKeyEmailVerification, event)
}

// PublishEmailVerificationResend publishes a resend verification event.
func (p *googlePubSubPublisher) PublishEmailVerificationResend(ctx context.Context, event *service.EmailVerificationEvent) error {
	return p.publish(ctx, service.RoutingKeyEmailVerificationResend, event)
}

// publish sends the event to Google Pub/Sub with the routing key carried as
// a message attribute, so the mail worker can distinguish event types.
func (p *googlePubSubPublisher) publish(ctx context.Context, routingKey string, event *service.EmailVerificationEvent) error {
	// Serialize the event to JSON
	data, err := json.Marshal(event)
	if err != nil {
		return errors.WithStack(err)
	}

	msg := &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"routing_key": routingKey,
			"user_id":     event.ID,
		},
	}

	p.logger.Info("[GooglePubSub] Publishing event",
		slog.String("routing_key", routingKey),
		slog.String("user_id", event.ID),
	)

	// Publish message
	result := p.publisher.Publish(ctx, msg)

	// Wait for publish result
	serverID, err := result.Get(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	p.logger.Info("[GooglePubSub] Event published successfully",
		slog.String("routing_key", routingKey),
		slog.String("server_id", serverID),
	)

	return nil
}

// Close releases Pub/Sub client resources
func (p *googlePubSubPublisher) Close() error {
	if p.publisher != nil {
		p.publisher.Stop()
	}
	if p.client != nil {
		return errors.WithStack(p.client.Close())
	}

	return nil
}
