package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/pubsub/v2"

	"github.com/localbasket/localbasket-backend/pkg/config"
	"github.com/localbasket/localbasket-backend/pkg/logger"
)

const publishTimeout = 10 * time.Second

// Client is a publish-only Pub/Sub wrapper. When no project ID is
// configured it degrades to a no-op so local development does not
// require GCP credentials.
type Client struct {
	client    *pubsub.Client
	projectID string
	cfg       config.PubSubConfig
	logg      *logger.Logger
}

// New connects to Pub/Sub for the configured project. Returns a nil
// client (not an error) when the project ID is empty.
func New(ctx context.Context, gcp config.GCPConfig, cfg config.PubSubConfig, logg *logger.Logger) (*Client, error) {
	projectID := strings.TrimSpace(gcp.ProjectID)
	if projectID == "" {
		if logg != nil {
			logg.Warn(ctx, "pubsub disabled: no GCP project ID configured")
		}
		return nil, nil
	}

	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}
	if logg != nil {
		logg.Info(ctx, "pubsub connection established")
	}
	return &Client{client: client, projectID: projectID, cfg: cfg, logg: logg}, nil
}

// Close releases the Pub/Sub client resources.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// Publisher returns a publisher handle for the given topic ID or full
// resource name.
func (c *Client) Publisher(name string) *pubsub.Publisher {
	if c == nil || c.client == nil {
		return nil
	}
	fullName := c.topicResourceName(name)
	if fullName == "" {
		return nil
	}
	return c.client.Publisher(fullName)
}

// OrdersPublisher returns the configured order events publisher.
func (c *Client) OrdersPublisher() *pubsub.Publisher {
	if c == nil {
		return nil
	}
	return c.Publisher(c.cfg.OrdersTopic)
}

// ComplaintsPublisher returns the configured complaint events publisher.
func (c *Client) ComplaintsPublisher() *pubsub.Publisher {
	if c == nil {
		return nil
	}
	return c.Publisher(c.cfg.ComplaintsTopic)
}

// PublishJSON marshals the event and publishes it with the given event
// type attribute. Blocks until the server acknowledges or the timeout
// elapses. A nil publisher is a no-op.
func (c *Client) PublishJSON(ctx context.Context, pub *pubsub.Publisher, eventType string, event any) error {
	if c == nil || pub == nil {
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", eventType, err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	result := pub.Publish(publishCtx, &pubsub.Message{
		Data: payload,
		Attributes: map[string]string{
			"event_type":   eventType,
			"published_at": time.Now().UTC().Format(time.RFC3339Nano),
		},
	})
	if _, err := result.Get(publishCtx); err != nil {
		return fmt.Errorf("publish %s event: %w", eventType, err)
	}
	return nil
}

// PublishOrderEvent emits an order lifecycle event on the orders topic.
func (c *Client) PublishOrderEvent(ctx context.Context, eventType string, event any) error {
	return c.PublishJSON(ctx, c.OrdersPublisher(), eventType, event)
}

// PublishComplaintEvent emits a complaint lifecycle event on the complaints topic.
func (c *Client) PublishComplaintEvent(ctx context.Context, eventType string, event any) error {
	return c.PublishJSON(ctx, c.ComplaintsPublisher(), eventType, event)
}

func (c *Client) topicResourceName(name string) string {
	n := strings.TrimSpace(name)
	if n == "" {
		return ""
	}
	if strings.HasPrefix(n, "projects/") && strings.Contains(n, "/topics/") {
		return n
	}
	if c.projectID == "" {
		return ""
	}
	return fmt.Sprintf("projects/%s/topics/%s", c.projectID, n)
}
