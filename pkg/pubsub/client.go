// Package pubsub wraps the GCP Pub/Sub v2 client with the project's
// topic/subscription configuration. Subscriptions must already exist;
// the client fails fast at startup when one is missing.
package pubsub

import (
	"context"
	"errors"
	"fmt"
	"strings"

	pubsub "cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/bob-sav/gym-meat-sub000/pkg/config"
	"github.com/bob-sav/gym-meat-sub000/pkg/logger"
)

var (
	errProjectIDRequired = errors.New("gcp project id is required")
	errNoSubscriptions   = errors.New("pubsub subscription name is required")
)

type Client struct {
	client    *pubsub.Client
	projectID string
	cfg       config.PubSubConfig
}

// NewClient builds a Pub/Sub v2 client and verifies every configured
// subscription exists before returning it.
func NewClient(ctx context.Context, gcp config.GCPConfig, cfg config.PubSubConfig, logg *logger.Logger) (*Client, error) {
	projectID := strings.TrimSpace(gcp.ProjectID)
	if projectID == "" {
		return nil, errProjectIDRequired
	}

	inner, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	c := &Client{client: inner, projectID: projectID, cfg: cfg}
	if err := c.verifySubscriptions(ctx); err != nil {
		_ = inner.Close()
		return nil, err
	}

	if logg != nil {
		logg.Info(ctx, "pubsub client initialized")
	}
	return c, nil
}

func (c *Client) verifySubscriptions(ctx context.Context) error {
	verified := 0
	for _, name := range []string{c.cfg.OrdersSubscription} {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if err := c.verifySubscription(ctx, name); err != nil {
			return err
		}
		verified++
	}
	if verified == 0 {
		return errNoSubscriptions
	}
	return nil
}

func (c *Client) verifySubscription(ctx context.Context, name string) error {
	resource := c.subscriptionResourceName(name)
	if resource == "" {
		return fmt.Errorf("subscription %q not configured", name)
	}

	req := &pubsubpb.GetSubscriptionRequest{Subscription: resource}
	_, err := c.client.SubscriptionAdminClient.GetSubscription(ctx, req)
	switch {
	case err == nil:
		return nil
	case status.Code(err) == codes.NotFound:
		// v2 surfaces gRPC codes; NotFound means the subscription was never provisioned.
		return fmt.Errorf("subscription %q does not exist", name)
	default:
		return fmt.Errorf("checking subscription %q: %w", name, err)
	}
}

// Subscription returns a Subscriber for the given subscription ID or full
// resource name, or nil when it cannot be resolved.
func (c *Client) Subscription(name string) *pubsub.Subscriber {
	if c == nil || c.client == nil {
		return nil
	}
	resource := c.subscriptionResourceName(name)
	if resource == "" {
		return nil
	}
	return c.client.Subscriber(resource)
}

// OrdersSubscription returns the subscriber for order lifecycle events.
func (c *Client) OrdersSubscription() *pubsub.Subscriber {
	return c.Subscription(c.cfg.OrdersSubscription)
}

// Publisher returns a publisher for the given topic ID or full resource name.
func (c *Client) Publisher(name string) *pubsub.Publisher {
	if c == nil || c.client == nil {
		return nil
	}
	resource := c.topicResourceName(name)
	if resource == "" {
		return nil
	}
	return c.client.Publisher(resource)
}

// OrdersPublisher returns the publisher for order lifecycle events.
func (c *Client) OrdersPublisher() *pubsub.Publisher {
	return c.Publisher(c.cfg.OrdersTopic)
}

// Ping re-checks that the configured subscriptions are reachable.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil {
		return errors.New("pubsub client not initialized")
	}
	return c.verifySubscriptions(ctx)
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func (c *Client) subscriptionResourceName(name string) string {
	return c.resourceName("subscriptions", name)
}

func (c *Client) topicResourceName(name string) string {
	return c.resourceName("topics", name)
}

func (c *Client) resourceName(kind, name string) string {
	if c == nil {
		return ""
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	if strings.HasPrefix(name, "projects/") && strings.Contains(name, "/"+kind+"/") {
		return name
	}
	project := strings.TrimSpace(c.projectID)
	if project == "" {
		return ""
	}
	return fmt.Sprintf("projects/%s/%s/%s", project, kind, name)
}
