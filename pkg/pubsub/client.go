// Package pubsub wraps the Pub/Sub v2 SDK. The client resolves configured
// topic and subscription IDs to full resource names and verifies that every
// configured subscription exists before the process starts consuming.
package pubsub

import (
	"context"
	"errors"
	"fmt"
	"strings"

	pubsub "cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ParzivalXIII/inventory-management-system/pkg/config"
	"github.com/ParzivalXIII/inventory-management-system/pkg/logger"
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

func clientOptions(gcp config.GCPConfig) []option.ClientOption {
	var opts []option.ClientOption
	switch {
	case strings.TrimSpace(gcp.CredentialsJSON) != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(gcp.CredentialsJSON)))
	case strings.TrimSpace(gcp.ApplicationCredentials) != "":
		opts = append(opts, option.WithCredentialsFile(gcp.ApplicationCredentials))
	}
	return opts
}

// NewClient connects to Pub/Sub and fails fast when a configured
// subscription is missing. Subscriptions are provisioned out of band, never
// created at runtime.
func NewClient(ctx context.Context, gcp config.GCPConfig, cfg config.PubSubConfig, logg *logger.Logger) (*Client, error) {
	if strings.TrimSpace(gcp.ProjectID) == "" {
		return nil, errProjectIDRequired
	}

	psClient, err := pubsub.NewClient(ctx, gcp.ProjectID, clientOptions(gcp)...)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	c := &Client{client: psClient, projectID: gcp.ProjectID, cfg: cfg}
	if err := c.checkSubscriptions(ctx); err != nil {
		_ = psClient.Close()
		return nil, err
	}

	if logg != nil {
		logg.Info(ctx, "pubsub client initialized")
	}
	return c, nil
}

func (c *Client) checkSubscriptions(ctx context.Context) error {
	names := configuredSubscriptions(c.cfg)
	if len(names) == 0 {
		return errNoSubscriptions
	}
	for _, name := range names {
		fullName := c.subscriptionResourceName(name)
		if fullName == "" {
			return fmt.Errorf("subscription %q not configured", name)
		}

		_, err := c.client.SubscriptionAdminClient.GetSubscription(
			ctx,
			&pubsubpb.GetSubscriptionRequest{Subscription: fullName},
		)
		if err != nil {
			// v2 surfaces gRPC status codes.
			if status.Code(err) == codes.NotFound {
				return fmt.Errorf("subscription %q does not exist", name)
			}
			return fmt.Errorf("checking subscription %q: %w", name, err)
		}
	}
	return nil
}

func configuredSubscriptions(cfg config.PubSubConfig) []string {
	var names []string
	if sub := strings.TrimSpace(cfg.WarehouseSubscription); sub != "" {
		names = append(names, sub)
	}
	return names
}

// Subscription returns a Subscriber handle for a subscription ID or full
// resource name.
func (c *Client) Subscription(name string) *pubsub.Subscriber {
	if c == nil || c.client == nil {
		return nil
	}
	fullName := c.subscriptionResourceName(name)
	if fullName == "" {
		return nil
	}
	return c.client.Subscriber(fullName)
}

// WarehouseSubscription returns the subscriber feeding the warehouse worker.
func (c *Client) WarehouseSubscription() *pubsub.Subscriber {
	return c.Subscription(c.cfg.WarehouseSubscription)
}

// Publisher returns a publisher handle for a topic ID or full resource name.
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

// Ping re-checks that the configured subscriptions are reachable.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil {
		return errors.New("pubsub client not initialized")
	}
	return c.checkSubscriptions(ctx)
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func (c *Client) subscriptionResourceName(name string) string {
	return c.resourceName(name, "/subscriptions/")
}

func (c *Client) topicResourceName(name string) string {
	return c.resourceName(name, "/topics/")
}

func (c *Client) resourceName(name, kind string) string {
	if c == nil {
		return ""
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "projects/") && strings.Contains(trimmed, kind) {
		return trimmed
	}
	project := strings.TrimSpace(c.projectID)
	if project == "" {
		return ""
	}
	return "projects/" + project + kind + trimmed
}
