package workflows

import (
	"context"
	"fmt"
	"net/http"

	"github.com/hypernova-labs/fattura-service/internal/config"
	"github.com/inngest/inngestgo"
	"github.com/sirupsen/logrus"
)

// InngestClient publishes invoice events and serves the registered functions
type InngestClient struct {
	client inngestgo.Client
	logger *logrus.Logger
}

// NewInngestClient creates the client from configuration
func NewInngestClient(cfg *config.Config, logger *logrus.Logger) (*InngestClient, error) {
	if cfg.Inngest.EventKey == "" {
		return nil, fmt.Errorf("INNGEST_EVENT_KEY not configured")
	}

	if cfg.Inngest.SigningKey == "" {
		return nil, fmt.Errorf("INNGEST_SIGNING_KEY not configured")
	}

	dev := cfg.Inngest.Dev
	client, err := inngestgo.NewClient(inngestgo.ClientOpts{
		EventKey:   &cfg.Inngest.EventKey,
		SigningKey: &cfg.Inngest.SigningKey,
		AppID:      cfg.Inngest.AppID,
		Dev:        &dev,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating Inngest client: %w", err)
	}

	return &InngestClient{
		client: client,
		logger: logger,
	}, nil
}

// Publish sends one event to Inngest
func (c *InngestClient) Publish(ctx context.Context, name string, data map[string]any) error {
	id, err := c.client.Send(ctx, inngestgo.Event{
		Name: name,
		Data: data,
	})
	if err != nil {
		return fmt.Errorf("error sending event %s: %w", name, err)
	}

	c.logger.WithFields(logrus.Fields{
		"event":    name,
		"event_id": id,
	}).Debug("Event published to Inngest")

	return nil
}

// RegisterWorkflows registers every function served by this app
func (c *InngestClient) RegisterWorkflows(sender InvoiceSender) error {
	delivery := NewDeliveryWorkflow(sender, c.logger)

	_, err := inngestgo.CreateFunction(
		c.client,
		inngestgo.FunctionOpts{
			ID:   "deliver-invoice",
			Name: "Deliver invoice",
		},
		inngestgo.EventTrigger(DeliveryRequestedEvent, nil),
		delivery.Deliver,
	)
	if err != nil {
		return fmt.Errorf("error registering deliver-invoice: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"functions": 1,
	}).Info("Workflows registered with Inngest")

	return nil
}

// Handler is the endpoint Inngest calls to run registered functions
func (c *InngestClient) Handler() http.Handler {
	return c.client.Serve()
}
