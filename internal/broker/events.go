package broker

import (
	"context"
	"fmt"

	"lendit/internal/models"
)

// EventPublisher handles publishing domain events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishUserRegistered publishes UserRegistered event
func (ep *EventPublisher) PublishUserRegistered(ctx context.Context, event *models.UserRegisteredEvent) error {
	key := fmt.Sprintf("user-%d", event.UserID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishUserLoggedIn publishes UserLoggedIn event
func (ep *EventPublisher) PublishUserLoggedIn(ctx context.Context, event *models.UserLoggedInEvent) error {
	key := fmt.Sprintf("user-%d", event.UserID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishProductListed publishes ProductListed event
func (ep *EventPublisher) PublishProductListed(ctx context.Context, event *models.ProductListedEvent) error {
	key := fmt.Sprintf("product-%d", event.ProductID)
	return ep.producer.PublishEvent(ctx, key, event)
}
