// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"

	"pushrelay/internal/domain/entity"
	"pushrelay/internal/errors"
)

// Domain-specific errors for subscription persistence.
var (
	// ErrSubscriptionNotFound is returned when a subscription is not found.
	ErrSubscriptionNotFound = errors.New("subscription not found")
	// ErrDuplicateSubscription is returned when a generated id collides with a stored one.
	ErrDuplicateSubscription = errors.New("subscription already exists")
)

// SubscriptionRepository defines the interface for subscription-related storage operations.
// Subscriptions are immutable: there is no update.
type SubscriptionRepository interface {
	// CreateSubscription persists a new subscription.
	CreateSubscription(ctx context.Context, subscription *entity.Subscription) error

	// FindSubscriptionByID retrieves a subscription by its identifier.
	FindSubscriptionByID(ctx context.Context, id string) (*entity.Subscription, error)

	// DeleteSubscription removes a subscription and every message queued for it.
	// Deleting an unknown id is not an error.
	DeleteSubscription(ctx context.Context, id string) error
}
