package repository

import (
	"context"
	"time"

	"pushrelay/internal/domain/entity"
)

// MessageRepository defines the per-subscription queue of undelivered payloads.
type MessageRepository interface {
	// AppendMessage persists a message and assigns its ID.
	// It returns ErrSubscriptionNotFound when the owning subscription does not exist.
	AppendMessage(ctx context.Context, message *entity.QueuedMessage) error

	// DrainMessages returns every message queued for the subscription in creation
	// order and deletes them as one atomic operation. Two concurrent drains never
	// return the same message.
	DrainMessages(ctx context.Context, subscriptionID string) ([]*entity.QueuedMessage, error)

	// PurgeExpiredMessages deletes every message created before the cutoff,
	// regardless of subscription, and returns how many were removed.
	PurgeExpiredMessages(ctx context.Context, before time.Time) (int64, error)
}
