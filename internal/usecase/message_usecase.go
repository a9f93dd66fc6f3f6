package usecase

import (
	"context"

	"pushrelay/internal/domain/entity"
)

// SendInput carries a raw send body; IsJSON reflects the request content type
type SendInput struct {
	Body   []byte
	IsJSON bool
}

// MessageUsecase defines the interface for queueing, pushing and polling messages
type MessageUsecase interface {
	// Send queues a payload for the token's subscription and attempts immediate delivery.
	// Delivery failures are never reported to the caller.
	Send(ctx context.Context, token string, input *SendInput) error

	// FetchPending drains and returns every queued message for the token, oldest first
	FetchPending(ctx context.Context, token string) ([]*entity.QueuedMessage, error)

	// PurgeExpired deletes messages older than the retention window
	PurgeExpired(ctx context.Context) (int64, error)
}
