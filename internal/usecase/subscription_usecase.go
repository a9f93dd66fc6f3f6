package usecase

import (
	"context"

	"pushrelay/internal/domain/entity"
)

// SubscribeInput is a browser PushSubscription as posted by the client page
type SubscribeInput struct {
	Endpoint string
	P256dh   string
	Auth     string
}

// SubscriptionUsecase defines the interface for subscription lifecycle use cases
type SubscriptionUsecase interface {
	// Subscribe registers a browser subscription and returns it with its new id
	Subscribe(ctx context.Context, input *SubscribeInput) (*entity.Subscription, error)

	// Unsubscribe deletes a subscription and its queue; unknown ids succeed
	Unsubscribe(ctx context.Context, id string) error

	// PublicKey returns the VAPID public key clients subscribe with
	PublicKey(ctx context.Context) string

	// PairingQRCode renders a PNG carrying the relay URL and the caller's token
	PairingQRCode(ctx context.Context, token string) ([]byte, error)
}
