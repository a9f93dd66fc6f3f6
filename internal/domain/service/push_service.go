package service

import (
	"context"
	"fmt"

	"pushrelay/internal/domain/entity"
	"pushrelay/internal/errors"
)

// DeliveryFailureKind classifies a failed push.
type DeliveryFailureKind int

const (
	// DeliveryTransient failures may succeed later: timeouts, 5xx, unexpected responses.
	DeliveryTransient DeliveryFailureKind = iota
	// DeliveryPermanent failures never succeed again: the subscription is gone.
	DeliveryPermanent
)

func (k DeliveryFailureKind) String() string {
	if k == DeliveryPermanent {
		return "permanent"
	}

	return "transient"
}

// DeliveryError reports a classified push failure. StatusCode is 0 when no response was received.
type DeliveryError struct {
	Kind       DeliveryFailureKind
	StatusCode int
	Err        error
}

func (e *DeliveryError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s push failure (status %d): %v", e.Kind, e.StatusCode, e.Err)
	}

	return fmt.Sprintf("%s push failure: %v", e.Kind, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// IsPermanentDelivery reports whether err is a permanent push failure.
func IsPermanentDelivery(err error) bool {
	var deliveryErr *DeliveryError

	return errors.As(err, &deliveryErr) && deliveryErr.Kind == DeliveryPermanent
}

// PushService defines the Web Push transport.
type PushService interface {
	// Deliver encrypts and sends one payload to the subscription's push service.
	// It returns nil once the push service accepts the message, or a *DeliveryError.
	// Implementations must not touch storage; acting on the outcome is the caller's job.
	Deliver(ctx context.Context, subscription *entity.Subscription, payload entity.Payload) error

	// PublicKey returns the application server key clients subscribe with.
	PublicKey() string
}
