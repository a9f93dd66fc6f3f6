// Package entity contains the core business objects of the relay.
package entity

import (
	"strings"
	"time"

	"pushrelay/internal/domain/constants"
	domainerrors "pushrelay/internal/domain/errors"

	"github.com/google/uuid"
)

// Subscription is a browser's registered push destination.
// The ID is also the bearer credential for every later operation on it.
type Subscription struct {
	ID        string    `json:"id"`         // Random, unguessable identifier handed to the client.
	Endpoint  string    `json:"endpoint"`   // Push-service URL supplied by the browser, passed through verbatim.
	P256dh    string    `json:"p256dh"`     // Client ECDH public key (base64url).
	Auth      string    `json:"auth"`       // Client authentication secret (base64url).
	CreatedAt time.Time `json:"created_at"` // Timestamp of registration.
}

// NewSubscription validates a browser subscription and assigns it a fresh identifier.
func NewSubscription(endpoint, p256dh, auth string, now time.Time) (*Subscription, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, domainerrors.ErrValidationFailed.WithDetails("endpoint is required")
	}
	if p256dh == "" || auth == "" {
		return nil, domainerrors.ErrValidationFailed.WithDetails("keys.p256dh and keys.auth are required")
	}
	if IsStaleEndpoint(endpoint) {
		return nil, domainerrors.ErrStaleEndpoint
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return nil, domainerrors.ErrInternalError.WithDetails("failed to generate subscription id")
	}

	return &Subscription{
		ID:        id.String(),
		Endpoint:  endpoint,
		P256dh:    p256dh,
		Auth:      auth,
		CreatedAt: now,
	}, nil
}

// IsStaleEndpoint reports whether the browser handed out a revoked endpoint from its cache.
func IsStaleEndpoint(endpoint string) bool {
	return strings.Contains(endpoint, constants.StaleEndpointMarker)
}
