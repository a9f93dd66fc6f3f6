package entity

import (
	"bytes"
	"strconv"
	"time"

	domainerrors "pushrelay/internal/domain/errors"

	"github.com/goccy/go-json"
)

// Payload is the JSON object relayed to the browser.
// The Service Worker reads text, url, icon and image; any other field is passed through untouched.
type Payload map[string]any

// Well-known payload fields.
const (
	PayloadText  = "text"
	PayloadURL   = "url"
	PayloadIcon  = "icon"
	PayloadImage = "image"
)

// QueuedMessage is a payload waiting for its subscription to poll.
type QueuedMessage struct {
	ID             int64     `json:"id"`              // Monotonically increasing, used for ordering only.
	SubscriptionID string    `json:"subscription_id"` // Owning subscription.
	Payload        Payload   `json:"payload"`         // The payload exactly as it was sent.
	CreatedAt      time.Time `json:"created_at"`      // Arrival time, used for ordering and expiry.
}

// ParsePayload turns a send body into a Payload.
// A JSON body must parse; a valid JSON value that is not an object yields an
// empty payload, which then fails validation for its missing text.
// Any other body is treated as plain text.
func ParsePayload(body []byte, isJSON bool) (Payload, error) {
	if !isJSON {
		return Payload{PayloadText: string(body)}, nil
	}

	var decoded any
	if err := json.Unmarshal(bytes.TrimSpace(body), &decoded); err != nil {
		return nil, domainerrors.ErrInvalidPayload
	}

	object, ok := decoded.(map[string]any)
	if !ok {
		return Payload{}, nil
	}

	return Payload(object), nil
}

// Text returns the text field as the notification will show it: strings as-is,
// numbers and booleans in their JSON form, and "" for anything else.
func (p Payload) Text() string {
	switch v := p[PayloadText].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	}

	return ""
}

// Validate checks the only structural requirement on a payload: a text field
// that is present and not empty, zero or false. Non-string values are relayed unchanged.
func (p Payload) Validate() error {
	switch v := p[PayloadText].(type) {
	case nil:
		return domainerrors.ErrMissingText
	case string:
		if v == "" {
			return domainerrors.ErrMissingText
		}
	case float64:
		if v == 0 {
			return domainerrors.ErrMissingText
		}
	case bool:
		if !v {
			return domainerrors.ErrMissingText
		}
	}

	return nil
}
