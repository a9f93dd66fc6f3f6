// Package webpush delivers payloads through the Web Push protocol with VAPID authentication.
package webpush

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"pushrelay/config"
	"pushrelay/internal/domain/constants"
	"pushrelay/internal/domain/entity"
	"pushrelay/internal/domain/service"
	"pushrelay/internal/errors"
	"pushrelay/internal/infra/metrics"

	webpushlib "github.com/SherClockHolmes/webpush-go"
	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/fx"
)

const (
	// Only the start of an error body is inspected for the removal marker.
	maxErrorBodyBytes = 512

	defaultBreakerFailures    = 5
	defaultBreakerOpenTimeout = 30 * time.Second
)

// Params defines the required parameters
type Params struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

type pushService struct {
	vapid   config.VAPIDConfig
	push    config.PushConfig
	client  *http.Client
	logger  *slog.Logger
	mu      sync.Mutex
	breaker map[string]*gobreaker.CircuitBreaker[struct{}]
}

// New creates the Web Push sender from the VAPID and push configuration
func New(params Params) service.PushService {
	params.Logger.Info("VAPID configured",
		slog.String("publicKey", truncate(params.Config.VAPID.PublicKey, 20)),
		slog.String("subject", params.Config.VAPID.Subject),
	)

	return newPushService(params.Config.VAPID, params.Config.Push, &http.Client{Timeout: params.Config.Push.Timeout}, params.Logger)
}

func newPushService(vapid config.VAPIDConfig, push config.PushConfig, client *http.Client, logger *slog.Logger) *pushService {
	return &pushService{
		vapid:   vapid,
		push:    push,
		client:  client,
		logger:  logger,
		breaker: make(map[string]*gobreaker.CircuitBreaker[struct{}]),
	}
}

func (s *pushService) PublicKey() string {
	return s.vapid.PublicKey
}

// Deliver sends one encrypted notification and classifies the outcome.
func (s *pushService) Deliver(ctx context.Context, subscription *entity.Subscription, payload entity.Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &service.DeliveryError{Kind: service.DeliveryTransient, Err: errors.Wrap(err, "failed to encode payload")}
	}

	started := time.Now()
	err = s.execute(subscription.Endpoint, func() error {
		return s.send(ctx, subscription, body)
	})
	metrics.ObserveDelivery(outcomeOf(err), time.Since(started).Seconds())

	return err
}

func (s *pushService) send(ctx context.Context, subscription *entity.Subscription, body []byte) error {
	resp, err := webpushlib.SendNotificationWithContext(ctx, body, &webpushlib.Subscription{
		Endpoint: subscription.Endpoint,
		Keys: webpushlib.Keys{
			P256dh: subscription.P256dh,
			Auth:   subscription.Auth,
		},
	}, &webpushlib.Options{
		HTTPClient:      s.client,
		Subscriber:      subscriberOf(s.vapid.Subject),
		VAPIDPublicKey:  s.vapid.PublicKey,
		VAPIDPrivateKey: s.vapid.PrivateKey,
		TTL:             int(s.push.TTL.Seconds()),
		Urgency:         webpushlib.Urgency(s.push.Urgency),
	})
	if err != nil {
		return classifyError(err)
	}
	defer resp.Body.Close()

	return classifyResponse(resp)
}

// execute runs send behind the breaker of the endpoint's host.
func (s *pushService) execute(endpoint string, send func() error) error {
	if !s.push.CircuitBreaker.Enabled {
		return send()
	}

	_, err := s.breakerFor(endpoint).Execute(func() (struct{}, error) {
		return struct{}{}, send()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &service.DeliveryError{Kind: service.DeliveryTransient, Err: errors.Wrap(err, "push service unavailable")}
	}

	return err
}

func (s *pushService) breakerFor(endpoint string) *gobreaker.CircuitBreaker[struct{}] {
	host := endpoint
	if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
		host = u.Host
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if cb, ok := s.breaker[host]; ok {
		return cb
	}

	failures := s.push.CircuitBreaker.ConsecutiveFailures
	if failures == 0 {
		failures = defaultBreakerFailures
	}
	openTimeout := s.push.CircuitBreaker.OpenTimeout
	if openTimeout <= 0 {
		openTimeout = defaultBreakerOpenTimeout
	}

	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        host,
		MaxRequests: 1,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// A dead subscription says nothing about the health of its push service.
		IsSuccessful: func(err error) bool {
			return !isServiceFailure(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			s.logger.Warn("Push service circuit breaker state changed",
				slog.String("host", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
		},
	})
	s.breaker[host] = cb

	return cb
}

// classifyError handles failures where no response was received.
func classifyError(err error) error {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
		return &service.DeliveryError{Kind: service.DeliveryPermanent, Err: err}
	}
	if strings.Contains(err.Error(), constants.PermanentlyRemovedMarker) {
		return &service.DeliveryError{Kind: service.DeliveryPermanent, Err: err}
	}

	return &service.DeliveryError{Kind: service.DeliveryTransient, Err: err}
}

func classifyResponse(resp *http.Response) error {
	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return nil
	}

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	err := errors.Errorf("push service responded %s: %s", resp.Status, strings.TrimSpace(string(snippet)))

	kind := service.DeliveryTransient
	switch {
	case resp.StatusCode == http.StatusGone, resp.StatusCode == http.StatusNotFound:
		kind = service.DeliveryPermanent
	case strings.Contains(string(snippet), constants.PermanentlyRemovedMarker):
		kind = service.DeliveryPermanent
	}

	return &service.DeliveryError{Kind: kind, StatusCode: resp.StatusCode, Err: err}
}

// isServiceFailure reports errors that indicate the push service itself is unhealthy.
func isServiceFailure(err error) bool {
	if err == nil {
		return false
	}

	var deliveryErr *service.DeliveryError
	if !errors.As(err, &deliveryErr) {
		return true
	}
	if deliveryErr.Kind == service.DeliveryPermanent {
		return false
	}

	return deliveryErr.StatusCode == 0 ||
		deliveryErr.StatusCode == http.StatusTooManyRequests ||
		deliveryErr.StatusCode >= http.StatusInternalServerError
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.DeliveryDelivered
	case service.IsPermanentDelivery(err):
		return metrics.DeliveryPermanent
	default:
		return metrics.DeliveryTransient
	}
}

// subscriberOf strips mailto: because the library adds it back.
func subscriberOf(subject string) string {
	return strings.TrimPrefix(subject, "mailto:")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	return s[:n] + "..."
}
