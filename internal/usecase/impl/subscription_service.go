package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "pushrelay/internal/delivery/context"
	"pushrelay/internal/domain/entity"
	domainerrors "pushrelay/internal/domain/errors"
	"pushrelay/internal/domain/repository"
	"pushrelay/internal/domain/service"
	"pushrelay/internal/errors"
	"pushrelay/internal/infra/metrics"
	"pushrelay/internal/usecase"

	"go.uber.org/fx"
)

type subscriptionService struct {
	subscriptionRepo repository.SubscriptionRepository
	pushService      service.PushService
	qrcodeService    service.QRCodeService
	logger           *slog.Logger
	now              func() time.Time
}

// SubscriptionServiceParams holds dependencies for SubscriptionService, injected by Fx.
type SubscriptionServiceParams struct {
	fx.In

	SubscriptionRepo repository.SubscriptionRepository
	PushService      service.PushService
	QRCodeService    service.QRCodeService
	Logger           *slog.Logger
}

// NewSubscriptionService creates a new subscription service instance
func NewSubscriptionService(params SubscriptionServiceParams) usecase.SubscriptionUsecase {
	return &subscriptionService{
		subscriptionRepo: params.SubscriptionRepo,
		pushService:      params.PushService,
		qrcodeService:    params.QRCodeService,
		logger:           params.Logger,
		now:              time.Now,
	}
}

// Subscribe validates the browser subscription and stores it under a fresh id
func (s *subscriptionService) Subscribe(ctx context.Context, input *usecase.SubscribeInput) (*entity.Subscription, error) {
	if input == nil {
		return nil, domainerrors.ErrValidationFailed
	}

	sub, err := entity.NewSubscription(input.Endpoint, input.P256dh, input.Auth, s.now().UTC())
	if err != nil {
		if errors.Is(err, domainerrors.ErrStaleEndpoint) {
			deliverycontext.Logger(ctx, s.logger).WarnContext(ctx, "Rejected stale subscription endpoint")
		}

		return nil, err
	}

	if err := s.subscriptionRepo.CreateSubscription(ctx, sub); err != nil {
		return nil, errors.Wrap(err, "failed to create subscription")
	}

	metrics.SubscriptionsRegistered.Inc()
	deliverycontext.Logger(ctx, s.logger).InfoContext(ctx, "Subscription registered", slog.String("subscription_id", sub.ID))

	return sub, nil
}

// Unsubscribe deletes the subscription; deleting twice is not an error
func (s *subscriptionService) Unsubscribe(ctx context.Context, id string) error {
	if id == "" {
		return domainerrors.ErrMissingID
	}

	if err := s.subscriptionRepo.DeleteSubscription(ctx, id); err != nil {
		return errors.Wrap(err, "failed to delete subscription")
	}

	metrics.SubscriptionsRemoved.WithLabelValues(metrics.RemovedByClient).Inc()
	deliverycontext.Logger(ctx, s.logger).InfoContext(ctx, "Subscription removed", slog.String("subscription_id", id))

	return nil
}

func (s *subscriptionService) PublicKey(_ context.Context) string {
	return s.pushService.PublicKey()
}

// PairingQRCode authenticates the token like a poll would, then renders it
func (s *subscriptionService) PairingQRCode(ctx context.Context, token string) ([]byte, error) {
	sub, err := authenticate(ctx, s.subscriptionRepo, token)
	if err != nil {
		return nil, err
	}

	png, err := s.qrcodeService.GeneratePairingQR(sub.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate pairing QR code")
	}

	return png, nil
}

// authenticate resolves a bearer token to its subscription
func authenticate(ctx context.Context, repo repository.SubscriptionRepository, token string) (*entity.Subscription, error) {
	if token == "" {
		return nil, domainerrors.ErrUnauthorized
	}

	sub, err := repo.FindSubscriptionByID(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrSubscriptionNotFound) {
			return nil, domainerrors.ErrSubscriptionNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to look up subscription")
	}

	return sub, nil
}
