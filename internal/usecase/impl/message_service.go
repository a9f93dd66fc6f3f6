package impl

import (
	"context"
	"log/slog"
	"time"

	"pushrelay/config"
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

type messageService struct {
	subscriptionRepo repository.SubscriptionRepository
	messageRepo      repository.MessageRepository
	pushService      service.PushService
	retention        time.Duration
	logger           *slog.Logger
	now              func() time.Time
}

// MessageServiceParams holds dependencies for MessageService, injected by Fx.
type MessageServiceParams struct {
	fx.In

	SubscriptionRepo repository.SubscriptionRepository
	MessageRepo      repository.MessageRepository
	PushService      service.PushService
	Config           *config.Config
	Logger           *slog.Logger
}

// NewMessageService creates a new message service instance
func NewMessageService(params MessageServiceParams) usecase.MessageUsecase {
	return &messageService{
		subscriptionRepo: params.SubscriptionRepo,
		messageRepo:      params.MessageRepo,
		pushService:      params.PushService,
		retention:        params.Config.Retention.Window,
		logger:           params.Logger,
		now:              time.Now,
	}
}

// Send checks credentials before the body: 401, then 404, then 400.
// Once the message is queued the call succeeds whatever the push outcome.
func (s *messageService) Send(ctx context.Context, token string, input *usecase.SendInput) error {
	sub, err := authenticate(ctx, s.subscriptionRepo, token)
	if err != nil {
		return err
	}

	if input == nil {
		input = &usecase.SendInput{}
	}

	payload, err := entity.ParsePayload(input.Body, input.IsJSON)
	if err != nil {
		return err
	}
	if err := payload.Validate(); err != nil {
		return err
	}

	msg := &entity.QueuedMessage{
		SubscriptionID: sub.ID,
		Payload:        payload,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.messageRepo.AppendMessage(ctx, msg); err != nil {
		// Deleted between lookup and append
		if errors.Is(err, repository.ErrSubscriptionNotFound) {
			return domainerrors.ErrSubscriptionNotFound
		}

		return errors.Wrap(err, "failed to queue message")
	}
	metrics.MessagesQueued.Inc()

	s.deliver(ctx, sub, payload)

	return nil
}

// deliver pushes once; a permanent failure removes the subscription.
func (s *messageService) deliver(ctx context.Context, sub *entity.Subscription, payload entity.Payload) {
	err := s.pushService.Deliver(ctx, sub, payload)
	if err == nil {
		return
	}

	logger := deliverycontext.Logger(ctx, s.logger.With(slog.String("subscription_id", sub.ID)))

	if !service.IsPermanentDelivery(err) {
		logger.WarnContext(ctx, "Push delivery failed, message stays queued", slog.Any("error", err))

		return
	}

	logger.InfoContext(ctx, "Push subscription expired, removing it", slog.Any("error", err))
	// The request may already be cancelled; the cleanup should still happen.
	if delErr := s.subscriptionRepo.DeleteSubscription(context.WithoutCancel(ctx), sub.ID); delErr != nil {
		logger.ErrorContext(ctx, "Failed to remove expired subscription", slog.Any("error", delErr))

		return
	}
	metrics.SubscriptionsRemoved.WithLabelValues(metrics.RemovedByPermanentFailure).Inc()
}

// FetchPending drains the token's queue
func (s *messageService) FetchPending(ctx context.Context, token string) ([]*entity.QueuedMessage, error) {
	sub, err := authenticate(ctx, s.subscriptionRepo, token)
	if err != nil {
		return nil, err
	}

	messages, err := s.messageRepo.DrainMessages(ctx, sub.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to drain messages")
	}
	metrics.MessagesDrained.Add(float64(len(messages)))

	return messages, nil
}

// PurgeExpired deletes every message older than the retention window
func (s *messageService) PurgeExpired(ctx context.Context) (int64, error) {
	cutoff := s.now().UTC().Add(-s.retention)

	purged, err := s.messageRepo.PurgeExpiredMessages(ctx, cutoff)
	if err != nil {
		return 0, errors.Wrap(err, "failed to purge expired messages")
	}
	metrics.MessagesPurged.Add(float64(purged))

	return purged, nil
}
