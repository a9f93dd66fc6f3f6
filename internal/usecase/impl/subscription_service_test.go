package impl

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	deliverycontext "pushrelay/internal/delivery/context"
	"pushrelay/internal/domain/entity"
	domainerrors "pushrelay/internal/domain/errors"
	"pushrelay/internal/domain/repository"
	mockRepo "pushrelay/internal/mocks/repository"
	mockSvc "pushrelay/internal/mocks/service"
	"pushrelay/internal/usecase"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 4, 1, 9, 30, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestSubscriptionService(t *testing.T) (*subscriptionService, *mockRepo.MockSubscriptionRepository, *mockSvc.MockPushService, *mockSvc.MockQRCodeService) {
	t.Helper()

	subRepo := mockRepo.NewMockSubscriptionRepository(t)
	pushSvc := mockSvc.NewMockPushService(t)
	qrSvc := mockSvc.NewMockQRCodeService(t)

	svc, ok := NewSubscriptionService(SubscriptionServiceParams{
		SubscriptionRepo: subRepo,
		PushService:      pushSvc,
		QRCodeService:    qrSvc,
		Logger:           discardLogger(),
	}).(*subscriptionService)
	require.True(t, ok)
	svc.now = func() time.Time { return fixedNow }

	return svc, subRepo, pushSvc, qrSvc
}

func TestSubscriptionService_Subscribe(t *testing.T) {
	svc, subRepo, _, _ := newTestSubscriptionService(t)
	ctx := context.Background()

	subRepo.EXPECT().
		CreateSubscription(ctx, mock.AnythingOfType("*entity.Subscription")).
		Return(nil)

	sub, err := svc.Subscribe(ctx, &usecase.SubscribeInput{
		Endpoint: "https://push.example/abc",
		P256dh:   "K1",
		Auth:     "A1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, sub.ID)
	assert.Equal(t, "https://push.example/abc", sub.Endpoint)
	assert.Equal(t, "K1", sub.P256dh)
	assert.Equal(t, "A1", sub.Auth)
	assert.Equal(t, fixedNow, sub.CreatedAt)
}

func TestSubscriptionService_Subscribe_IDsAreUnique(t *testing.T) {
	svc, subRepo, _, _ := newTestSubscriptionService(t)
	ctx := context.Background()

	subRepo.EXPECT().
		CreateSubscription(ctx, mock.AnythingOfType("*entity.Subscription")).
		Return(nil).
		Times(2)

	input := &usecase.SubscribeInput{Endpoint: "https://push.example/abc", P256dh: "K1", Auth: "A1"}
	first, err := svc.Subscribe(ctx, input)
	require.NoError(t, err)
	second, err := svc.Subscribe(ctx, input)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
}

func TestSubscriptionService_Subscribe_Validation(t *testing.T) {
	tests := []struct {
		name    string
		input   *usecase.SubscribeInput
		wantErr error
	}{
		{name: "nil input", input: nil, wantErr: domainerrors.ErrValidationFailed},
		{name: "missing endpoint", input: &usecase.SubscribeInput{P256dh: "K1", Auth: "A1"}, wantErr: domainerrors.ErrValidationFailed},
		{name: "missing keys", input: &usecase.SubscribeInput{Endpoint: "https://push.example/abc"}, wantErr: domainerrors.ErrValidationFailed},
		{
			name:    "stale endpoint",
			input:   &usecase.SubscribeInput{Endpoint: "https://permanently-removed.invalid/fcm/send/x", P256dh: "K1", Auth: "A1"},
			wantErr: domainerrors.ErrStaleEndpoint,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// No CreateSubscription expectation: nothing may be stored.
			svc, _, _, _ := newTestSubscriptionService(t)

			_, err := svc.Subscribe(context.Background(), tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSubscriptionService_Subscribe_StorageError(t *testing.T) {
	svc, subRepo, _, _ := newTestSubscriptionService(t)
	ctx := context.Background()
	dbErr := domainerrors.NewDatabaseExecuteError(errors.New("disk full"), "failed to create subscription")

	subRepo.EXPECT().
		CreateSubscription(ctx, mock.AnythingOfType("*entity.Subscription")).
		Return(dbErr)

	_, err := svc.Subscribe(ctx, &usecase.SubscribeInput{Endpoint: "https://push.example/abc", P256dh: "K1", Auth: "A1"})
	require.Error(t, err)

	var appErr domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 500, appErr.HTTPCode())
}

func TestSubscriptionService_Unsubscribe(t *testing.T) {
	svc, subRepo, _, _ := newTestSubscriptionService(t)
	ctx := context.Background()

	subRepo.EXPECT().DeleteSubscription(ctx, "u1").Return(nil).Times(2)

	require.NoError(t, svc.Unsubscribe(ctx, "u1"))
	require.NoError(t, svc.Unsubscribe(ctx, "u1"))
}

func TestSubscriptionService_Unsubscribe_LogsThroughRequestLogger(t *testing.T) {
	svc, subRepo, _, _ := newTestSubscriptionService(t)

	var buf bytes.Buffer
	reqLogger := slog.New(slog.NewJSONHandler(&buf, nil)).With(slog.String("request_id", "req-7"))
	ctx := deliverycontext.WithLogger(context.Background(), reqLogger)

	subRepo.EXPECT().DeleteSubscription(ctx, "u1").Return(nil)

	require.NoError(t, svc.Unsubscribe(ctx, "u1"))
	assert.Contains(t, buf.String(), `"msg":"Subscription removed"`)
	assert.Contains(t, buf.String(), `"request_id":"req-7"`)
}

func TestSubscriptionService_Unsubscribe_MissingID(t *testing.T) {
	svc, _, _, _ := newTestSubscriptionService(t)

	err := svc.Unsubscribe(context.Background(), "")
	assert.ErrorIs(t, err, domainerrors.ErrMissingID)
}

func TestSubscriptionService_PublicKey(t *testing.T) {
	svc, _, pushSvc, _ := newTestSubscriptionService(t)

	pushSvc.EXPECT().PublicKey().Return("BPublicKey")

	assert.Equal(t, "BPublicKey", svc.PublicKey(context.Background()))
}

func TestSubscriptionService_PairingQRCode(t *testing.T) {
	svc, subRepo, _, qrSvc := newTestSubscriptionService(t)
	ctx := context.Background()

	subRepo.EXPECT().FindSubscriptionByID(ctx, "u1").Return(&entity.Subscription{ID: "u1"}, nil)
	qrSvc.EXPECT().GeneratePairingQR("u1").Return([]byte("png"), nil)

	png, err := svc.PairingQRCode(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), png)
}

func TestSubscriptionService_PairingQRCode_Auth(t *testing.T) {
	svc, subRepo, _, _ := newTestSubscriptionService(t)
	ctx := context.Background()

	_, err := svc.PairingQRCode(ctx, "")
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)

	subRepo.EXPECT().FindSubscriptionByID(ctx, "nope").Return(nil, repository.ErrSubscriptionNotFound)

	_, err = svc.PairingQRCode(ctx, "nope")
	assert.ErrorIs(t, err, domainerrors.ErrSubscriptionNotFound)
}
