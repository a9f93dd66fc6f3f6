package impl

import (
	"context"
	"testing"
	"time"

	"pushrelay/config"
	"pushrelay/internal/domain/entity"
	domainerrors "pushrelay/internal/domain/errors"
	"pushrelay/internal/domain/repository"
	"pushrelay/internal/domain/service"
	mockRepo "pushrelay/internal/mocks/repository"
	mockSvc "pushrelay/internal/mocks/service"
	"pushrelay/internal/usecase"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const retentionWindow = 7 * 24 * time.Hour

func newTestMessageService(t *testing.T) (*messageService, *mockRepo.MockSubscriptionRepository, *mockRepo.MockMessageRepository, *mockSvc.MockPushService) {
	t.Helper()

	subRepo := mockRepo.NewMockSubscriptionRepository(t)
	msgRepo := mockRepo.NewMockMessageRepository(t)
	pushSvc := mockSvc.NewMockPushService(t)

	cfg := &config.Config{}
	cfg.Retention.Window = retentionWindow

	svc, ok := NewMessageService(MessageServiceParams{
		SubscriptionRepo: subRepo,
		MessageRepo:      msgRepo,
		PushService:      pushSvc,
		Config:           cfg,
		Logger:           discardLogger(),
	}).(*messageService)
	require.True(t, ok)
	svc.now = func() time.Time { return fixedNow }

	return svc, subRepo, msgRepo, pushSvc
}

func jsonBody(s string) *usecase.SendInput {
	return &usecase.SendInput{Body: []byte(s), IsJSON: true}
}

func TestMessageService_Send_QueuesThenDelivers(t *testing.T) {
	svc, subRepo, msgRepo, pushSvc := newTestMessageService(t)
	ctx := context.Background()
	sub := &entity.Subscription{ID: "u1", Endpoint: "https://push.example/abc"}

	subRepo.EXPECT().FindSubscriptionByID(ctx, "u1").Return(sub, nil)

	var appended *entity.QueuedMessage
	appendCall := msgRepo.EXPECT().
		AppendMessage(ctx, mock.AnythingOfType("*entity.QueuedMessage")).
		Run(func(_ context.Context, msg *entity.QueuedMessage) { appended = msg }).
		Return(nil)
	pushSvc.EXPECT().
		Deliver(ctx, sub, entity.Payload{"text": "hello", "url": "https://example.com"}).
		Return(nil).
		NotBefore(appendCall.Call)

	err := svc.Send(ctx, "u1", jsonBody(`{"text":"hello","url":"https://example.com"}`))
	require.NoError(t, err)

	require.NotNil(t, appended)
	assert.Equal(t, "u1", appended.SubscriptionID)
	assert.Equal(t, fixedNow, appended.CreatedAt)
	assert.Equal(t, "hello", appended.Payload.Text())
}

func TestMessageService_Send_PlainTextIsWrapped(t *testing.T) {
	svc, subRepo, msgRepo, pushSvc := newTestMessageService(t)
	ctx := context.Background()
	sub := &entity.Subscription{ID: "u1"}

	subRepo.EXPECT().FindSubscriptionByID(ctx, "u1").Return(sub, nil)
	msgRepo.EXPECT().AppendMessage(ctx, mock.AnythingOfType("*entity.QueuedMessage")).Return(nil)
	pushSvc.EXPECT().Deliver(ctx, sub, entity.Payload{"text": "build green"}).Return(nil)

	err := svc.Send(ctx, "u1", &usecase.SendInput{Body: []byte("build green")})
	require.NoError(t, err)
}

func TestMessageService_Send_Precedence(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		found   bool
		input   *usecase.SendInput
		wantErr error
	}{
		{name: "missing token beats bad body", token: "", input: jsonBody(`not json`), wantErr: domainerrors.ErrUnauthorized},
		{name: "unknown token beats bad body", token: "ghost", input: jsonBody(`not json`), wantErr: domainerrors.ErrSubscriptionNotFound},
		{name: "invalid json", token: "u1", found: true, input: jsonBody(`{"text":`), wantErr: domainerrors.ErrInvalidPayload},
		{name: "json array", token: "u1", found: true, input: jsonBody(`["text"]`), wantErr: domainerrors.ErrMissingText},
		{name: "missing text", token: "u1", found: true, input: jsonBody(`{"url":"https://example.com"}`), wantErr: domainerrors.ErrMissingText},
		{name: "empty text", token: "u1", found: true, input: jsonBody(`{"text":""}`), wantErr: domainerrors.ErrMissingText},
		{name: "zero text", token: "u1", found: true, input: jsonBody(`{"text":0}`), wantErr: domainerrors.ErrMissingText},
		{name: "empty plain body", token: "u1", found: true, input: &usecase.SendInput{}, wantErr: domainerrors.ErrMissingText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, subRepo, _, _ := newTestMessageService(t)
			ctx := context.Background()

			switch {
			case tt.found:
				subRepo.EXPECT().FindSubscriptionByID(ctx, tt.token).Return(&entity.Subscription{ID: tt.token}, nil)
			case tt.token != "":
				subRepo.EXPECT().FindSubscriptionByID(ctx, tt.token).Return(nil, repository.ErrSubscriptionNotFound)
			}

			// No AppendMessage or Deliver expectation: nothing may be queued or pushed.
			err := svc.Send(ctx, tt.token, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestMessageService_Send_PermanentFailureRemovesSubscription(t *testing.T) {
	svc, subRepo, msgRepo, pushSvc := newTestMessageService(t)
	ctx := context.Background()
	sub := &entity.Subscription{ID: "u1"}

	subRepo.EXPECT().FindSubscriptionByID(ctx, "u1").Return(sub, nil).Once()
	msgRepo.EXPECT().AppendMessage(ctx, mock.Anything).Return(nil)
	pushSvc.EXPECT().Deliver(ctx, sub, mock.Anything).
		Return(&service.DeliveryError{Kind: service.DeliveryPermanent, StatusCode: 410, Err: errors.New("gone")})
	subRepo.EXPECT().DeleteSubscription(mock.Anything, "u1").Return(nil)

	require.NoError(t, svc.Send(ctx, "u1", jsonBody(`{"text":"hi"}`)))

	// The next send with the same token no longer resolves
	subRepo.EXPECT().FindSubscriptionByID(ctx, "u1").Return(nil, repository.ErrSubscriptionNotFound).Once()

	err := svc.Send(ctx, "u1", jsonBody(`{"text":"hi"}`))
	assert.ErrorIs(t, err, domainerrors.ErrSubscriptionNotFound)
}

func TestMessageService_Send_FailedCleanupStillSucceeds(t *testing.T) {
	svc, subRepo, msgRepo, pushSvc := newTestMessageService(t)
	ctx := context.Background()
	sub := &entity.Subscription{ID: "u1"}

	subRepo.EXPECT().FindSubscriptionByID(ctx, "u1").Return(sub, nil)
	msgRepo.EXPECT().AppendMessage(ctx, mock.Anything).Return(nil)
	pushSvc.EXPECT().Deliver(ctx, sub, mock.Anything).
		Return(&service.DeliveryError{Kind: service.DeliveryPermanent, StatusCode: 404, Err: errors.New("not found")})
	subRepo.EXPECT().DeleteSubscription(mock.Anything, "u1").Return(errors.New("connection reset"))

	assert.NoError(t, svc.Send(ctx, "u1", jsonBody(`{"text":"hi"}`)))
}

func TestMessageService_Send_TransientFailureKeepsSubscription(t *testing.T) {
	svc, subRepo, msgRepo, pushSvc := newTestMessageService(t)
	ctx := context.Background()
	sub := &entity.Subscription{ID: "u1"}

	subRepo.EXPECT().FindSubscriptionByID(ctx, "u1").Return(sub, nil)
	msgRepo.EXPECT().AppendMessage(ctx, mock.Anything).Return(nil)
	pushSvc.EXPECT().Deliver(ctx, sub, mock.Anything).
		Return(&service.DeliveryError{Kind: service.DeliveryTransient, StatusCode: 503, Err: errors.New("unavailable")})

	// No DeleteSubscription expectation
	assert.NoError(t, svc.Send(ctx, "u1", jsonBody(`{"text":"hi"}`)))
}

func TestMessageService_Send_AppendErrors(t *testing.T) {
	t.Run("storage failure is not delivered", func(t *testing.T) {
		svc, subRepo, msgRepo, _ := newTestMessageService(t)
		ctx := context.Background()

		subRepo.EXPECT().FindSubscriptionByID(ctx, "u1").Return(&entity.Subscription{ID: "u1"}, nil)
		msgRepo.EXPECT().AppendMessage(ctx, mock.Anything).
			Return(domainerrors.NewDatabaseExecuteError(errors.New("disk full"), "failed to append message"))

		err := svc.Send(ctx, "u1", jsonBody(`{"text":"hi"}`))
		var appErr domainerrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "DATABASE_EXECUTE_FAILED", appErr.ErrorCode())
	})

	t.Run("subscription deleted concurrently", func(t *testing.T) {
		svc, subRepo, msgRepo, _ := newTestMessageService(t)
		ctx := context.Background()

		subRepo.EXPECT().FindSubscriptionByID(ctx, "u1").Return(&entity.Subscription{ID: "u1"}, nil)
		msgRepo.EXPECT().AppendMessage(ctx, mock.Anything).Return(repository.ErrSubscriptionNotFound)

		err := svc.Send(ctx, "u1", jsonBody(`{"text":"hi"}`))
		assert.ErrorIs(t, err, domainerrors.ErrSubscriptionNotFound)
	})
}

func TestMessageService_FetchPending(t *testing.T) {
	svc, subRepo, msgRepo, _ := newTestMessageService(t)
	ctx := context.Background()
	queued := []*entity.QueuedMessage{
		{ID: 1, SubscriptionID: "u1", Payload: entity.Payload{"text": "a"}, CreatedAt: fixedNow},
		{ID: 2, SubscriptionID: "u1", Payload: entity.Payload{"text": "b"}, CreatedAt: fixedNow},
	}

	subRepo.EXPECT().FindSubscriptionByID(ctx, "u1").Return(&entity.Subscription{ID: "u1"}, nil)
	msgRepo.EXPECT().DrainMessages(ctx, "u1").Return(queued, nil)

	messages, err := svc.FetchPending(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, queued, messages)
}

func TestMessageService_FetchPending_Auth(t *testing.T) {
	svc, subRepo, _, _ := newTestMessageService(t)
	ctx := context.Background()

	_, err := svc.FetchPending(ctx, "")
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)

	subRepo.EXPECT().FindSubscriptionByID(ctx, "ghost").Return(nil, repository.ErrSubscriptionNotFound)

	_, err = svc.FetchPending(ctx, "ghost")
	assert.ErrorIs(t, err, domainerrors.ErrSubscriptionNotFound)
}

func TestMessageService_FetchPending_LookupFailureIsStorageError(t *testing.T) {
	svc, subRepo, _, _ := newTestMessageService(t)
	ctx := context.Background()

	subRepo.EXPECT().FindSubscriptionByID(ctx, "u1").Return(nil, errors.New("connection refused"))

	_, err := svc.FetchPending(ctx, "u1")
	var appErr domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 500, appErr.HTTPCode())
}

func TestMessageService_PurgeExpired(t *testing.T) {
	svc, _, msgRepo, _ := newTestMessageService(t)
	ctx := context.Background()

	msgRepo.EXPECT().PurgeExpiredMessages(ctx, fixedNow.Add(-retentionWindow)).Return(3, nil)

	purged, err := svc.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), purged)
}
