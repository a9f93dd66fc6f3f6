package postgres

import (
	"context"
	"testing"
	"time"

	"pushrelay/internal/domain/entity"
	"pushrelay/internal/domain/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = sqlDB.Close()
	})

	db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Discard,
	})
	require.NoError(t, err)

	return db, mock
}

func TestMessageRepository_DrainSortsReturnedRows(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMessageRepository(db)

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "subscription_id", "payload", "created_at"}).
		AddRow(int64(3), "sub-1", []byte(`{"text":"third"}`), base.Add(time.Second)).
		AddRow(int64(2), "sub-1", []byte(`{"text":"second"}`), base).
		AddRow(int64(1), "sub-1", []byte(`{"text":"first"}`), base)

	mock.ExpectQuery(`DELETE FROM "queued_messages" WHERE subscription_id = \$1 RETURNING`).
		WithArgs("sub-1").
		WillReturnRows(rows)

	messages, err := repo.DrainMessages(context.Background(), "sub-1")
	require.NoError(t, err)
	require.Len(t, messages, 3)

	assert.Equal(t, []int64{1, 2, 3}, []int64{messages[0].ID, messages[1].ID, messages[2].ID})
	assert.Equal(t, "first", messages[0].Payload.Text())
	assert.Equal(t, "third", messages[2].Payload.Text())
	assert.Equal(t, "sub-1", messages[1].SubscriptionID)
}

func TestMessageRepository_DrainEmptyQueue(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMessageRepository(db)

	mock.ExpectQuery(`DELETE FROM "queued_messages" WHERE subscription_id = \$1 RETURNING`).
		WithArgs("sub-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "subscription_id", "payload", "created_at"}))

	messages, err := repo.DrainMessages(context.Background(), "sub-1")
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestMessageRepository_AppendAssignsReturnedID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMessageRepository(db)

	mock.ExpectQuery(`INSERT INTO "queued_messages" .* RETURNING "id"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	message := &entity.QueuedMessage{
		SubscriptionID: "sub-1",
		Payload:        entity.Payload{entity.PayloadText: "hello"},
		CreatedAt:      time.Now().UTC(),
	}
	require.NoError(t, repo.AppendMessage(context.Background(), message))
	assert.Equal(t, int64(42), message.ID)
}

func TestMessageRepository_AppendUnknownSubscription(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMessageRepository(db)

	mock.ExpectQuery(`INSERT INTO "queued_messages"`).
		WillReturnError(&pgconn.PgError{Code: pgForeignKeyViolation, Message: "violates foreign key constraint"})

	message := &entity.QueuedMessage{
		SubscriptionID: "missing",
		Payload:        entity.Payload{entity.PayloadText: "hello"},
		CreatedAt:      time.Now().UTC(),
	}
	err := repo.AppendMessage(context.Background(), message)
	assert.ErrorIs(t, err, repository.ErrSubscriptionNotFound)
}

func TestMessageRepository_AppendOtherErrorIsNotNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMessageRepository(db)

	mock.ExpectQuery(`INSERT INTO "queued_messages"`).
		WillReturnError(&pgconn.PgError{Code: "57014", Message: "canceling statement"})

	message := &entity.QueuedMessage{
		SubscriptionID: "sub-1",
		Payload:        entity.Payload{entity.PayloadText: "hello"},
		CreatedAt:      time.Now().UTC(),
	}
	err := repo.AppendMessage(context.Background(), message)
	require.Error(t, err)
	assert.NotErrorIs(t, err, repository.ErrSubscriptionNotFound)
}

func TestSubscriptionRepository_CreateDuplicate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSubscriptionRepository(db)

	mock.ExpectExec(`INSERT INTO "subscriptions"`).
		WillReturnError(&pgconn.PgError{Code: pgUniqueViolation, Message: "duplicate key value"})

	sub, err := entity.NewSubscription("https://push.example.com/send/abc", "p256dh-key", "auth-secret", time.Now().UTC())
	require.NoError(t, err)

	err = repo.CreateSubscription(context.Background(), sub)
	assert.ErrorIs(t, err, repository.ErrDuplicateSubscription)
}

func TestSubscriptionRepository_FindMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSubscriptionRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "subscriptions" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "endpoint", "p256dh", "auth", "created_at"}))

	sub, err := repo.FindSubscriptionByID(context.Background(), "missing")
	assert.Nil(t, sub)
	assert.ErrorIs(t, err, repository.ErrSubscriptionNotFound)
}
