package postgres

import (
	"context"
	"sort"
	"time"

	"pushrelay/internal/domain/entity"
	domainerrors "pushrelay/internal/domain/errors"
	"pushrelay/internal/domain/repository"
	"pushrelay/internal/infra/persistence/model"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// messageRepository implements the repository.MessageRepository interface.
type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository is the constructor for messageRepository.
func NewMessageRepository(db *gorm.DB) repository.MessageRepository {
	return &messageRepository{
		db: db,
	}
}

// AppendMessage persists a message; the foreign key rejects unknown subscriptions.
func (repo *messageRepository) AppendMessage(ctx context.Context, message *entity.QueuedMessage) error {
	messageM, err := fromMessageDomain(message)
	if err != nil {
		return err
	}

	if err := repo.db.WithContext(ctx).Create(messageM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return repository.ErrSubscriptionNotFound
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to append message")
	}

	message.ID = messageM.ID

	return nil
}

// DrainMessages deletes and returns the queue with a single DELETE ... RETURNING,
// so concurrent drains see disjoint row sets.
func (repo *messageRepository) DrainMessages(ctx context.Context, subscriptionID string) ([]*entity.QueuedMessage, error) {
	var messageModels []*model.QueuedMessageModel

	if err := repo.db.WithContext(ctx).
		Clauses(clause.Returning{}).
		Where("subscription_id = ?", subscriptionID).
		Delete(&messageModels).Error; err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to drain messages")
	}

	// RETURNING carries no ordering guarantee
	sort.Slice(messageModels, func(i, j int) bool {
		if messageModels[i].CreatedAt.Equal(messageModels[j].CreatedAt) {
			return messageModels[i].ID < messageModels[j].ID
		}

		return messageModels[i].CreatedAt.Before(messageModels[j].CreatedAt)
	})

	messages := make([]*entity.QueuedMessage, 0, len(messageModels))
	for _, messageM := range messageModels {
		message, err := toMessageDomain(messageM)
		if err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}

	return messages, nil
}

// PurgeExpiredMessages deletes every message created before the cutoff.
func (repo *messageRepository) PurgeExpiredMessages(ctx context.Context, before time.Time) (int64, error) {
	result := repo.db.WithContext(ctx).
		Where("created_at < ?", before).
		Delete(&model.QueuedMessageModel{})
	if result.Error != nil {
		return 0, domainerrors.NewDatabaseExecuteError(result.Error, "failed to purge expired messages")
	}

	return result.RowsAffected, nil
}

// Mapper functions

func toMessageDomain(data *model.QueuedMessageModel) (*entity.QueuedMessage, error) {
	var payload entity.Payload
	if err := json.Unmarshal(data.Payload, &payload); err != nil {
		return nil, errors.Wrapf(err, "failed to decode payload of message %d", data.ID)
	}

	return &entity.QueuedMessage{
		ID:             data.ID,
		SubscriptionID: data.SubscriptionID,
		Payload:        payload,
		CreatedAt:      data.CreatedAt,
	}, nil
}

func fromMessageDomain(data *entity.QueuedMessage) (*model.QueuedMessageModel, error) {
	payload, err := json.Marshal(data.Payload)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode payload")
	}

	return &model.QueuedMessageModel{
		ID:             data.ID,
		SubscriptionID: data.SubscriptionID,
		Payload:        datatypes.JSON(payload),
		CreatedAt:      data.CreatedAt,
	}, nil
}
