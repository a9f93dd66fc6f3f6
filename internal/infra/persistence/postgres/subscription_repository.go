// Package postgres contains the PostgreSQL implementation of the relay store using GORM.
package postgres

import (
	"context"

	"pushrelay/internal/domain/entity"
	domainerrors "pushrelay/internal/domain/errors"
	"pushrelay/internal/domain/repository"
	"pushrelay/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// subscriptionRepository implements the repository.SubscriptionRepository interface.
type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository is the constructor for subscriptionRepository.
func NewSubscriptionRepository(db *gorm.DB) repository.SubscriptionRepository {
	return &subscriptionRepository{
		db: db,
	}
}

// CreateSubscription persists a new subscription.
func (repo *subscriptionRepository) CreateSubscription(ctx context.Context, subscription *entity.Subscription) error {
	subscriptionM := fromSubscriptionDomain(subscription)

	if err := repo.db.WithContext(ctx).Create(subscriptionM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return repository.ErrDuplicateSubscription
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create subscription")
	}

	return nil
}

// FindSubscriptionByID retrieves a subscription by its identifier.
func (repo *subscriptionRepository) FindSubscriptionByID(ctx context.Context, id string) (*entity.Subscription, error) {
	var subscriptionM model.SubscriptionModel

	if err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&subscriptionM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrSubscriptionNotFound
		}

		return nil, errors.Wrap(err, "failed to find subscription by ID")
	}

	return toSubscriptionDomain(&subscriptionM), nil
}

// DeleteSubscription removes the subscription and its queue in one transaction.
// The foreign key cascades as well; the explicit delete keeps the behaviour
// independent of how the schema was created.
func (repo *subscriptionRepository) DeleteSubscription(ctx context.Context, id string) error {
	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("subscription_id = ?", id).Delete(&model.QueuedMessageModel{}).Error; err != nil {
			return errors.Wrap(err, "failed to delete queued messages")
		}

		if err := tx.Where("id = ?", id).Delete(&model.SubscriptionModel{}).Error; err != nil {
			return errors.Wrap(err, "failed to delete subscription")
		}

		return nil
	})
	if err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to delete subscription")
	}

	return nil
}

// Mapper functions

func toSubscriptionDomain(data *model.SubscriptionModel) *entity.Subscription {
	if data == nil {
		return nil
	}

	return &entity.Subscription{
		ID:        data.ID,
		Endpoint:  data.Endpoint,
		P256dh:    data.P256dh,
		Auth:      data.Auth,
		CreatedAt: data.CreatedAt,
	}
}

func fromSubscriptionDomain(data *entity.Subscription) *model.SubscriptionModel {
	if data == nil {
		return nil
	}

	return &model.SubscriptionModel{
		ID:        data.ID,
		Endpoint:  data.Endpoint,
		P256dh:    data.P256dh,
		Auth:      data.Auth,
		CreatedAt: data.CreatedAt,
	}
}
