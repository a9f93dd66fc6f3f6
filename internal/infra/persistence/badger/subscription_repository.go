package badger

import (
	"context"

	"pushrelay/internal/domain/entity"
	domainerrors "pushrelay/internal/domain/errors"
	"pushrelay/internal/domain/repository"
	"pushrelay/internal/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// subscriptionRepository implements the repository.SubscriptionRepository interface.
type subscriptionRepository struct {
	store *Store
}

// NewSubscriptionRepository is the constructor for subscriptionRepository.
func NewSubscriptionRepository(store *Store) repository.SubscriptionRepository {
	return &subscriptionRepository{
		store: store,
	}
}

// CreateSubscription persists a new subscription.
func (repo *subscriptionRepository) CreateSubscription(ctx context.Context, subscription *entity.Subscription) error {
	data, err := json.Marshal(subscription)
	if err != nil {
		return errors.Wrap(err, "failed to encode subscription")
	}

	key := subscriptionKey(subscription.ID)
	err = repo.store.update(ctx, func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err == nil {
			return repository.ErrDuplicateSubscription
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		return txn.Set(key, data)
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateSubscription) {
			return err
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create subscription")
	}

	return nil
}

// FindSubscriptionByID retrieves a subscription by its identifier.
func (repo *subscriptionRepository) FindSubscriptionByID(_ context.Context, id string) (*entity.Subscription, error) {
	var subscription entity.Subscription

	err := repo.store.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(subscriptionKey(id))
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &subscription)
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, repository.ErrSubscriptionNotFound
		}

		return nil, errors.Wrap(err, "failed to find subscription by ID")
	}

	return &subscription, nil
}

// DeleteSubscription removes the subscription and its queue in one transaction.
// A queue longer than one chunk has its remainder deleted afterwards; appends
// already fail by then because the subscription key is gone.
func (repo *subscriptionRepository) DeleteSubscription(ctx context.Context, id string) error {
	prefix := messagePrefix(id)

	var more bool
	err := repo.store.update(ctx, func(txn *badger.Txn) error {
		if err := txn.Delete(subscriptionKey(id)); err != nil {
			return err
		}

		keys, err := repo.store.scanChunk(txn, prefix, false, nil)
		if err != nil {
			return err
		}
		more = len(keys) == repo.store.chunkSize

		return deleteInTxn(txn, keys)
	})
	if err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to delete subscription")
	}

	if !more {
		return nil
	}

	if err := repo.store.deletePrefix(prefix); err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to delete queued messages")
	}

	return nil
}

func subscriptionKey(id string) []byte {
	return []byte(subscriptionKeyPrefix + id)
}
