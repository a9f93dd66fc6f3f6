package badger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"pushrelay/internal/domain/entity"
	domainerrors "pushrelay/internal/domain/errors"
	"pushrelay/internal/domain/repository"
	"pushrelay/internal/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// messageRepository implements the repository.MessageRepository interface.
// Messages live under msg:<subscription id>:<zero-padded id>, so a prefix scan
// yields one subscription's queue in append order.
type messageRepository struct {
	store *Store
}

// NewMessageRepository is the constructor for messageRepository.
func NewMessageRepository(store *Store) repository.MessageRepository {
	return &messageRepository{
		store: store,
	}
}

// AppendMessage persists a message. The subscription key is read inside the same
// transaction, so an append racing a delete either lands first or conflicts and
// then sees the subscription gone.
func (repo *messageRepository) AppendMessage(ctx context.Context, message *entity.QueuedMessage) error {
	id, err := repo.store.nextMessageID()
	if err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to append message")
	}

	stored := *message
	stored.ID = id
	data, err := json.Marshal(&stored)
	if err != nil {
		return errors.Wrap(err, "failed to encode message")
	}

	err = repo.store.update(ctx, func(txn *badger.Txn) error {
		if _, err := txn.Get(subscriptionKey(message.SubscriptionID)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return repository.ErrSubscriptionNotFound
			}

			return err
		}

		return txn.Set(messageKey(message.SubscriptionID, id), data)
	})
	if err != nil {
		if errors.Is(err, repository.ErrSubscriptionNotFound) {
			return err
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to append message")
	}

	message.ID = id

	return nil
}

// DrainMessages reads and deletes the queue chunk by chunk. Each chunk is one
// transaction, so a concurrent drain of the same queue conflicts on commit,
// retries and gets only what is left.
func (repo *messageRepository) DrainMessages(ctx context.Context, subscriptionID string) ([]*entity.QueuedMessage, error) {
	var messages []*entity.QueuedMessage

	prefix := messagePrefix(subscriptionID)
	for {
		var chunk []*entity.QueuedMessage
		err := repo.store.update(ctx, func(txn *badger.Txn) error {
			chunk = chunk[:0]

			keys, err := repo.store.scanChunk(txn, prefix, true, func(item *badger.Item) error {
				var message entity.QueuedMessage
				if err := item.Value(func(val []byte) error {
					return json.Unmarshal(val, &message)
				}); err != nil {
					return errors.Wrapf(err, "failed to decode message %s", item.Key())
				}
				chunk = append(chunk, &message)

				return nil
			})
			if err != nil {
				return err
			}

			return deleteInTxn(txn, keys)
		})
		if err != nil {
			return nil, domainerrors.NewDatabaseExecuteError(err, "failed to drain messages")
		}

		messages = append(messages, chunk...)
		if len(chunk) < repo.store.chunkSize {
			break
		}
	}

	sort.SliceStable(messages, func(i, j int) bool {
		if messages[i].CreatedAt.Equal(messages[j].CreatedAt) {
			return messages[i].ID < messages[j].ID
		}

		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})

	return messages, nil
}

// PurgeExpiredMessages scans every queue and deletes messages created before the cutoff.
func (repo *messageRepository) PurgeExpiredMessages(ctx context.Context, before time.Time) (int64, error) {
	var expired [][]byte

	err := repo.store.db.View(func(txn *badger.Txn) error {
		prefix := []byte(messageKeyPrefix)
		it := txn.NewIterator(badger.IteratorOptions{PrefetchValues: true, PrefetchSize: 100, Prefix: prefix})
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			item := it.Item()

			var message entity.QueuedMessage
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &message)
			}); err != nil {
				return errors.Wrapf(err, "failed to decode message %s", item.Key())
			}

			if message.CreatedAt.Before(before) {
				expired = append(expired, item.KeyCopy(nil))
			}
		}

		return nil
	})
	if err != nil {
		return 0, domainerrors.NewDatabaseExecuteError(err, "failed to scan expired messages")
	}

	if err := repo.store.deleteKeys(expired); err != nil {
		return 0, domainerrors.NewDatabaseExecuteError(err, "failed to purge expired messages")
	}

	return int64(len(expired)), nil
}

func messagePrefix(subscriptionID string) []byte {
	return []byte(messageKeyPrefix + subscriptionID + ":")
}

func messageKey(subscriptionID string, id int64) []byte {
	return fmt.Appendf(nil, "%s%s:%020d", messageKeyPrefix, subscriptionID, id)
}

// scanChunk visits at most chunkSize keys under prefix and returns copies of them.
func (s *Store) scanChunk(txn *badger.Txn, prefix []byte, values bool, visit func(item *badger.Item) error) ([][]byte, error) {
	opts := badger.IteratorOptions{Prefix: prefix}
	if values {
		opts.PrefetchValues = true
		opts.PrefetchSize = 100
	}
	it := txn.NewIterator(opts)
	defer it.Close()

	var keys [][]byte
	for it.Seek(prefix); it.ValidForPrefix(prefix) && len(keys) < s.chunkSize; it.Next() {
		item := it.Item()
		if visit != nil {
			if err := visit(item); err != nil {
				return nil, err
			}
		}
		keys = append(keys, item.KeyCopy(nil))
	}

	return keys, nil
}

func deleteInTxn(txn *badger.Txn, keys [][]byte) error {
	for _, key := range keys {
		if err := txn.Delete(key); err != nil {
			return err
		}
	}

	return nil
}

// deletePrefix removes every key under prefix.
func (s *Store) deletePrefix(prefix []byte) error {
	var keys [][]byte

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: prefix})
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}

		return nil
	})
	if err != nil {
		return err
	}

	return s.deleteKeys(keys)
}

// deleteKeys deletes in a write batch, which splits into as many transactions as needed.
// Keys already removed by a concurrent drain are simply deleted again.
func (s *Store) deleteKeys(keys [][]byte) error {
	if len(keys) == 0 {
		return nil
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for _, key := range keys {
		if err := wb.Delete(key); err != nil {
			return err
		}
	}

	return wb.Flush()
}
