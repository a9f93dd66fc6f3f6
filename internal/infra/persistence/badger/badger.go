// Package badger contains the embedded BadgerDB implementation of the relay store.
package badger

import (
	"context"
	"log/slog"
	"time"

	"pushrelay/config"
	"pushrelay/internal/errors"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/fx"
)

const (
	subscriptionKeyPrefix = "sub:"
	messageKeyPrefix      = "msg:"
	messageSequenceKey    = "seq:msg"

	// Sequence leases are persisted in blocks; a crash skips at most one block of ids.
	messageSequenceBandwidth = 128

	valueLogGCInterval     = 10 * time.Minute
	valueLogGCDiscardRatio = 0.5

	maxConflictRetries = 10

	// Keys read and deleted per transaction; well below badger's per-txn batch limit.
	defaultChunkSize = 10000
)

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// Store owns the Badger handle and the message id sequence.
type Store struct {
	db        *badger.DB
	seq       *badger.Sequence
	chunkSize int
}

// New opens the Badger store and registers its shutdown hook
func New(params Params) (*Store, error) {
	store, err := Open(params.Config.Storage.Badger, params.Logger)
	if err != nil {
		return nil, err
	}

	gcCtx, cancelGC := context.WithCancel(context.Background())

	params.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			if !params.Config.Storage.Badger.InMemory {
				go store.runValueLogGC(gcCtx, params.Logger, valueLogGCInterval)
			}

			return nil
		},
		OnStop: func(_ context.Context) error {
			cancelGC()

			return store.Close()
		},
	})

	return store, nil
}

// Open opens a store outside of fx; tests use it with InMemory set.
func Open(cfg config.BadgerConfig, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(cfg.Dir).
		WithInMemory(cfg.InMemory).
		WithLogger(newBadgerLogger(logger))
	if cfg.InMemory {
		opts = opts.WithDir("").WithValueDir("")
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open Badger store")
	}

	seq, err := db.GetSequence([]byte(messageSequenceKey), messageSequenceBandwidth)
	if err != nil {
		_ = db.Close()

		return nil, errors.Wrap(err, "failed to lease message sequence")
	}

	return &Store{db: db, seq: seq, chunkSize: defaultChunkSize}, nil
}

// Close releases the unused part of the sequence lease and closes the database.
func (s *Store) Close() error {
	releaseErr := s.seq.Release()
	closeErr := s.db.Close()

	return errors.Join(releaseErr, closeErr)
}

// nextMessageID returns ids starting at 1 so zero keeps meaning "unassigned".
func (s *Store) nextMessageID() (int64, error) {
	next, err := s.seq.Next()
	if err != nil {
		return 0, errors.Wrap(err, "failed to allocate message id")
	}

	return int64(next) + 1, nil
}

// update runs fn in a read-write transaction, retrying when a concurrent
// transaction committed a conflicting write first.
func (s *Store) update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	var err error
	for range maxConflictRetries {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		err = s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}

	return err
}

func (s *Store) runValueLogGC(ctx context.Context, logger *slog.Logger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// One call rewrites at most one file; loop until nothing is left to reclaim.
			for {
				err := s.db.RunValueLogGC(valueLogGCDiscardRatio)
				if err == nil {
					continue
				}
				if !errors.Is(err, badger.ErrNoRewrite) && !errors.Is(err, badger.ErrRejected) {
					logger.WarnContext(ctx, "Badger value log GC failed", slog.Any("error", err))
				}

				break
			}
		}
	}
}
