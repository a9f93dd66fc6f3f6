package sweeper

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"pushrelay/internal/usecase"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMessageUsecase struct {
	usecase.MessageUsecase

	purges  atomic.Int32
	block   chan struct{}
	started chan struct{}
	err     error
}

func (f *fakeMessageUsecase) PurgeExpired(ctx context.Context) (int64, error) {
	f.purges.Add(1)
	if f.started != nil {
		select {
		case f.started <- struct{}{}:
		default:
		}
	}
	if f.block != nil {
		<-f.block
	}

	return 1, f.err
}


func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func serve(t *testing.T, s *sweeper) chan error {
	t.Helper()

	errCh := make(chan error, 1)
	go func() { errCh <- s.Serve(context.Background()) }()

	return errCh
}

func TestSweeper_SweepsAtStartupAndOnTicks(t *testing.T) {
	uc := &fakeMessageUsecase{}
	s := newSweeper(uc, testLogger(), 10*time.Millisecond, time.Second)

	errCh := serve(t, s)

	assert.Eventually(t, func() bool { return uc.purges.Load() >= 3 }, time.Second, 5*time.Millisecond)

	require.NoError(t, s.stop(context.Background()))
	require.NoError(t, <-errCh)
}

func TestSweeper_StartupSweepRunsBeforeFirstTick(t *testing.T) {
	uc := &fakeMessageUsecase{}
	s := newSweeper(uc, testLogger(), time.Hour, time.Second)

	errCh := serve(t, s)

	assert.Eventually(t, func() bool { return uc.purges.Load() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, s.stop(context.Background()))
	require.NoError(t, <-errCh)
	assert.Equal(t, int32(1), uc.purges.Load())
}

func TestSweeper_StopWaitsForInFlightSweep(t *testing.T) {
	uc := &fakeMessageUsecase{block: make(chan struct{}), started: make(chan struct{}, 1)}
	s := newSweeper(uc, testLogger(), time.Hour, time.Second)

	errCh := serve(t, s)
	<-uc.started

	stopped := make(chan struct{})
	go func() {
		_ = s.stop(context.Background())
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("stop returned while a sweep was running")
	case <-time.After(50 * time.Millisecond):
	}

	close(uc.block)

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("stop did not return after the sweep finished")
	}
	require.NoError(t, <-errCh)
	assert.Equal(t, int32(1), uc.purges.Load(), "no sweep may start after stop")
}

func TestSweeper_StopIsBoundedByContext(t *testing.T) {
	uc := &fakeMessageUsecase{block: make(chan struct{}), started: make(chan struct{}, 1)}
	s := newSweeper(uc, testLogger(), time.Hour, time.Second)

	serve(t, s)
	<-uc.started
	defer close(uc.block)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.NoError(t, s.stop(ctx))
}

func TestSweeper_FailuresAreNotFatal(t *testing.T) {
	uc := &fakeMessageUsecase{err: errors.New("database unavailable")}
	s := newSweeper(uc, testLogger(), 10*time.Millisecond, time.Second)

	errCh := serve(t, s)

	assert.Eventually(t, func() bool { return uc.purges.Load() >= 2 }, time.Second, 5*time.Millisecond)

	require.NoError(t, s.stop(context.Background()))
	require.NoError(t, <-errCh)
}
