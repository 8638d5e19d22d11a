package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kostasdel/banking-backend/internal/models"
)

func TestGuardSerializesSameKey(t *testing.T) {
	g := NewGuard(time.Second)

	var counter, max int
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := g.Acquire(context.Background(), "acc-1", models.USD)
			if err != nil {
				return
			}
			defer release()
			mu.Lock()
			counter++
			if counter > max {
				max = counter
			}
			mu.Unlock()
			time.Sleep(time.Millisecond)
			mu.Lock()
			counter--
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, max, "two holders of the same key overlapped")
}

func TestGuardDistinctKeysDoNotBlock(t *testing.T) {
	g := NewGuard(50 * time.Millisecond)

	release, err := g.Acquire(context.Background(), "acc-1", models.USD)
	require.NoError(t, err)
	defer release()

	// Same account, different currency.
	r2, err := g.Acquire(context.Background(), "acc-1", models.EUR)
	require.NoError(t, err)
	r2()

	// Different account, same currency.
	r3, err := g.Acquire(context.Background(), "acc-2", models.USD)
	require.NoError(t, err)
	r3()
}

func TestGuardTimeoutReturnsBusy(t *testing.T) {
	g := NewGuard(20 * time.Millisecond)

	release, err := g.Acquire(context.Background(), "acc-1", models.USD)
	require.NoError(t, err)
	defer release()

	_, err = g.Acquire(context.Background(), "acc-1", models.USD)
	assert.ErrorIs(t, err, ErrBusy)
}

func TestGuardContextCancel(t *testing.T) {
	g := NewGuard(time.Minute)

	release, err := g.Acquire(context.Background(), "acc-1", models.USD)
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	_, err = g.Acquire(ctx, "acc-1", models.USD)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGuardReleaseIdempotent(t *testing.T) {
	g := NewGuard(time.Second)

	release, err := g.Acquire(context.Background(), "acc-1", models.USD)
	require.NoError(t, err)
	release()
	release() // second call must not free someone else's hold

	r2, err := g.Acquire(context.Background(), "acc-1", models.USD)
	require.NoError(t, err)
	done := make(chan struct{})
	go func() {
		r3, err := g.Acquire(context.Background(), "acc-1", models.USD)
		require.NoError(t, err)
		r3()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("lock acquired while still held")
	case <-time.After(20 * time.Millisecond):
	}
	r2()
	<-done
}

func TestAcquireManyOppositeOrder(t *testing.T) {
	g := NewGuard(2 * time.Second)
	a := Key{AccountID: "acc-1", Currency: models.USD}
	b := Key{AccountID: "acc-2", Currency: models.USD}

	// Opposite-order pairs deadlock unless the guard imposes a global
	// acquisition order.
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			release, err := g.AcquireMany(context.Background(), a, b)
			require.NoError(t, err)
			release()
		}()
		go func() {
			defer wg.Done()
			release, err := g.AcquireMany(context.Background(), b, a)
			require.NoError(t, err)
			release()
		}()
	}
	wg.Wait()
}

func TestAcquireManyDuplicateKeys(t *testing.T) {
	g := NewGuard(time.Second)
	k := Key{AccountID: "acc-1", Currency: models.USD}

	release, err := g.AcquireMany(context.Background(), k, k)
	require.NoError(t, err)
	release()

	// All keys must be free again.
	r2, err := g.Acquire(context.Background(), "acc-1", models.USD)
	require.NoError(t, err)
	r2()
}

func TestAcquireManyRollsBackOnBusy(t *testing.T) {
	g := NewGuard(20 * time.Millisecond)
	a := Key{AccountID: "acc-1", Currency: models.USD}
	b := Key{AccountID: "acc-2", Currency: models.USD}

	release, err := g.Acquire(context.Background(), b.AccountID, b.Currency)
	require.NoError(t, err)

	_, err = g.AcquireMany(context.Background(), a, b)
	require.ErrorIs(t, err, ErrBusy)

	// The first key must have been released on the way out.
	ra, err := g.Acquire(context.Background(), a.AccountID, a.Currency)
	require.NoError(t, err)
	ra()
	release()
}
