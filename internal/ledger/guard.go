package ledger

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/kostasdel/banking-backend/internal/models"
)

// Key names one lockable balance row.
type Key struct {
	AccountID string
	Currency  models.Currency
}

func (k Key) less(o Key) bool {
	if k.AccountID != o.AccountID {
		return k.AccountID < o.AccountID
	}
	return k.Currency < o.Currency
}

// Guard hands out exclusive critical sections per (account, currency) key.
// Distinct keys never block each other. Waiters that cannot get the key
// within the configured timeout get ErrBusy instead of blocking forever.
type Guard struct {
	timeout time.Duration

	mu    sync.Mutex
	locks map[Key]*guardLock
}

type guardLock struct {
	sem  chan struct{} // capacity 1; holding the token is holding the lock
	refs int
}

func NewGuard(timeout time.Duration) *Guard {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Guard{timeout: timeout, locks: make(map[Key]*guardLock)}
}

func (g *Guard) enter(k Key) *guardLock {
	g.mu.Lock()
	defer g.mu.Unlock()
	l, ok := g.locks[k]
	if !ok {
		l = &guardLock{sem: make(chan struct{}, 1)}
		g.locks[k] = l
	}
	l.refs++
	return l
}

func (g *Guard) leave(k Key, l *guardLock) {
	g.mu.Lock()
	defer g.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(g.locks, k)
	}
}

// Acquire takes the key's lock, waiting at most the guard timeout.
// The returned release function must be called exactly once.
func (g *Guard) Acquire(ctx context.Context, accountID string, currency models.Currency) (func(), error) {
	return g.acquireOne(ctx, Key{AccountID: accountID, Currency: currency})
}

func (g *Guard) acquireOne(ctx context.Context, k Key) (func(), error) {
	l := g.enter(k)

	t := time.NewTimer(g.timeout)
	defer t.Stop()

	select {
	case l.sem <- struct{}{}:
		var once sync.Once
		release := func() {
			once.Do(func() {
				<-l.sem
				g.leave(k, l)
			})
		}
		return release, nil
	case <-t.C:
		g.leave(k, l)
		return nil, ErrBusy
	case <-ctx.Done():
		g.leave(k, l)
		return nil, ctx.Err()
	}
}

// AcquireMany takes every key in a fixed global order so that two
// postings touching the same pair of rows can never deadlock.
func (g *Guard) AcquireMany(ctx context.Context, keys ...Key) (func(), error) {
	uniq := make([]Key, 0, len(keys))
	seen := make(map[Key]struct{}, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		uniq = append(uniq, k)
	}
	sort.Slice(uniq, func(i, j int) bool { return uniq[i].less(uniq[j]) })

	releases := make([]func(), 0, len(uniq))
	for _, k := range uniq {
		rel, err := g.acquireOne(ctx, k)
		if err != nil {
			for i := len(releases) - 1; i >= 0; i-- {
				releases[i]()
			}
			return nil, err
		}
		releases = append(releases, rel)
	}
	var once sync.Once
	return func() {
		once.Do(func() {
			for i := len(releases) - 1; i >= 0; i-- {
				releases[i]()
			}
		})
	}, nil
}
