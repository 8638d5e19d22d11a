package worker

import (
	"sync"

	"github.com/kostasdel/banking-backend/internal/metrics"
)

type task func()

// Pool runs fire-and-forget work (audit writes) off the request path.
// Nothing financial goes through it; postings are synchronous.
type Pool struct {
	wg     sync.WaitGroup
	mu     sync.Mutex
	closed bool
	jobs   chan task
}

func NewPool(n int) *Pool {
	if n <= 0 {
		n = 4
	}
	p := &Pool{jobs: make(chan task, 1024)}
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				job()
				metrics.WorkerQueueDepth.Dec()
			}
		}()
	}
	return p
}

// Submit enqueues f. After Stop it is a silent no-op; the work lost is
// best-effort anyway.
func (p *Pool) Submit(f task) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	metrics.WorkerQueueDepth.Inc()
	p.jobs <- f
}

// Stop drains the queue and waits for the workers to finish.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()
	p.wg.Wait()
}
