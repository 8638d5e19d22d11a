package worker

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoolRunsSubmittedTasks(t *testing.T) {
	p := NewPool(2)
	var ran atomic.Int64
	for i := 0; i < 20; i++ {
		p.Submit(func() { ran.Add(1) })
	}
	p.Stop()
	assert.Equal(t, int64(20), ran.Load())
}

func TestSubmitAfterStopIsNoOp(t *testing.T) {
	p := NewPool(1)
	p.Stop()

	assert.NotPanics(t, func() {
		p.Submit(func() { t.Error("task ran after Stop") })
	})
	assert.NotPanics(t, p.Stop)
}
