package throttle

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu   sync.Mutex
	vals []int
}

func (r *recorder) add(v int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.vals = append(r.vals, v)
}

func (r *recorder) get() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.vals...)
}

func TestThrottle_BurstEmitsLastValueOnce(t *testing.T) {
	var rec recorder
	th := New(50*time.Millisecond, rec.add)
	defer th.Stop()

	for i := 1; i <= 10; i++ {
		th.Push(i)
	}
	assert.Empty(t, rec.get(), "nothing is emitted on the leading edge")

	require.Eventually(t, func() bool { return len(rec.get()) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, []int{10}, rec.get())
}

func TestThrottle_SeparateIntervals(t *testing.T) {
	var rec recorder
	th := New(20*time.Millisecond, rec.add)
	defer th.Stop()

	th.Push(1)
	require.Eventually(t, func() bool { return len(rec.get()) == 1 }, time.Second, 2*time.Millisecond)
	th.Push(2)
	th.Push(3)
	require.Eventually(t, func() bool { return len(rec.get()) == 2 }, time.Second, 2*time.Millisecond)
	assert.Equal(t, []int{1, 3}, rec.get())
}

func TestThrottle_AtMostOncePerInterval(t *testing.T) {
	var rec recorder
	interval := 40 * time.Millisecond
	th := New(interval, rec.add)
	defer th.Stop()

	deadline := time.Now().Add(200 * time.Millisecond)
	for i := 0; time.Now().Before(deadline); i++ {
		th.Push(i)
		time.Sleep(2 * time.Millisecond)
	}
	time.Sleep(2 * interval)

	// 200ms of continuous pushes at one emission per 40ms
	assert.LessOrEqual(t, len(rec.get()), 6)
	assert.GreaterOrEqual(t, len(rec.get()), 3)
}

func TestThrottle_StopDropsPending(t *testing.T) {
	var rec recorder
	th := New(20*time.Millisecond, rec.add)
	th.Push(1)
	th.Stop()
	th.Push(2)
	time.Sleep(60 * time.Millisecond)
	assert.Empty(t, rec.get())
}

func TestListen(t *testing.T) {
	var rec recorder
	src := make(chan int)
	release := Listen(context.Background(), src, 30*time.Millisecond, rec.add)

	for _, w := range []int{800, 900, 1000} {
		src <- w
	}
	require.Eventually(t, func() bool { return len(rec.get()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []int{1000}, rec.get())

	release()
	select {
	case src <- 1200:
		t.Fatal("listener still receiving after release")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestListen_SourceClosed(t *testing.T) {
	src := make(chan int)
	release := Listen(context.Background(), src, time.Millisecond, func(int) {})
	close(src)
	release()
}
