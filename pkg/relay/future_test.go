package relay

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuture_CompletesOnce(t *testing.T) {
	p := newPending(nil)
	f := &Future[string]{p: p}

	assert.True(t, p.complete("first", nil))
	assert.False(t, p.complete("second", nil))

	value, err := f.Get()
	require.NoError(t, err)
	assert.Equal(t, "first", value)
}

func TestFuture_AwaitHonoursContext(t *testing.T) {
	f := &Future[int]{p: newPending(nil)}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := f.Await(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	select {
	case <-f.Done():
		t.Fatal("an expired Await must not complete the future")
	default:
	}
}

func TestFuture_CancelCallsCancelFunc(t *testing.T) {
	var cancelled bool
	f := &Future[int]{p: newPending(func() { cancelled = true })}

	f.Cancel()

	assert.True(t, cancelled)
	_, err := f.Get()
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFuture_OnCompleteRunsOnCompletingGoroutine(t *testing.T) {
	p := newPending(nil)
	f := &Future[int]{p: p}

	var wg sync.WaitGroup
	wg.Add(2)
	var got []int
	var mu sync.Mutex
	record := func(v int, err error) {
		defer wg.Done()
		assert.NoError(t, err)
		mu.Lock()
		got = append(got, v)
		mu.Unlock()
	}

	f.OnComplete(record)
	p.complete(42, nil)
	f.OnComplete(record)

	wg.Wait()
	assert.Equal(t, []int{42, 42}, got)
}

func TestThen(t *testing.T) {
	doubled, err := Then(Resolved(21), func(v int) (int, error) { return v * 2, nil }).Get()
	require.NoError(t, err)
	assert.Equal(t, 42, doubled)

	boom := errors.New("boom")
	_, err = Then(Failed[int](boom), func(v int) (int, error) {
		t.Fatal("continuation must not run for a failed future")
		return 0, nil
	}).Get()
	assert.ErrorIs(t, err, boom)

	_, err = Then(Resolved(1), func(int) (string, error) { return "", boom }).Get()
	assert.ErrorIs(t, err, boom)
}

func TestThen_CancelReachesSource(t *testing.T) {
	var cancelled bool
	source := &Future[int]{p: newPending(func() { cancelled = true })}

	derived := Then(source, func(v int) (int, error) { return v, nil })
	derived.Cancel()

	assert.True(t, cancelled)
}

func TestFuture_NilPointerValue(t *testing.T) {
	value, err := Resolved[*Demo](nil).Get()
	require.NoError(t, err)
	assert.Nil(t, value)
}
