package notification

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotifier struct {
	mu    sync.Mutex
	sent  []Alert
	err   error
	block chan struct{} // when non-nil, Send waits until closed
}

func (f *fakeNotifier) Send(_ context.Context, alert Alert) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, alert)
	return f.err
}

func (f *fakeNotifier) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func (f *fakeNotifier) first() Alert {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[0]
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestDispatcher_Delivers(t *testing.T) {
	n := &fakeNotifier{}
	d := NewDispatcher(n, 4, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	d.Publish(Alert{Level: AlertInfo, Title: "hello"})

	require.Eventually(t, func() bool { return n.sentCount() == 1 },
		time.Second, 5*time.Millisecond)
	assert.Equal(t, "hello", n.first().Title)
}

func TestDispatcher_AbsorbsFailures(t *testing.T) {
	n := &fakeNotifier{err: errors.New("boom")}
	d := NewDispatcher(n, 4, discardLogger())

	var failures int
	var mu sync.Mutex
	d.OnFailure = func() { mu.Lock(); failures++; mu.Unlock() }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	d.Publish(Alert{Title: "a"})
	d.Publish(Alert{Title: "b"})

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return failures == 2
	}, time.Second, 5*time.Millisecond)
}

func TestDispatcher_PublishNeverBlocks(t *testing.T) {
	n := &fakeNotifier{block: make(chan struct{})}
	d := NewDispatcher(n, 1, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 50; i++ {
			d.Publish(Alert{Title: "flood"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full buffer")
	}
	close(n.block)
}
