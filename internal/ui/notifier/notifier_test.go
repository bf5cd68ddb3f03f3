package notifier

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_Subscribe_Unsubscribe(t *testing.T) {
	n := New()

	ch := n.Subscribe("s1")
	require.NotNil(t, ch)
	assert.Equal(t, 1, n.Listeners("s1"))

	n.Unsubscribe("s1", ch)
	assert.Equal(t, 0, n.Listeners("s1"))

	n.mu.RLock()
	assert.Len(t, n.listeners, 0)
	n.mu.RUnlock()
}

func TestNotifier_BroadcastIsPerSession(t *testing.T) {
	n := New()

	mine1 := n.Subscribe("mine")
	mine2 := n.Subscribe("mine")
	other := n.Subscribe("other")
	defer n.Unsubscribe("mine", mine1)
	defer n.Unsubscribe("mine", mine2)
	defer n.Unsubscribe("other", other)

	n.Broadcast("mine")

	for i, ch := range []chan struct{}{mine1, mine2} {
		select {
		case <-ch:
		case <-time.After(100 * time.Millisecond):
			t.Errorf("listener %d did not receive broadcast", i)
		}
	}

	select {
	case <-other:
		t.Error("other session received a broadcast")
	default:
	}
}

func TestNotifier_Broadcast_NonBlocking(t *testing.T) {
	n := New()

	ch := n.Subscribe("s1")
	defer n.Unsubscribe("s1", ch)

	// Fill the channel buffer
	ch <- struct{}{}

	done := make(chan bool)
	go func() {
		n.Broadcast("s1")
		done <- true
	}()

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		t.Error("Broadcast blocked on full channel")
	}
}

func TestNotifier_Concurrent(t *testing.T) {
	n := New()

	var wg sync.WaitGroup
	const numGoroutines = 10

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ch := n.Subscribe("s1")
			n.Broadcast("s1")
			n.Unsubscribe("s1", ch)
		}()
	}

	wg.Wait()

	n.mu.RLock()
	assert.Len(t, n.listeners, 0)
	n.mu.RUnlock()
}
