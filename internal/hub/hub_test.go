package hub

import (
	"sync"
	"testing"
	"time"

	"github.com/appareldesk/storefront/internal/service/models/stockevent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func event(productID int64, newStock int) stockevent.Event {
	return stockevent.New(productID, newStock, int64(newStock)+1, time.Now())
}

func TestPublishReachesEverySubscriber(t *testing.T) {
	h := MustNewHub()
	first := h.Register()
	second := h.Register()
	require.Equal(t, 2, h.Len())

	h.Publish(event(7, 3))

	for _, sub := range []*Subscriber{first, second} {
		select {
		case ev := <-sub.Events():
			assert.Equal(t, stockevent.TypeStockUpdate, ev.Type)
			assert.EqualValues(t, 7, ev.ProductID)
			assert.Equal(t, 3, ev.NewStock)
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive the event")
		}
	}
}

func TestSubscriberReceivesEventsInOrder(t *testing.T) {
	const n = 100

	h := MustNewHub(WithBufferSize(n))
	sub := h.Register()

	for i := 0; i < n; i++ {
		h.Publish(event(1, i))
	}

	for i := 0; i < n; i++ {
		select {
		case ev := <-sub.Events():
			assert.Equal(t, i, ev.NewStock)
		case <-time.After(time.Second):
			t.Fatalf("missing event %d", i)
		}
	}
}

func TestSlowSubscriberIsDroppedWithoutBlockingOthers(t *testing.T) {
	h := MustNewHub(WithBufferSize(1))
	slow := h.Register()
	fast := h.Register()

	// The slow subscriber never drains; its single-slot buffer fills on
	// the first publish and the second publish must drop it.
	h.Publish(event(1, 10))

	select {
	case ev := <-fast.Events():
		assert.Equal(t, 10, ev.NewStock)
	case <-time.After(time.Second):
		t.Fatal("fast subscriber did not receive the first event")
	}

	done := make(chan struct{})
	go func() {
		h.Publish(event(1, 9))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}

	assert.Equal(t, 1, h.Len())

	select {
	case ev := <-fast.Events():
		assert.Equal(t, 9, ev.NewStock)
	case <-time.After(time.Second):
		t.Fatal("fast subscriber did not receive the second event")
	}

	// The dropped subscriber's channel is closed after its buffered
	// event is drained.
	ev, ok := <-slow.Events()
	require.True(t, ok)
	assert.Equal(t, 10, ev.NewStock)
	_, ok = <-slow.Events()
	assert.False(t, ok)
}

func TestUnregisterIsIdempotent(t *testing.T) {
	h := MustNewHub()
	sub := h.Register()

	h.Unregister(sub)
	h.Unregister(sub)

	assert.Equal(t, 0, h.Len())
	_, ok := <-sub.Events()
	assert.False(t, ok)

	// Publishing after unregister must not panic or deliver.
	h.Publish(event(1, 1))
}

func TestConcurrentRegisterPublishUnregister(t *testing.T) {
	h := MustNewHub()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			sub := h.Register()
			for range sub.Events() {
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				h.Publish(event(int64(j), j))
			}
		}()
	}

	time.Sleep(50 * time.Millisecond)
	h.Close()
	wg.Wait()

	assert.Equal(t, 0, h.Len())
}

func TestPublishRacingUnregisterNeverPanics(t *testing.T) {
	h := MustNewHub(WithBufferSize(1))

	// Tight buffers force the drop path inside Publish while observers
	// disconnect concurrently, which is exactly what happens when ws
	// clients go away mid-broadcast.
	for i := 0; i < 50; i++ {
		subs := make([]*Subscriber, 8)
		for j := range subs {
			subs[j] = h.Register()
		}

		var wg sync.WaitGroup
		for j := 0; j < 4; j++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for k := 0; k < 20; k++ {
					h.Publish(event(1, k))
				}
			}()
		}
		for _, sub := range subs {
			sub := sub
			wg.Add(1)
			go func() {
				defer wg.Done()
				h.Unregister(sub)
			}()
		}
		wg.Wait()
	}

	assert.Equal(t, 0, h.Len())
}

func TestObserverDiscardsStaleEventsByVersion(t *testing.T) {
	h := MustNewHub()
	sub := h.Register()

	// Two commits for the same product can reach the hub out of commit
	// order; the version stamp lets an observer reconcile.
	later := stockevent.New(1, 2, 3, time.Now())
	earlier := stockevent.New(1, 5, 2, time.Now())
	h.Publish(later)
	h.Publish(earlier)

	var latest *stockevent.Event
	for i := 0; i < 2; i++ {
		select {
		case ev := <-sub.Events():
			if latest == nil || ev.Supersedes(*latest) {
				current := ev
				latest = &current
			}
		case <-time.After(time.Second):
			t.Fatal("missing event")
		}
	}

	require.NotNil(t, latest)
	assert.EqualValues(t, 3, latest.Version)
	assert.Equal(t, 2, latest.NewStock)
}

func TestCloseDropsAllSubscribers(t *testing.T) {
	h := MustNewHub()
	first := h.Register()
	second := h.Register()

	h.Close()

	assert.Equal(t, 0, h.Len())
	_, ok := <-first.Events()
	assert.False(t, ok)
	_, ok = <-second.Events()
	assert.False(t, ok)

	// Unregister after Close stays safe.
	h.Unregister(first)
}
