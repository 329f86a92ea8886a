package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerrf-dev/probed/internal/decode"
	"github.com/nerrf-dev/probed/internal/wire"
)

func TestPublishDeliversToEverySubscriber(t *testing.T) {
	d := New(8)
	a := d.Subscribe()
	b := d.Subscribe()

	ev := decode.Decoded{Kind: wire.KindWrite}
	d.Publish(ev)

	assert.Equal(t, ev, <-a.Events)
	assert.Equal(t, ev, <-b.Events)
}

func TestSlowSubscriberLagsWithoutBlockingPublish(t *testing.T) {
	d := New(2)
	slow := d.Subscribe()
	fast := d.Subscribe()

	for i := 0; i < 10; i++ {
		d.Publish(decode.Decoded{Kind: wire.KindWrite})
	}

	// fast never drains either, but Publish above must still have
	// returned for every event — the goroutine scheduler gives us that
	// for free since deliver() never blocks.
	drained := 0
loop:
	for {
		select {
		case <-fast.Events:
			drained++
		default:
			break loop
		}
	}
	assert.LessOrEqual(t, drained, 2)

	select {
	case lag := <-slow.Lag:
		assert.Greater(t, lag, uint64(0))
	default:
		t.Fatal("expected a lag notification for the slow subscriber")
	}
}

func TestCancelClosesChannels(t *testing.T) {
	d := New(4)
	sub := d.Subscribe()
	require.Equal(t, 1, d.SubscriberCount())

	sub.Cancel()
	assert.Equal(t, 0, d.SubscriberCount())

	_, open := <-sub.Events
	assert.False(t, open)

	sub.Cancel() // idempotent
}

func TestPublishWithNoSubscribersDoesNotPanic(t *testing.T) {
	d := New(4)
	assert.NotPanics(t, func() {
		d.Publish(decode.Decoded{Kind: wire.KindSignal})
	})
}
