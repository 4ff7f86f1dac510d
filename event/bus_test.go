package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingHandler counts invocations and optionally runs a hook per event
type recordingHandler struct {
	name  string
	calls int
	hook  func(ev Event)
}

func (h *recordingHandler) HandleEvent(ev Event) {
	h.calls++
	if h.hook != nil {
		h.hook(ev)
	}
}

func publishTick(b *Bus) {
	b.Publish(Event{Type: EventBeatTick, Timestamp: time.Now()})
}

func TestSubscribeIdempotent(t *testing.T) {
	b := NewBus(nil)
	h := &recordingHandler{name: "h"}

	b.Subscribe(EventBeatTick, h)
	b.Subscribe(EventBeatTick, h)
	require.Equal(t, 1, b.SubscriberCount(EventBeatTick))

	publishTick(b)
	assert.Equal(t, 1, h.calls)
}

func TestUnsubscribeUnknownIsNoop(t *testing.T) {
	b := NewBus(nil)
	h1 := &recordingHandler{name: "h1"}
	h2 := &recordingHandler{name: "h2"}

	b.Subscribe(EventBeatTick, h1)
	b.Unsubscribe(EventBeatTick, h2)
	b.Unsubscribe(EventAttackStarted, h1)

	require.Equal(t, 1, b.SubscriberCount(EventBeatTick))
}

func TestPublishOrderFollowsSubscription(t *testing.T) {
	b := NewBus(nil)
	var order []string
	h1 := &recordingHandler{name: "h1"}
	h1.hook = func(Event) { order = append(order, "h1") }
	h2 := &recordingHandler{name: "h2"}
	h2.hook = func(Event) { order = append(order, "h2") }

	b.Subscribe(EventBeatTick, h1)
	b.Subscribe(EventBeatTick, h2)
	publishTick(b)

	assert.Equal(t, []string{"h1", "h2"}, order)
}

// A handler unsubscribing itself mid-publish still runs for that publish,
// and other handlers are unaffected
func TestUnsubscribeDuringDispatch(t *testing.T) {
	b := NewBus(nil)
	h1 := &recordingHandler{name: "h1"}
	h2 := &recordingHandler{name: "h2"}
	h1.hook = func(Event) { b.Unsubscribe(EventBeatTick, h1) }

	b.Subscribe(EventBeatTick, h1)
	b.Subscribe(EventBeatTick, h2)

	publishTick(b)
	require.Equal(t, 1, h1.calls)
	require.Equal(t, 1, h2.calls)

	publishTick(b)
	assert.Equal(t, 1, h1.calls, "h1 must not run after unsubscribing itself")
	assert.Equal(t, 2, h2.calls)
}

func TestSubscribeDuringDispatchAffectsNextPublishOnly(t *testing.T) {
	b := NewBus(nil)
	late := &recordingHandler{name: "late"}
	h1 := &recordingHandler{name: "h1"}
	h1.hook = func(Event) { b.Subscribe(EventBeatTick, late) }

	b.Subscribe(EventBeatTick, h1)

	publishTick(b)
	assert.Equal(t, 0, late.calls, "handler added mid-dispatch must wait for the next publish")

	publishTick(b)
	assert.Equal(t, 1, late.calls)
}

func TestHandlerPanicIsIsolated(t *testing.T) {
	b := NewBus(nil)
	bad := &recordingHandler{name: "bad"}
	bad.hook = func(Event) { panic("boom") }
	good := &recordingHandler{name: "good"}

	b.Subscribe(EventBeatTick, bad)
	b.Subscribe(EventBeatTick, good)

	require.NotPanics(t, func() { publishTick(b) })
	assert.Equal(t, 1, good.calls)
}

func TestClearAll(t *testing.T) {
	b := NewBus(nil)
	h := &recordingHandler{name: "h"}
	b.Subscribe(EventBeatTick, h)
	b.Subscribe(EventComboReset, h)

	b.ClearAll()
	publishTick(b)

	assert.Equal(t, 0, h.calls)
	assert.Equal(t, 0, b.SubscriberCount(EventComboReset))
}

func TestPublishWithoutSubscribers(t *testing.T) {
	b := NewBus(nil)
	require.NotPanics(t, func() {
		b.Publish(Event{Type: EventAttackResolved, Timestamp: time.Now()})
	})
}
