package bus

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testObserver struct {
	deliveredCount int
	lastErr        error
}

func (o *testObserver) OnDelivered(_ string, handlers int, err error) {
	o.deliveredCount += handlers
	o.lastErr = err
}

func TestBasicPublishSubscribe(t *testing.T) {
	b := New()
	var got any
	_, err := b.Subscribe("test.event", func(e Event) error {
		got = e.Data()
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, b.Publish(NewEvent("test.event", "tester", 123)))
	assert.Equal(t, 123, got)
}

func TestDeliveryOrderFollowsSubscription(t *testing.T) {
	b := New()
	var order []int
	for i := 0; i < 5; i++ {
		_, err := b.Subscribe("ordered", func(Event) error {
			order = append(order, i)
			return nil
		})
		require.NoError(t, err)
	}
	require.NoError(t, b.Publish(NewEvent("ordered", "t", nil)))
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestUnsubscribe(t *testing.T) {
	b := New()
	calls := 0
	sub, err := b.Subscribe("x", func(Event) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.NotEmpty(t, sub.ID())
	assert.Equal(t, "x", sub.EventType())

	require.NoError(t, b.Publish(NewEvent("x", "t", nil)))
	require.NoError(t, b.Unsubscribe(sub))
	require.NoError(t, sub.Cancel())
	require.NoError(t, b.Unsubscribe(nil))
	require.NoError(t, b.Publish(NewEvent("x", "t", nil)))

	assert.Equal(t, 1, calls)
	assert.False(t, sub.IsActive())
}

func TestCancelDuringDelivery(t *testing.T) {
	b := New()
	var second Subscription
	secondCalls := 0
	_, err := b.Subscribe("x", func(Event) error {
		return second.Cancel()
	})
	require.NoError(t, err)
	second, err = b.Subscribe("x", func(Event) error {
		secondCalls++
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, b.Publish(NewEvent("x", "t", nil)))
	assert.Zero(t, secondCalls)
}

func TestReentrantPublish(t *testing.T) {
	b := New()
	var seen []string
	_, err := b.Subscribe("outer", func(Event) error {
		seen = append(seen, "outer")
		return b.Publish(NewEvent("inner", "t", nil))
	})
	require.NoError(t, err)
	_, err = b.Subscribe("inner", func(Event) error {
		seen = append(seen, "inner")
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, b.Publish(NewEvent("outer", "t", nil)))
	assert.Equal(t, []string{"outer", "inner"}, seen)
}

func TestErrorsAreJoined(t *testing.T) {
	b := New()
	e1 := errors.New("first")
	e2 := errors.New("second")
	_, _ = b.Subscribe("x", func(Event) error { return e1 })
	_, _ = b.Subscribe("x", func(Event) error { return e2 })

	err := b.PublishBatch(NewEvent("x", "t", nil), NewEvent("y", "t", nil))
	assert.ErrorIs(t, err, e1)
	assert.ErrorIs(t, err, e2)
}

func TestNilHandler(t *testing.T) {
	_, err := New().Subscribe("x", nil)
	assert.ErrorIs(t, err, ErrNilHandler)
}

func TestObserverMetrics(t *testing.T) {
	b := New()
	obs := &testObserver{}
	b.AddObserver(obs)
	boom := errors.New("boom")
	_, _ = b.Subscribe("x", func(Event) error { return boom })

	_ = b.Publish(NewEvent("x", "t", nil))
	_ = b.Publish(NewEvent("none", "t", nil))

	m := b.GetMetrics()
	assert.Equal(t, uint64(2), m.Published)
	assert.Equal(t, uint64(1), m.DeliveredHandlers)
	assert.Equal(t, uint64(1), m.Errors)
	assert.Equal(t, 1, obs.deliveredCount)
	assert.Nil(t, obs.lastErr)

	b.RemoveObserver(obs)
	_ = b.Publish(NewEvent("x", "t", nil))
	assert.Equal(t, uint64(2), b.GetMetrics().Published)
}
