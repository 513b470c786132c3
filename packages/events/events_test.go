package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKind_String(t *testing.T) {
	names := []string{"readystatechange", "loadstart", "load", "error", "abort", "loadend"}
	for i, name := range names {
		assert.Equal(t, name, Kind(i).String())
		k, err := ParseKind(name)
		require.NoError(t, err)
		assert.Equal(t, Kind(i), k)
	}
	_, err := ParseKind("progress")
	assert.Error(t, err)
}

func TestTarget_DispatchOrder(t *testing.T) {
	var target Target
	var got []string

	target.AddEventListener(Load, func(e Event) { got = append(got, "listener1:"+e.Type()) })
	target.On(Load, func(e Event) { got = append(got, "slot:"+e.Type()) })
	target.AddEventListener(Load, func(e Event) { got = append(got, "listener2:"+e.Type()) })
	target.AddEventListener(Error, func(e Event) { got = append(got, "error") })

	target.Dispatch(Load, Inline)

	assert.Equal(t, []string{"slot:load", "listener1:load", "listener2:load"}, got)
}

func TestTarget_SlotReplacesHandler(t *testing.T) {
	var target Target
	calls := 0
	target.On(Abort, func(Event) { calls += 10 })
	target.On(Abort, func(Event) { calls++ })

	target.Dispatch(Abort, Inline)
	assert.Equal(t, 1, calls)

	target.On(Abort, nil)
	target.Dispatch(Abort, Inline)
	assert.Equal(t, 1, calls)
}

func TestTarget_RemoveEventListener(t *testing.T) {
	var target Target
	var got []int
	id1 := target.AddEventListener(LoadEnd, func(Event) { got = append(got, 1) })
	target.AddEventListener(LoadEnd, func(Event) { got = append(got, 2) })

	target.RemoveEventListener(LoadEnd, id1)
	target.RemoveEventListener(LoadEnd, 999)
	target.Dispatch(LoadEnd, Inline)

	assert.Equal(t, []int{2}, got)
}

func TestTarget_DeferredRun(t *testing.T) {
	var target Target
	var got []string
	target.On(Load, func(Event) { got = append(got, "handler") })

	var queued []func()
	target.Dispatch(Load, func(f func()) { queued = append(queued, f) })
	got = append(got, "after dispatch")
	for _, f := range queued {
		f()
	}

	assert.Equal(t, []string{"after dispatch", "handler"}, got)
}

func TestTarget_InvalidKind(t *testing.T) {
	var target Target
	assert.Equal(t, ListenerID(0), target.AddEventListener(Kind(42), func(Event) {}))
	assert.Nil(t, target.Handlers(Kind(-1)))
}
