package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withEventSystem(t *testing.T) {
	t.Helper()
	require.True(t, EventSystemInitialize())
	t.Cleanup(func() { _ = EventSystemShutdown() })
}

func TestEventFireStopsAtFirstHandler(t *testing.T) {
	withEventSystem(t)

	var calls []string
	EventRegister(EVENT_CODE_KEY_PRESSED, func(ctx EventContext) bool {
		calls = append(calls, "first")
		return true
	})
	EventRegister(EVENT_CODE_KEY_PRESSED, func(ctx EventContext) bool {
		calls = append(calls, "second")
		return false
	})

	handled := EventFire(EventContext{Type: EVENT_CODE_KEY_PRESSED, Data: &KeyEvent{KeyCode: KEY_ESCAPE}})
	assert.True(t, handled)
	assert.Equal(t, []string{"first"}, calls)
}

func TestEventUnregister(t *testing.T) {
	withEventSystem(t)

	count := 0
	id := EventRegister(EVENT_CODE_ASSET_CHANGED, func(ctx EventContext) bool {
		count++
		return false
	})
	require.NotZero(t, id)

	EventFire(EventContext{Type: EVENT_CODE_ASSET_CHANGED})
	assert.True(t, EventUnregister(EVENT_CODE_ASSET_CHANGED, id))
	assert.False(t, EventUnregister(EVENT_CODE_ASSET_CHANGED, id))
	EventFire(EventContext{Type: EVENT_CODE_ASSET_CHANGED})

	assert.Equal(t, 1, count)
}

func TestEventSystemNotInitialized(t *testing.T) {
	assert.Zero(t, EventRegister(EVENT_CODE_RESIZED, func(EventContext) bool { return true }))
	assert.False(t, EventFire(EventContext{Type: EVENT_CODE_RESIZED}))
	assert.ErrorIs(t, EventSystemShutdown(), ErrEventNotReady)
}
