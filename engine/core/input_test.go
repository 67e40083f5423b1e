package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInputPublishesTransitions(t *testing.T) {
	subject := NewSubject[Event]()
	obs := NewObserver(subject, 0)
	in := NewInput(subject)

	in.ProcessKey(KEY_SPACE, true)
	in.ProcessKey(KEY_SPACE, true)
	assert.True(t, in.IsKeyDown(KEY_SPACE))
	assert.False(t, in.WasKeyDown(KEY_SPACE))

	in.Update()
	assert.True(t, in.WasKeyDown(KEY_SPACE))
	in.ProcessKey(KEY_SPACE, false)
	in.ProcessKey(KEYS_MAX_KEYS+1, true)

	require.Equal(t, 2, obs.Len())
	ev, _ := obs.Observe()
	assert.Equal(t, EVENT_CODE_KEY_PRESSED, ev.Code)
	assert.Equal(t, uint16(KEY_SPACE), ev.Data.Data.U16[0])
	ev, _ = obs.Observe()
	assert.Equal(t, EVENT_CODE_KEY_RELEASED, ev.Code)
	assert.False(t, in.IsKeyDown(KEY_SPACE))
}
