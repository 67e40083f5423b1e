package speaker

import (
	"testing"

	"github.com/faiface/beep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/tessera/engine/core"
)

func TestClosedDeviceHasNoVoices(t *testing.T) {
	d := &Device{rate: 44100}
	_, err := d.NewVoice()
	assert.ErrorIs(t, err, core.ErrAllocation)
	assert.Equal(t, uint64(0), d.Context().Generation)
}

func TestVoiceRejectsStaleDevice(t *testing.T) {
	d := &Device{rate: 44100, open: true, generation: 2, mixer: &beep.Mixer{}}
	v, err := d.NewVoice()
	require.NoError(t, err)

	d.generation = 3
	clip := beep.NewBuffer(beep.Format{SampleRate: 44100, NumChannels: 2, Precision: 2})
	assert.ErrorIs(t, v.Play(clip, 1, 1, false), core.ErrInvalidArgument)
	assert.Equal(t, 0, d.mixer.Len())
	assert.NoError(t, v.Close())
}
