// Package speaker plays voices through the default output with beep/speaker.
package speaker

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/speaker"

	"github.com/spaghettifunk/tessera/engine/audio"
	"github.com/spaghettifunk/tessera/engine/core"
)

// resampleQuality is passed to beep.ResampleRatio for pitch and rate conversion.
const resampleQuality = 4

/** @brief The process wide speaker. beep/speaker supports a single output. */
type Device struct {
	mu         sync.Mutex
	rate       beep.SampleRate
	bufferSize int
	mixer      *beep.Mixer
	open       bool
	generation uint64
	events     *core.Subject[core.Event]
}

var _ audio.VoiceDevice = (*Device)(nil)

// Open initialises the speaker at rate with a buffer of bufferMs milliseconds. events may
// be nil; otherwise every (re)open is announced with EVENT_CODE_AUDIO_DEVICE_CHANGED.
func Open(rate int, bufferMs int, events *core.Subject[core.Event]) (*Device, error) {
	d := &Device{
		rate:       beep.SampleRate(rate),
		bufferSize: beep.SampleRate(rate).N(time.Duration(bufferMs) * time.Millisecond),
		events:     events,
	}
	if err := d.Reopen(); err != nil {
		return nil, err
	}
	return d, nil
}

// Reopen closes and initialises the output again, invalidating every voice.
func (d *Device) Reopen() error {
	d.mu.Lock()
	if d.open {
		speaker.Close()
		d.open = false
	}
	if err := speaker.Init(d.rate, d.bufferSize); err != nil {
		d.mu.Unlock()
		core.LogError("failed to open audio device: %s", err)
		return err
	}
	d.mixer = &beep.Mixer{}
	speaker.Play(d.mixer)
	d.open = true
	d.generation++
	gen := d.generation
	d.mu.Unlock()

	core.LogInfo("audio device opened at %d Hz (generation %d)", d.rate, gen)
	if d.events != nil {
		ev := core.Event{Code: core.EVENT_CODE_AUDIO_DEVICE_CHANGED, Sender: d}
		ev.Data.Data.U64[0] = gen
		d.events.NotifyAll(ev)
	}
	return nil
}

// Context returns what ImmediatePlayer.Play needs to target this device.
func (d *Device) Context() audio.PlaybackContext {
	d.mu.Lock()
	defer d.mu.Unlock()
	return audio.PlaybackContext{Device: d, Generation: d.generation}
}

func (d *Device) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.open {
		speaker.Close()
		d.open = false
	}
}

func (d *Device) NewVoice() (audio.Voice, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.open {
		return nil, fmt.Errorf("speaker is closed: %w", core.ErrAllocation)
	}
	return &voice{device: d, generation: d.generation}, nil
}

type voice struct {
	device     *Device
	generation uint64
	ctrl       *beep.Ctrl
}

func (v *voice) Play(clip *beep.Buffer, pitch, gain float64, loop bool) error {
	v.device.mu.Lock()
	defer v.device.mu.Unlock()
	if !v.device.open || v.generation != v.device.generation {
		return fmt.Errorf("voice outlived its device: %w", core.ErrInvalidArgument)
	}

	var s beep.Streamer = clip.Streamer(0, clip.Len())
	if loop {
		s = beep.Loop(-1, clip.Streamer(0, clip.Len()))
	}
	ratio := pitch * float64(clip.Format().SampleRate) / float64(v.device.rate)
	if ratio != 1 {
		s = beep.ResampleRatio(resampleQuality, ratio, s)
	}
	s = &effects.Volume{
		Streamer: s,
		Base:     2,
		Volume:   math.Log2(gain),
		Silent:   gain <= 0,
	}

	speaker.Lock()
	if v.ctrl != nil {
		v.ctrl.Streamer = nil
	}
	v.ctrl = &beep.Ctrl{Streamer: s}
	v.device.mixer.Add(v.ctrl)
	speaker.Unlock()
	return nil
}

func (v *voice) Stop() {
	if v.ctrl == nil {
		return
	}
	speaker.Lock()
	v.ctrl.Streamer = nil
	speaker.Unlock()
	v.ctrl = nil
}

func (v *voice) Close() error {
	v.Stop()
	return nil
}
