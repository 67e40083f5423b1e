package audio

import (
	"fmt"
	"sync"

	"github.com/faiface/beep"

	"github.com/spaghettifunk/tessera/engine/core"
	tmath "github.com/spaghettifunk/tessera/engine/math"
)

const (
	// DefaultVoices is the ring size used when NewImmediatePlayer is given no size.
	DefaultVoices = 16

	MinPitch = 0.25
	MaxPitch = 4.0
	MinGain  = 0.0
	MaxGain  = 1.0
)

/** @brief A single playback channel of an audio device. */
type Voice interface {
	// Play replaces whatever the voice was playing.
	Play(clip *beep.Buffer, pitch, gain float64, loop bool) error
	Stop()
	Close() error
}

/** @brief An opened audio output that hands out voices. */
type VoiceDevice interface {
	NewVoice() (Voice, error)
}

/** @brief The device to play on and how many times it has been (re)opened. */
type PlaybackContext struct {
	Device     VoiceDevice
	Generation uint64
}

type voiceSlot struct {
	voice Voice
	// regenerate is set when the voice could not be created on the current device.
	regenerate bool
}

/** @brief Fire-and-forget clip playback over a fixed ring of voices. The oldest voice is
 * stolen when every slot is in use. */
type ImmediatePlayer struct {
	mu         sync.Mutex
	slots      []voiceSlot
	current    int
	generation uint64
	attached   bool
	load       func(path string) (*beep.Buffer, error)
}

// NewImmediatePlayer creates a ring of voices slots (DefaultVoices when <= 0). Voices are
// created lazily on the first Play.
func NewImmediatePlayer(voices int) *ImmediatePlayer {
	if voices <= 0 {
		voices = DefaultVoices
	}
	return &ImmediatePlayer{
		slots: make([]voiceSlot, voices),
		load:  LoadWav,
	}
}

// SetLoader replaces how Play turns a path into a clip.
func (p *ImmediatePlayer) SetLoader(load func(path string) (*beep.Buffer, error)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.load = load
}

func (p *ImmediatePlayer) Voices() int {
	return len(p.slots)
}

// Current returns the slot the next Play will use.
func (p *ImmediatePlayer) Current() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// PendingRegeneration returns how many slots hold no usable voice.
func (p *ImmediatePlayer) PendingRegeneration() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, s := range p.slots {
		if s.regenerate {
			n++
		}
	}
	return n
}

// Play loads the clip at path and starts it on the next voice of the ring. Pitch and gain
// are clamped to [MinPitch, MaxPitch] and [MinGain, MaxGain]. The slot is consumed even
// when playback fails.
func (p *ImmediatePlayer) Play(ctx PlaybackContext, path string, pitch, gain float64, loop bool) error {
	if ctx.Device == nil {
		return fmt.Errorf("func Play: no device: %w", core.ErrInvalidArgument)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.attached || p.generation != ctx.Generation {
		p.regenerate(ctx)
	}

	slot := &p.slots[p.current]
	p.current = (p.current + 1) % len(p.slots)

	if slot.regenerate {
		if err := p.createVoice(ctx.Device, slot); err != nil {
			return err
		}
	}
	slot.voice.Stop()

	clip, err := p.load(path)
	if err != nil {
		return err
	}

	pitch = tmath.Clamp(pitch, MinPitch, MaxPitch)
	gain = tmath.Clamp(gain, MinGain, MaxGain)
	if err := slot.voice.Play(clip, pitch, gain, loop); err != nil {
		core.LogError("voice failed to play %s: %s", path, err)
		return err
	}
	return nil
}

// Stop silences every voice.
func (p *ImmediatePlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, s := range p.slots {
		if s.voice != nil {
			s.voice.Stop()
		}
	}
}

// Close releases every voice. The player regenerates them on the next Play.
func (p *ImmediatePlayer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var first error
	for i := range p.slots {
		if err := p.releaseVoice(&p.slots[i]); err != nil && first == nil {
			first = err
		}
	}
	p.attached = false
	return first
}

// regenerate replaces every voice with one from the context's device.
func (p *ImmediatePlayer) regenerate(ctx PlaybackContext) {
	core.LogDebug("audio device generation %d, regenerating %d voices", ctx.Generation, len(p.slots))
	for i := range p.slots {
		slot := &p.slots[i]
		if err := p.releaseVoice(slot); err != nil {
			core.LogWarn("failed to close voice %d: %s", i, err)
		}
		_ = p.createVoice(ctx.Device, slot)
	}
	p.generation = ctx.Generation
	p.attached = true
}

func (p *ImmediatePlayer) createVoice(device VoiceDevice, slot *voiceSlot) error {
	v, err := device.NewVoice()
	if err != nil {
		core.LogError("failed to create voice: %s", err)
		slot.voice = nil
		slot.regenerate = true
		return err
	}
	core.LogGen("create voice %p", v)
	slot.voice = v
	slot.regenerate = false
	return nil
}

func (p *ImmediatePlayer) releaseVoice(slot *voiceSlot) error {
	if slot.voice == nil {
		slot.regenerate = false
		return nil
	}
	v := slot.voice
	slot.voice = nil
	slot.regenerate = false
	v.Stop()
	core.LogGen("delete voice %p", v)
	return v.Close()
}
