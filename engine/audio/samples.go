package audio

import (
	"encoding/binary"
	"fmt"

	"github.com/faiface/beep"

	"github.com/spaghettifunk/tessera/engine/core"
)

/** @brief One interleaved frame of signed 16-bit stereo PCM. */
type AudioSample struct {
	Left  int16
	Right int16
}

// frameSize is the byte size of one AudioSample in a PCM stream.
const frameSize = 4

// PCMStereo16ToSamples splits little-endian interleaved stereo PCM into frames.
func PCMStereo16ToSamples(pcm []byte) ([]AudioSample, error) {
	if len(pcm)%frameSize != 0 {
		return nil, fmt.Errorf("pcm length %d is not a multiple of %d: %w", len(pcm), frameSize, core.ErrInvalidArgument)
	}
	samples := make([]AudioSample, len(pcm)/frameSize)
	if _, err := binary.Decode(pcm, binary.LittleEndian, samples); err != nil {
		return nil, err
	}
	return samples, nil
}

// SamplesToPCMStereo16 is the inverse of PCMStereo16ToSamples.
func SamplesToPCMStereo16(samples []AudioSample) []byte {
	pcm, err := binary.Append(make([]byte, 0, len(samples)*frameSize), binary.LittleEndian, samples)
	core.Assert(err == nil, "encode samples: %v", err)
	return pcm
}

// Downsample averages every factor consecutive frames into one.
func Downsample(samples []AudioSample, factor int) ([]AudioSample, error) {
	if factor < 1 || len(samples)%factor != 0 {
		return nil, fmt.Errorf("cannot downsample %d frames by %d: %w", len(samples), factor, core.ErrInvalidArgument)
	}
	out := make([]AudioSample, 0, len(samples)/factor)
	for i := 0; i < len(samples); i += factor {
		var left, right int
		for _, s := range samples[i : i+factor] {
			left += int(s.Left)
			right += int(s.Right)
		}
		out = append(out, AudioSample{Left: int16(left / factor), Right: int16(right / factor)})
	}
	return out, nil
}

// Streamer plays samples once as a beep stream.
func Streamer(samples []AudioSample) beep.Streamer {
	pos := 0
	return beep.StreamerFunc(func(buf [][2]float64) (int, bool) {
		if pos >= len(samples) {
			return 0, false
		}
		n := min(len(buf), len(samples)-pos)
		for i := 0; i < n; i++ {
			buf[i][0] = float64(samples[pos+i].Left) / 32768
			buf[i][1] = float64(samples[pos+i].Right) / 32768
		}
		pos += n
		return n, true
	})
}

// NewClip buffers samples at rate as a playable clip.
func NewClip(samples []AudioSample, rate beep.SampleRate) *beep.Buffer {
	clip := beep.NewBuffer(beep.Format{SampleRate: rate, NumChannels: 2, Precision: 2})
	clip.Append(Streamer(samples))
	return clip
}
