package audio

import (
	"fmt"
	"io"
	"os"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"

	"github.com/spaghettifunk/tessera/engine/core"
)

// LoadWav decodes the WAV file at path into memory.
func LoadWav(path string) (*beep.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		core.LogError("audio file %s could not be loaded: %s", path, err)
		return nil, err
	}
	defer f.Close()

	clip, err := DecodeWav(f)
	if err != nil {
		core.LogError("audio file %s could not be loaded: %s", path, err)
		return nil, err
	}
	return clip, nil
}

// DecodeWav reads a whole WAV stream into a clip. Only 8 and 16 bit PCM is accepted.
func DecodeWav(r io.Reader) (*beep.Buffer, error) {
	streamer, format, err := wav.Decode(r)
	if err != nil {
		return nil, err
	}
	defer streamer.Close()

	if format.Precision != 1 && format.Precision != 2 {
		return nil, fmt.Errorf("bad bit depth %d: %w", format.Precision*8, core.ErrInvalidArgument)
	}

	clip := beep.NewBuffer(format)
	clip.Append(streamer)
	if err := streamer.Err(); err != nil {
		return nil, err
	}
	core.LogGen("decoded clip %d frames at %d Hz", clip.Len(), format.SampleRate)
	return clip, nil
}

// SaveWav writes clip to path as PCM in the clip's own format.
func SaveWav(path string, clip *beep.Buffer) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := wav.Encode(f, clip.Streamer(0, clip.Len()), clip.Format()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
