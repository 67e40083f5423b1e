package loaders

import (
	"github.com/spaghettifunk/tessera/engine/audio"
	"github.com/spaghettifunk/tessera/engine/renderer/metadata"
)

// WavLoader decodes a clip; the resource data is a *beep.Buffer.
type WavLoader struct{}

func (wl *WavLoader) Load(path string) (*metadata.Resource, error) {
	clip, err := audio.LoadWav(path)
	if err != nil {
		return nil, err
	}
	return &metadata.Resource{
		Name:     resourceName(path),
		Type:     metadata.ResourceTypeAudio,
		FullPath: path,
		DataSize: uint64(clip.Len() * clip.Format().Width()),
		Data:     clip,
	}, nil
}

func (wl *WavLoader) Unload(res *metadata.Resource) error {
	res.Data = nil
	res.DataSize = 0
	return nil
}
