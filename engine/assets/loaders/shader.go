package loaders

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spaghettifunk/tessera/engine/core"
	"github.com/spaghettifunk/tessera/engine/renderer/metadata"
)

// ShaderLoader reads one GLSL stage; the resource data is the source string.
type ShaderLoader struct{}

func (sl *ShaderLoader) Load(path string) (*metadata.Resource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &metadata.Resource{
		Name:     resourceName(path),
		Type:     metadata.ResourceTypeOf(path),
		FullPath: path,
		DataSize: uint64(len(data)),
		Data:     string(data),
	}, nil
}

func (sl *ShaderLoader) Unload(res *metadata.Resource) error {
	res.Data = ""
	res.DataSize = 0
	return nil
}

/** @brief The stage sources of one program, named <name>.vert/.geom/.frag on disk. */
type ShaderSources struct {
	Name     string
	Vertex   string
	Geometry string
	Fragment string
}

// LoadProgram reads dir/name.vert and dir/name.frag, plus dir/name.geom when present.
// The fragment stage may also be missing for capture-only programs.
func (sl *ShaderLoader) LoadProgram(dir, name string) (*ShaderSources, error) {
	src := &ShaderSources{Name: name}
	stages := []struct {
		ext      string
		dst      *string
		optional bool
	}{
		{".vert", &src.Vertex, false},
		{".geom", &src.Geometry, true},
		{".frag", &src.Fragment, true},
	}
	for _, stage := range stages {
		res, err := sl.Load(filepath.Join(dir, name+stage.ext))
		if err != nil {
			if stage.optional && errors.Is(err, fs.ErrNotExist) {
				continue
			}
			core.LogError("failed to read shader %s%s: %s", name, stage.ext, err)
			return nil, err
		}
		*stage.dst = res.Data.(string)
	}
	return src, nil
}
