package loaders

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spaghettifunk/tessera/engine/renderer/metadata"
)

// BinaryLoader reads a file verbatim.
type BinaryLoader struct {
	Type metadata.ResourceType
}

func (bl *BinaryLoader) Load(path string) (*metadata.Resource, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &metadata.Resource{
		Name:     resourceName(path),
		Type:     bl.Type,
		FullPath: path,
		DataSize: uint64(len(buf)),
		Data:     buf,
	}, nil
}

func (bl *BinaryLoader) Unload(res *metadata.Resource) error {
	res.Data = nil
	res.DataSize = 0
	return nil
}

// resourceName is the file name without directory and extension.
func resourceName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
