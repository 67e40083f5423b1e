package assets

import "github.com/spaghettifunk/tessera/engine/renderer/metadata"

type Loader interface {
	Load(path string) (*metadata.Resource, error)
	Unload(*metadata.Resource) error
}
