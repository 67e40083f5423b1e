package testbed

import (
	"github.com/spaghettifunk/tessera/engine/assets"
	"github.com/spaghettifunk/tessera/engine/renderer/metadata"
)

func assetChanged(path string) assets.AssetEvent {
	return assets.AssetEvent{
		Op:    assets.AssetChanged,
		Asset: assets.AssetInfo{Path: path, Type: metadata.ResourceTypeOf(path)},
	}
}
