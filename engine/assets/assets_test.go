package assets

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/tessera/engine/core"
	"github.com/spaghettifunk/tessera/engine/renderer/metadata"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newTestDir(t *testing.T) string {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "shaders", "quad.vert"), "void main() {}")
	writeFile(t, filepath.Join(dir, "shaders", "quad.frag"), "out vec4 c; void main() {}")
	writeFile(t, filepath.Join(dir, "shaders", "grow.vert"), "out vec2 pos; void main() {}")
	writeFile(t, filepath.Join(dir, "game.toml"), "[log]\nlevel = \"debug\"\n")
	writeFile(t, filepath.Join(dir, "README"), "not an asset")
	return dir
}

func TestIndexClassifiesFiles(t *testing.T) {
	am, err := NewAssetManager(newTestDir(t), nil)
	require.NoError(t, err)
	defer am.Close()

	info, ok := am.Lookup("shaders/quad.vert")
	require.True(t, ok)
	assert.Equal(t, metadata.ResourceTypeVertexShader, info.Type)
	assert.Len(t, am.Assets(metadata.ResourceTypeVertexShader), 2)
	assert.Len(t, am.Assets(metadata.ResourceTypeConfig), 1)
	_, ok = am.Lookup("README")
	assert.False(t, ok)
}

func TestLoadAsset(t *testing.T) {
	am, err := NewAssetManager(newTestDir(t), nil)
	require.NoError(t, err)

	res, err := am.LoadAsset("game.toml")
	require.NoError(t, err)
	assert.Equal(t, "game", res.Name)
	assert.Equal(t, []byte("[log]\nlevel = \"debug\"\n"), res.Data)
	require.NoError(t, am.UnloadAsset(res))
	assert.Nil(t, res.Data)

	res, err = am.LoadAsset("shaders/quad.frag")
	require.NoError(t, err)
	assert.Equal(t, metadata.ResourceTypeFragmentShader, res.Type)
	assert.Equal(t, "out vec4 c; void main() {}", res.Data)

	_, err = am.LoadAsset("shaders/none.vert")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestLoadProgram(t *testing.T) {
	am, err := NewAssetManager(newTestDir(t), nil)
	require.NoError(t, err)

	src, err := am.LoadProgram("quad")
	require.NoError(t, err)
	assert.Equal(t, "void main() {}", src.Vertex)
	assert.Empty(t, src.Geometry)
	assert.NotEmpty(t, src.Fragment)

	src, err = am.LoadProgram("grow")
	require.NoError(t, err)
	assert.Empty(t, src.Fragment)

	_, err = am.LoadProgram("missing")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestResourceTypeOf(t *testing.T) {
	assert.Equal(t, metadata.ResourceTypeGeometryShader, metadata.ResourceTypeOf("a/b.geom"))
	assert.Equal(t, metadata.ResourceTypeAudio, metadata.ResourceTypeOf("click.wav"))
	assert.Equal(t, metadata.ResourceTypeNone, metadata.ResourceTypeOf("image.png"))
	assert.True(t, metadata.ResourceTypeFragmentShader.IsShader())
	assert.False(t, metadata.ResourceTypeAudio.IsShader())
}

func TestWatchPublishesChanges(t *testing.T) {
	dir := newTestDir(t)
	subject := core.NewSubject[AssetEvent]()
	obs := core.NewObserver(subject, 0)

	am, err := NewAssetManager(dir, subject)
	require.NoError(t, err)
	require.NoError(t, am.Watch())
	defer am.Close()

	waitFor := func(op AssetOp, path string) {
		t.Helper()
		assert.Eventually(t, func() bool {
			for {
				ev, ok := obs.Observe()
				if !ok {
					return false
				}
				if ev.Op == op && ev.Asset.Path == path {
					return true
				}
			}
		}, 5*time.Second, 10*time.Millisecond)
	}

	writeFile(t, filepath.Join(dir, "shaders", "quad.vert"), "void main() { gl_Position = vec4(0); }")
	waitFor(AssetChanged, "shaders/quad.vert")

	writeFile(t, filepath.Join(dir, "shaders", "field.geom"), "void main() {}")
	waitFor(AssetChanged, "shaders/field.geom")
	_, ok := am.Lookup("shaders/field.geom")
	assert.True(t, ok)

	require.NoError(t, os.Remove(filepath.Join(dir, "game.toml")))
	waitFor(AssetRemoved, "game.toml")
	_, ok = am.Lookup("game.toml")
	assert.False(t, ok)

	require.NoError(t, am.Close())
	require.NoError(t, am.Close())
	assert.Error(t, am.Watch())
}
