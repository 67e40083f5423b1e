package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/tessera/engine/assets/loaders"
	"github.com/spaghettifunk/tessera/engine/core"
	"github.com/spaghettifunk/tessera/engine/renderer/metadata"
)

type AssetInfo struct {
	// Path is relative to the assets directory, with forward slashes.
	Path       string
	Type       metadata.ResourceType
	LastLoaded time.Time
}

type AssetOp int

const (
	AssetChanged AssetOp = iota
	AssetRemoved
)

func (op AssetOp) String() string {
	if op == AssetRemoved {
		return "removed"
	}
	return "changed"
}

/** @brief Published when a watched asset is created, written or removed. */
type AssetEvent struct {
	Op    AssetOp
	Asset AssetInfo
}

type AssetManager struct {
	dir     string
	assets  map[string]AssetInfo
	loaders map[metadata.ResourceType]Loader
	shaders *loaders.ShaderLoader

	mutex sync.RWMutex

	subject  *core.Subject[AssetEvent]
	done     chan struct{}
	stopped  sync.WaitGroup
	fsnotify *fsnotify.Watcher
	isClosed bool
}

// NewAssetManager indexes dir. Changes are published on subject once Watch is called.
func NewAssetManager(dir string, subject *core.Subject[AssetEvent]) (*AssetManager, error) {
	if subject == nil {
		subject = core.NewSubject[AssetEvent]()
	}
	shaders := &loaders.ShaderLoader{}
	am := &AssetManager{
		dir:     filepath.Clean(dir),
		assets:  make(map[string]AssetInfo),
		loaders: make(map[metadata.ResourceType]Loader),
		shaders: shaders,
		subject: subject,
		done:    make(chan struct{}),
	}

	// Register loaders
	am.registerLoader(metadata.ResourceTypeVertexShader, shaders)
	am.registerLoader(metadata.ResourceTypeGeometryShader, shaders)
	am.registerLoader(metadata.ResourceTypeFragmentShader, shaders)
	am.registerLoader(metadata.ResourceTypeAudio, &loaders.WavLoader{})
	am.registerLoader(metadata.ResourceTypeConfig, &loaders.BinaryLoader{Type: metadata.ResourceTypeConfig})

	if err := am.index(am.dir); err != nil {
		return nil, err
	}
	return am, nil
}

func (am *AssetManager) Subject() *core.Subject[AssetEvent] {
	return am.subject
}

func (am *AssetManager) Dir() string {
	return am.dir
}

// Watch starts publishing file changes under the assets directory.
func (am *AssetManager) Watch() error {
	if am.isClosed {
		return errors.New("asset manager already closed")
	}
	if am.fsnotify != nil {
		return nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	am.fsnotify = w
	if err := am.watchRecursive(am.dir); err != nil {
		w.Close()
		am.fsnotify = nil
		return err
	}
	am.stopped.Add(1)
	go am.start()
	core.LogInfo("watching %s for asset changes", am.dir)
	return nil
}

// Close stops watching. It is safe to call more than once.
func (am *AssetManager) Close() error {
	if am.isClosed {
		return nil
	}
	am.isClosed = true
	close(am.done)
	am.stopped.Wait()
	return nil
}

// Register loaders for each asset type
func (am *AssetManager) registerLoader(assetType metadata.ResourceType, loader Loader) {
	am.loaders[assetType] = loader
}

// Lookup returns the indexed asset at path, relative to the assets directory.
func (am *AssetManager) Lookup(path string) (AssetInfo, bool) {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	info, ok := am.assets[filepath.ToSlash(path)]
	return info, ok
}

// Assets returns every indexed asset of type t.
func (am *AssetManager) Assets(t metadata.ResourceType) []AssetInfo {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	var out []AssetInfo
	for _, info := range am.assets {
		if info.Type == t {
			out = append(out, info)
		}
	}
	return out
}

// LoadAsset loads an indexed asset with the loader registered for its type.
func (am *AssetManager) LoadAsset(path string) (*metadata.Resource, error) {
	path = filepath.ToSlash(path)
	am.mutex.Lock()
	asset, exists := am.assets[path]
	if exists {
		asset.LastLoaded = time.Now()
		am.assets[path] = asset
	}
	am.mutex.Unlock()
	if !exists {
		return nil, fmt.Errorf("asset not found: %s: %w", path, fs.ErrNotExist)
	}

	loader, loaderExists := am.loaders[asset.Type]
	if !loaderExists {
		return nil, fmt.Errorf("no loader registered for asset type: %s", asset.Type)
	}
	return loader.Load(filepath.Join(am.dir, filepath.FromSlash(path)))
}

func (am *AssetManager) UnloadAsset(res *metadata.Resource) error {
	loader, ok := am.loaders[res.Type]
	if !ok {
		return fmt.Errorf("no loader registered for asset type: %s", res.Type)
	}
	return loader.Unload(res)
}

// LoadProgram reads the stages of the shader program name from the shaders directory.
func (am *AssetManager) LoadProgram(name string) (*loaders.ShaderSources, error) {
	return am.shaders.LoadProgram(filepath.Join(am.dir, "shaders"), name)
}

func (am *AssetManager) start() {
	defer am.stopped.Done()
	for {
		select {
		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			am.handleEvent(e)

		case err, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("asset watcher: %s", err)

		case <-am.done:
			am.fsnotify.Close()
			return
		}
	}
}

func (am *AssetManager) handleEvent(e fsnotify.Event) {
	s, err := os.Stat(e.Name)
	if err == nil && s.IsDir() {
		if e.Has(fsnotify.Create) {
			if err := am.watchRecursive(e.Name); err != nil {
				core.LogWarn("failed to watch %s: %s", e.Name, err)
			}
		}
		return
	}
	if e.Has(fsnotify.Create) || e.Has(fsnotify.Write) {
		if info, ok := am.handleFileEvent(e.Name); ok {
			am.subject.NotifyAll(AssetEvent{Op: AssetChanged, Asset: info})
		}
	}
	// Can't stat a deleted directory, so just try to remove it from the watch list too.
	if e.Has(fsnotify.Remove) || e.Has(fsnotify.Rename) {
		if info, ok := am.removeAsset(e.Name); ok {
			am.subject.NotifyAll(AssetEvent{Op: AssetRemoved, Asset: info})
		}
		_ = am.fsnotify.Remove(e.Name)
	}
}

// index records every known file under path.
func (am *AssetManager) index(path string) error {
	return filepath.WalkDir(path, func(walkPath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			am.handleFileEvent(walkPath)
		}
		return nil
	})
}

// watchRecursive adds all directories under the given one to the watch list and indexes
// the files found on the way.
func (am *AssetManager) watchRecursive(path string) error {
	return filepath.WalkDir(path, func(walkPath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return am.fsnotify.Add(walkPath)
		}
		am.handleFileEvent(walkPath)
		return nil
	})
}

func (am *AssetManager) relative(path string) string {
	rel, err := filepath.Rel(am.dir, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// Handle the creation or modification of a file
func (am *AssetManager) handleFileEvent(path string) (AssetInfo, bool) {
	assetType := metadata.ResourceTypeOf(path)
	if assetType == metadata.ResourceTypeNone {
		return AssetInfo{}, false
	}
	info := AssetInfo{
		Path:       am.relative(path),
		Type:       assetType,
		LastLoaded: time.Now(),
	}

	am.mutex.Lock()
	defer am.mutex.Unlock()
	am.assets[info.Path] = info
	return info, true
}

// Remove the asset from the index if it was deleted
func (am *AssetManager) removeAsset(path string) (AssetInfo, bool) {
	am.mutex.Lock()
	defer am.mutex.Unlock()

	rel := am.relative(path)
	info, ok := am.assets[rel]
	delete(am.assets, rel)
	return info, ok
}
