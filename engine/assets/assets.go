package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/quad/engine/assets/loaders"
	"github.com/spaghettifunk/quad/engine/containers"
	"github.com/spaghettifunk/quad/engine/core"
)

// Changes not yet collected by the main loop. Beyond this further changes
// are dropped until Changed is called.
const maxPendingChanges = 64

var ErrManagerClosed = errors.New("asset manager already closed")

type AssetInfo struct {
	Path       string
	Type       loaders.ResourceType
	LastLoaded time.Time
}

// AssetManager indexes the files under an asset directory, loads them with
// the loader registered for their type and watches the directory for edits.
// The watcher runs on its own goroutine; the paths it sees are handed to the
// main loop through Changed.
type AssetManager struct {
	root    string
	assets  map[string]AssetInfo
	loaders map[loaders.ResourceType]Loader

	mutex   sync.RWMutex
	changed *containers.RingQueue[string]
	pending map[string]struct{}

	done     chan struct{}
	stopped  chan struct{}
	fsnotify *fsnotify.Watcher
	watching bool
	isClosed bool
}

func NewAssetManager() (*AssetManager, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &AssetManager{
		assets:   make(map[string]AssetInfo),
		loaders:  make(map[loaders.ResourceType]Loader),
		changed:  containers.NewRingQueue[string](maxPendingChanges),
		pending:  make(map[string]struct{}),
		fsnotify: fsWatch,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}, nil
}

// Initialize indexes assetsDir. With watch set the directory tree is also
// watched for changes.
func (am *AssetManager) Initialize(assetsDir string, watch bool) error {
	root, err := filepath.Abs(assetsDir)
	if err != nil {
		return err
	}
	am.root = root

	// Register loaders
	am.registerLoader(loaders.ResourceTypeShader, &loaders.ShaderLoader{})
	am.registerLoader(loaders.ResourceTypeConfig, &loaders.ConfigLoader{})

	if !watch {
		return am.walk(root, false)
	}

	am.watching = true
	go am.start()
	if err := am.walk(root, true); err != nil {
		return err
	}
	core.LogDebug("watching %s for asset changes", root)
	return nil
}

func (am *AssetManager) registerLoader(assetType loaders.ResourceType, loader Loader) {
	am.loaders[assetType] = loader
}

// Path resolves a path relative to the asset directory.
func (am *AssetManager) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(am.root, name)
}

// LoadAsset reads an indexed asset with the loader for its type. name is
// relative to the asset directory, or absolute.
func (am *AssetManager) LoadAsset(name string) (*loaders.Resource, error) {
	path := am.Path(name)

	am.mutex.RLock()
	asset, exists := am.assets[path]
	am.mutex.RUnlock()
	if !exists {
		return nil, fmt.Errorf("asset not found: %s", path)
	}

	loader, loaderExists := am.loaders[asset.Type]
	if !loaderExists {
		return nil, fmt.Errorf("no loader registered for asset type: %d", asset.Type)
	}
	r, err := loader.Load(path)
	if err != nil {
		return nil, err
	}

	am.mutex.Lock()
	asset.LastLoaded = r.LoadedAt
	am.assets[path] = asset
	am.mutex.Unlock()
	return r, nil
}

func (am *AssetManager) UnloadAsset(r *loaders.Resource) error {
	loader, ok := am.loaders[r.Type]
	if !ok {
		return fmt.Errorf("no loader registered for asset type: %d", r.Type)
	}
	return loader.Unload(r)
}

// Assets lists the indexed assets ordered by path.
func (am *AssetManager) Assets() []AssetInfo {
	am.mutex.RLock()
	defer am.mutex.RUnlock()

	out := make([]AssetInfo, 0, len(am.assets))
	for _, a := range am.assets {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Changed returns the paths of assets written since the last call, oldest
// first, each at most once. Called from the main loop.
func (am *AssetManager) Changed() []string {
	am.mutex.Lock()
	defer am.mutex.Unlock()

	var paths []string
	for !am.changed.IsEmpty() {
		p, _ := am.changed.Dequeue()
		delete(am.pending, p)
		paths = append(paths, p)
	}
	return paths
}

// Shutdown stops the watcher and waits for its goroutine to exit.
func (am *AssetManager) Shutdown() error {
	am.mutex.Lock()
	if am.isClosed {
		am.mutex.Unlock()
		return ErrManagerClosed
	}
	am.isClosed = true
	am.mutex.Unlock()

	close(am.done)
	if am.watching {
		<-am.stopped
	}
	return am.fsnotify.Close()
}

func (am *AssetManager) start() {
	defer close(am.stopped)
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
			core.LogError(err.Error())

		case <-am.done:
			return
		}
	}
}

func (am *AssetManager) handleEvent(e fsnotify.Event) {
	if e.Has(fsnotify.Create) {
		if s, err := os.Stat(e.Name); err == nil && s.IsDir() {
			if err := am.walk(e.Name, true); err != nil {
				core.LogWarn("watching %s: %s", e.Name, err)
			}
			return
		}
	}
	// Handle create or modify events
	if e.Has(fsnotify.Create) || e.Has(fsnotify.Write) {
		if am.indexFile(e.Name) {
			am.queueChange(e.Name)
		}
	}
	// a removed directory is dropped from the watch list by fsnotify itself
	if e.Has(fsnotify.Remove) || e.Has(fsnotify.Rename) {
		am.removeAsset(e.Name)
	}
}

// walk indexes every asset under path and, if watch is set, adds each
// directory to the watch list.
func (am *AssetManager) walk(path string, watch bool) error {
	return filepath.WalkDir(path, func(walkPath string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if watch {
				return am.fsnotify.Add(walkPath)
			}
			return nil
		}
		am.indexFile(walkPath)
		return nil
	})
}

// indexFile records a file with a known asset type. It reports whether the
// file was one.
func (am *AssetManager) indexFile(path string) bool {
	assetType := determineAssetType(path)
	if assetType == loaders.ResourceTypeNone {
		return false
	}

	am.mutex.Lock()
	defer am.mutex.Unlock()
	if _, ok := am.assets[path]; !ok {
		am.assets[path] = AssetInfo{
			Path: path,
			Type: assetType,
		}
	}
	return true
}

func (am *AssetManager) queueChange(path string) {
	am.mutex.Lock()
	defer am.mutex.Unlock()

	// editors often write a file several times per save
	if _, ok := am.pending[path]; ok {
		return
	}
	if err := am.changed.Enqueue(path); err != nil {
		core.LogWarn("dropping change to %s: %s", path, err)
		return
	}
	am.pending[path] = struct{}{}
}

// Remove the asset from the index if it was deleted
func (am *AssetManager) removeAsset(path string) {
	am.mutex.Lock()
	defer am.mutex.Unlock()

	delete(am.assets, path)
}

func determineAssetType(path string) loaders.ResourceType {
	if loaders.IsShaderFile(path) {
		return loaders.ResourceTypeShader
	}
	switch filepath.Ext(path) {
	case ".toml":
		return loaders.ResourceTypeConfig
	default:
		return loaders.ResourceTypeNone
	}
}
