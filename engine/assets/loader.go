package assets

import "github.com/spaghettifunk/quad/engine/assets/loaders"

// Loader reads one kind of asset from disk.
type Loader interface {
	Load(path string) (*loaders.Resource, error)
	Unload(r *loaders.Resource) error
}
