package engine

import (
	"github.com/spaghettifunk/quad/engine/assets"
	"github.com/spaghettifunk/quad/engine/renderer"
)

// Game is the set of callbacks the engine drives. FnInitialize runs once the
// window, the GL context and the renderer exist.
type Game struct {
	ApplicationConfig *ApplicationConfig
	Renderer          *renderer.Renderer
	AssetManager      *assets.AssetManager
	State             interface{}
	FnInitialize      Initialize
	FnUpdate          Update
	FnRender          Render
	FnOnResize        OnResize
	FnShutdown        Shutdown
}

type Initialize func() error
type Update func(deltaTime float64) error
type Render func(deltaTime float64) error
type OnResize func(width uint32, height uint32) error
type Shutdown func() error
