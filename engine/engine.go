package engine

import (
	"fmt"
	"sync/atomic"

	"github.com/spaghettifunk/quad/engine/assets"
	"github.com/spaghettifunk/quad/engine/core"
	"github.com/spaghettifunk/quad/engine/platform"
	"github.com/spaghettifunk/quad/engine/renderer"
	"github.com/spaghettifunk/quad/engine/renderer/gpu"
	"github.com/spaghettifunk/quad/engine/renderer/opengl"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

// window is the part of the platform layer the main loop drives.
type window interface {
	Startup(cfg platform.WindowConfig) error
	Shutdown() error
	PumpMessages() bool
	WaitMessages() bool
	SwapBuffers()
	FramebufferSize() (uint32, uint32)
}

var _ window = (*platform.Platform)(nil)

type registration struct {
	code core.EventCode
	id   uint64
}

// driverFactory loads the GL entry points once a context is current.
type driverFactory func() (gpu.Driver, error)

func openglDriver() (gpu.Driver, error) {
	d, err := opengl.NewDriver()
	if err != nil {
		return nil, err
	}
	return d, nil
}

type Engine struct {
	currentStage Stage
	gameInstance *Game
	isRunning    atomic.Bool
	isSuspended  bool
	platform     window
	newDriver    driverFactory
	assetManager *assets.AssetManager
	renderer     *renderer.Renderer
	width        uint32
	height       uint32
	clock        *core.Clock
	metrics      *core.Metrics
	lastTime     float64
	lastReport   float64
	listeners    []registration
}

func New(g *Game) (*Engine, error) {
	if g.ApplicationConfig == nil {
		g.ApplicationConfig = DefaultConfig()
	}
	if err := g.ApplicationConfig.Validate(); err != nil {
		return nil, err
	}

	am, err := assets.NewAssetManager()
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	return &Engine{
		currentStage: EngineStageUninitialized,
		gameInstance: g,
		clock:        core.NewClock(),
		metrics:      core.NewMetrics(),
		platform:     platform.New(),
		newDriver:    openglDriver,
		assetManager: am,
		width:        uint32(g.ApplicationConfig.Window.Width),
		height:       uint32(g.ApplicationConfig.Window.Height),
	}, nil
}

func (e *Engine) Stage() Stage {
	return e.currentStage
}

// Initialize opens the window, creates the GL context and renderer, indexes
// the assets and hands everything to the game.
func (e *Engine) Initialize() error {
	if e.currentStage != EngineStageUninitialized {
		return core.ErrEngineNotReady
	}
	e.currentStage = EngineStageInitializing
	config := e.gameInstance.ApplicationConfig

	if err := core.SetLogLevel(config.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}

	// initialize events
	if !core.EventSystemInitialize() {
		return fmt.Errorf("failed to initialize the event system")
	}
	e.register(core.EVENT_CODE_APPLICATION_QUIT, e.onEvent)
	e.register(core.EVENT_CODE_KEY_PRESSED, e.onKey)
	e.register(core.EVENT_CODE_KEY_RELEASED, e.onKey)
	e.register(core.EVENT_CODE_RESIZED, e.onResized)

	if err := e.platform.Startup(platform.WindowConfig{
		Name:    config.Window.Name,
		X:       config.Window.X,
		Y:       config.Window.Y,
		Width:   config.Window.Width,
		Height:  config.Window.Height,
		VSync:   config.Window.VSync,
		GLMajor: config.Render.GLMajor,
		GLMinor: config.Render.GLMinor,
	}); err != nil {
		return err
	}

	driver, err := e.newDriver()
	if err != nil {
		return err
	}
	if err := e.initializeRenderer(driver); err != nil {
		return err
	}

	if err := e.assetManager.Initialize(config.AssetsDir, config.Shaders.Watch); err != nil {
		return err
	}
	e.gameInstance.AssetManager = e.assetManager

	if err := e.gameInstance.FnInitialize(); err != nil {
		return err
	}
	if err := e.gameInstance.FnOnResize(e.width, e.height); err != nil {
		return err
	}

	e.currentStage = EngineStageInitialized
	return nil
}

func (e *Engine) initializeRenderer(driver gpu.Driver) error {
	config := e.gameInstance.ApplicationConfig
	ctx := gpu.NewContext(driver, gpu.WithDebug(config.Render.Debug))
	e.renderer = renderer.New(ctx)
	if !ctx.Debug() {
		core.LogInfo("OpenGL error checking is disabled")
	}

	if err := e.renderer.SetClearColor(config.ClearColor()); err != nil {
		return err
	}
	e.width, e.height = e.platform.FramebufferSize()
	if err := e.renderer.OnResize(e.width, e.height); err != nil {
		return err
	}
	e.gameInstance.Renderer = e.renderer
	return nil
}

// Run drives the main loop until the window closes or a quit event fires.
func (e *Engine) Run() error {
	if e.currentStage != EngineStageInitialized {
		return core.ErrEngineNotReady
	}
	e.currentStage = EngineStageRunning
	e.isRunning.Store(true)

	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()
	e.lastReport = e.lastTime

	for e.isRunning.Load() {
		if err := e.frame(); err != nil {
			e.isRunning.Store(false)
			return err
		}
		if !e.pump() {
			e.isRunning.Store(false)
		}
	}
	return nil
}

// pump polls window events, or blocks until one arrives while the window is
// minimized so a suspended loop does not spin.
func (e *Engine) pump() bool {
	if e.isSuspended {
		return e.platform.WaitMessages()
	}
	return e.platform.PumpMessages()
}

// frame runs one iteration of the loop: asset changes, update, clear, render
// and present.
func (e *Engine) frame() error {
	e.processAssetChanges()
	if e.isSuspended {
		return nil
	}

	// Update clock and get delta time.
	e.clock.Update()
	currentTime := e.clock.Elapsed()
	delta := currentTime - e.lastTime

	if err := e.gameInstance.FnUpdate(delta); err != nil {
		core.LogError("game update failed, shutting down: %s", err)
		return err
	}
	if err := e.renderer.Clear(); err != nil {
		return err
	}
	// Call the game's render routine.
	if err := e.gameInstance.FnRender(delta); err != nil {
		core.LogError("game render failed, shutting down: %s", err)
		return err
	}
	e.platform.SwapBuffers()

	e.clock.Update()
	e.metrics.Update(e.clock.Elapsed() - currentTime)
	if currentTime-e.lastReport >= 1.0 {
		fps, frameTime := e.metrics.Frame()
		core.LogDebug("FPS: %5.1f (%4.2fms)", fps, frameTime)
		e.lastReport = currentTime
	}

	// Update last time
	e.lastTime = currentTime
	return nil
}

// processAssetChanges runs on the main thread, so listeners may issue GL
// calls.
func (e *Engine) processAssetChanges() {
	for _, path := range e.assetManager.Changed() {
		core.LogDebug("asset changed: %s", path)
		core.EventFire(core.EventContext{
			Type: core.EVENT_CODE_ASSET_CHANGED,
			Data: &core.AssetEvent{Path: path},
		})
	}
}

// Quit stops the main loop after the current frame. Safe to call from any
// goroutine.
func (e *Engine) Quit() {
	e.isRunning.Store(false)
}

func (e *Engine) Shutdown() error {
	e.currentStage = EngineStageShuttingDown

	if fn := e.gameInstance.FnShutdown; fn != nil {
		if err := fn(); err != nil {
			core.LogError("game shutdown failed: %s", err)
		}
	}
	if e.renderer != nil {
		if n := e.renderer.Context().ReportLeaks(); n > 0 {
			core.LogWarn("%d GPU resources still alive at shutdown", n)
		}
	}
	if err := e.assetManager.Shutdown(); err != nil {
		core.LogWarn(err.Error())
	}
	for _, l := range e.listeners {
		core.EventUnregister(l.code, l.id)
	}
	e.listeners = nil
	if err := core.EventSystemShutdown(); err != nil {
		return err
	}
	return e.platform.Shutdown()
}

// GetFramebufferSize returns the width and height (in this order)
// of the application Framebuffer
func (e *Engine) GetFramebufferSize() (uint32, uint32) {
	return e.width, e.height
}

func (e *Engine) register(code core.EventCode, fn core.FnOnEvent) {
	e.listeners = append(e.listeners, registration{code: code, id: core.EventRegister(code, fn)})
}

func (e *Engine) onEvent(context core.EventContext) bool {
	switch context.Type {
	case core.EVENT_CODE_APPLICATION_QUIT:
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.isRunning.Store(false)
		return true
	}
	return false
}

func (e *Engine) onKey(context core.EventContext) bool {
	ke, ok := context.Data.(*core.KeyEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return false
	}

	if context.Type == core.EVENT_CODE_KEY_PRESSED && ke.KeyCode == core.KEY_ESCAPE {
		// NOTE: Technically firing an event to itself, but there may be other listeners.
		core.EventFire(core.EventContext{
			Type: core.EVENT_CODE_APPLICATION_QUIT,
		})
		// Block anything else from processing this.
		return true
	}
	return false
}

func (e *Engine) onResized(context core.EventContext) bool {
	se, ok := context.Data.(*core.SystemEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return false
	}

	width := se.WindowWidth
	height := se.WindowHeight
	if width == e.width && height == e.height {
		return false
	}
	e.width = width
	e.height = height
	core.LogDebug("Window resize: %d, %d", width, height)

	// Handle minimization
	if width == 0 || height == 0 {
		core.LogInfo("Window minimized, suspending application.")
		e.isSuspended = true
		return true
	}
	if e.isSuspended {
		core.LogInfo("Window restored, resuming application.")
		e.isSuspended = false
	}
	if err := e.renderer.OnResize(width, height); err != nil {
		core.LogError(err.Error())
	}
	if err := e.gameInstance.FnOnResize(width, height); err != nil {
		core.LogError(err.Error())
	}
	return false
}
