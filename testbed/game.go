package testbed

import (
	"fmt"

	"github.com/spaghettifunk/quad/engine"
	"github.com/spaghettifunk/quad/engine/core"
	"github.com/spaghettifunk/quad/engine/math"
	"github.com/spaghettifunk/quad/engine/renderer/gpu"
)

const colorUniform = "u_Color"

type TestGame struct {
	*engine.Game
}

type gameState struct {
	quad         *Quad
	shader       *gpu.Shader
	color        *ColorOscillator
	vertexPath   string
	fragmentPath string
	listener     uint64

	width  uint32
	height uint32
}

func NewTestGame(config *engine.ApplicationConfig) *TestGame {
	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: config,
			State: &gameState{
				color: NewColorOscillator(math.NewVec4(0, 0.9, 0.2, 1.0), 0.01),
			},
		},
	}

	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnRender = tg.Render
	tg.FnOnResize = tg.OnResize
	tg.FnShutdown = tg.Shutdown

	return tg
}

func (g *TestGame) Initialize() error {
	core.LogDebug("TestGame Initialize fn....")

	if g.Renderer == nil || g.AssetManager == nil {
		return fmt.Errorf("the engine is not yet initialized with a renderer and an asset manager")
	}
	state := g.State.(*gameState)
	ctx := g.Renderer.Context()

	quad, err := NewQuad(ctx)
	if err != nil {
		return err
	}
	state.quad = quad

	state.vertexPath = g.AssetManager.Path(g.ApplicationConfig.Shaders.Vertex)
	state.fragmentPath = g.AssetManager.Path(g.ApplicationConfig.Shaders.Fragment)
	// validation checks the program against the bound vertex array
	err = state.quad.WithBound(func() error {
		state.shader, err = gpu.NewShader(ctx, state.vertexPath, state.fragmentPath)
		return err
	})
	if err != nil {
		return err
	}

	state.listener = core.EventRegister(core.EVENT_CODE_ASSET_CHANGED, g.onAssetChanged)
	return nil
}

func (g *TestGame) Update(deltaTime float64) error {
	return nil
}

func (g *TestGame) Render(deltaTime float64) error {
	state := g.State.(*gameState)

	if err := state.shader.Bind(); err != nil {
		return err
	}
	if err := state.shader.SetUniformVec4(colorUniform, state.color.Next()); err != nil {
		return err
	}
	return g.Renderer.Draw(state.quad.VertexArray, state.quad.IndexBuffer, state.shader)
}

func (g *TestGame) OnResize(width uint32, height uint32) error {
	state := g.State.(*gameState)

	state.width = width
	state.height = height
	return nil
}

func (g *TestGame) Shutdown() error {
	state := g.State.(*gameState)

	core.EventUnregister(core.EVENT_CODE_ASSET_CHANGED, state.listener)
	var first error
	if state.shader != nil {
		first = state.shader.Destroy()
	}
	if state.quad != nil {
		if err := state.quad.Destroy(); first == nil {
			first = err
		}
	}
	return first
}

// onAssetChanged rebuilds the shader when one of its stage files is saved.
// A broken edit keeps the previous program running.
func (g *TestGame) onAssetChanged(context core.EventContext) bool {
	ae, ok := context.Data.(*core.AssetEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return false
	}

	state := g.State.(*gameState)
	if ae.Path != state.vertexPath && ae.Path != state.fragmentPath {
		return false
	}
	if err := state.quad.WithBound(state.shader.Reload); err != nil {
		core.LogWarn("shader reload failed: %s", err)
	}
	return true
}
