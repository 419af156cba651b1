package renderer

import (
	"github.com/spaghettifunk/quad/engine/core"
	"github.com/spaghettifunk/quad/engine/math"
	"github.com/spaghettifunk/quad/engine/renderer/gpu"
)

// DriverInfo describes the implementation behind a context.
type DriverInfo struct {
	Vendor                 string
	Renderer               string
	Version                string
	ShadingLanguageVersion string
}

// Renderer issues the per-frame commands: clear, viewport and indexed draws.
type Renderer struct {
	ctx        *gpu.Context
	clearColor math.Vec4
	width      int32
	height     int32
	info       DriverInfo
}

func New(ctx *gpu.Context) *Renderer {
	d := ctx.Driver()
	r := &Renderer{
		ctx: ctx,
		info: DriverInfo{
			Vendor:                 d.GetString(gpu.VENDOR),
			Renderer:               d.GetString(gpu.RENDERER),
			Version:                d.GetString(gpu.VERSION),
			ShadingLanguageVersion: d.GetString(gpu.SHADING_LANGUAGE_VERSION),
		},
	}
	core.LogInfo("OpenGL vendor: %s", r.info.Vendor)
	core.LogInfo("OpenGL renderer: %s", r.info.Renderer)
	core.LogInfo("OpenGL version: %s (GLSL %s)", r.info.Version, r.info.ShadingLanguageVersion)
	return r
}

func (r *Renderer) Context() *gpu.Context {
	return r.ctx
}

func (r *Renderer) Info() DriverInfo {
	return r.info
}

func (r *Renderer) SetClearColor(c math.Vec4) error {
	d := r.ctx.Driver()
	if err := r.ctx.Call("glClearColor", func() { d.ClearColor(c.X, c.Y, c.Z, c.W) }); err != nil {
		return err
	}
	r.clearColor = c
	return nil
}

func (r *Renderer) ClearColor() math.Vec4 {
	return r.clearColor
}

// Clear clears the colour buffer to the current clear colour.
func (r *Renderer) Clear() error {
	d := r.ctx.Driver()
	return r.ctx.Call("glClear(GL_COLOR_BUFFER_BIT)", func() { d.Clear(gpu.COLOR_BUFFER_BIT) })
}

// Viewport maps normalized device coordinates onto a width x height
// framebuffer.
func (r *Renderer) Viewport(width, height int32) error {
	d := r.ctx.Driver()
	if err := r.ctx.Call("glViewport", func() { d.Viewport(0, 0, width, height) }); err != nil {
		return err
	}
	r.width = width
	r.height = height
	return nil
}

func (r *Renderer) ViewportSize() (int32, int32) {
	return r.width, r.height
}

// OnResize follows framebuffer size changes. A zero size means the window is
// minimized and the viewport is left alone.
func (r *Renderer) OnResize(width, height uint32) error {
	if width == 0 || height == 0 {
		return nil
	}
	core.LogDebug("viewport resized to %dx%d", width, height)
	return r.Viewport(int32(width), int32(height))
}

// Draw binds shader, va and ib and draws ib's indices as triangles. A nil ib
// uses the index buffer attached to va.
func (r *Renderer) Draw(va *gpu.VertexArray, ib *gpu.IndexBuffer, shader *gpu.Shader) error {
	if ib == nil {
		ib = va.IndexBuffer()
	}
	if ib == nil {
		return ErrNoIndexBuffer
	}

	if err := shader.Bind(); err != nil {
		return err
	}
	if err := va.Bind(); err != nil {
		return err
	}
	if err := ib.Bind(); err != nil {
		return err
	}

	d := r.ctx.Driver()
	count := ib.Count()
	return r.ctx.Call("glDrawElements(GL_TRIANGLES)", func() {
		d.DrawElements(gpu.TRIANGLES, count, ib.IndexType(), 0)
	})
}
