// Package opengl implements gpu.Driver on top of the go-gl OpenGL 3.3 core
// bindings. It needs a current context on the calling OS thread.
package opengl

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v3.3-core/gl"

	"github.com/spaghettifunk/quad/engine/renderer/gpu"
)

type Driver struct{}

// NewDriver loads the GL function pointers for the context current on this
// thread.
func NewDriver() (*Driver, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("initializing OpenGL bindings: %w", err)
	}
	return &Driver{}, nil
}

func (d *Driver) GetError() uint32 {
	return gl.GetError()
}

func (d *Driver) GetInteger(pname uint32) int32 {
	var v int32
	gl.GetIntegerv(pname, &v)
	return v
}

func (d *Driver) GetString(name uint32) string {
	s := gl.GetString(name)
	if s == nil {
		return ""
	}
	return gl.GoStr(s)
}

func (d *Driver) GenBuffer() uint32 {
	var id uint32
	gl.GenBuffers(1, &id)
	return id
}

func (d *Driver) DeleteBuffer(id uint32) {
	gl.DeleteBuffers(1, &id)
}

func (d *Driver) BindBuffer(target gpu.BufferTarget, id uint32) {
	gl.BindBuffer(uint32(target), id)
}

func (d *Driver) BufferData(target gpu.BufferTarget, data []byte, usage gpu.BufferUsage) {
	if len(data) == 0 {
		gl.BufferData(uint32(target), 0, nil, uint32(usage))
		return
	}
	gl.BufferData(uint32(target), len(data), gl.Ptr(data), uint32(usage))
}

func (d *Driver) GenVertexArray() uint32 {
	var id uint32
	gl.GenVertexArrays(1, &id)
	return id
}

func (d *Driver) DeleteVertexArray(id uint32) {
	gl.DeleteVertexArrays(1, &id)
}

func (d *Driver) BindVertexArray(id uint32) {
	gl.BindVertexArray(id)
}

func (d *Driver) EnableVertexAttribArray(index uint32) {
	gl.EnableVertexAttribArray(index)
}

func (d *Driver) VertexAttribPointer(index uint32, size int32, xtype uint32, normalized bool, stride int32, offset uintptr) {
	gl.VertexAttribPointer(index, size, xtype, normalized, stride, gl.PtrOffset(int(offset)))
}

func (d *Driver) CreateShader(stage gpu.ShaderStage) uint32 {
	return gl.CreateShader(uint32(stage))
}

func (d *Driver) ShaderSource(id uint32, source string) {
	csources, free := gl.Strs(source + "\x00")
	defer free()
	gl.ShaderSource(id, 1, csources, nil)
}

func (d *Driver) CompileShader(id uint32) {
	gl.CompileShader(id)
}

func (d *Driver) GetShaderiv(id uint32, pname uint32) int32 {
	var v int32
	gl.GetShaderiv(id, pname, &v)
	return v
}

func (d *Driver) GetShaderInfoLog(id uint32) string {
	var length int32
	gl.GetShaderiv(id, gl.INFO_LOG_LENGTH, &length)
	if length == 0 {
		return ""
	}
	log := strings.Repeat("\x00", int(length+1))
	gl.GetShaderInfoLog(id, length, nil, gl.Str(log))
	return strings.TrimRight(log, "\x00")
}

func (d *Driver) DeleteShader(id uint32) {
	gl.DeleteShader(id)
}

func (d *Driver) CreateProgram() uint32 {
	return gl.CreateProgram()
}

func (d *Driver) AttachShader(program, shader uint32) {
	gl.AttachShader(program, shader)
}

func (d *Driver) LinkProgram(program uint32) {
	gl.LinkProgram(program)
}

func (d *Driver) ValidateProgram(program uint32) {
	gl.ValidateProgram(program)
}

func (d *Driver) GetProgramiv(program uint32, pname uint32) int32 {
	var v int32
	gl.GetProgramiv(program, pname, &v)
	return v
}

func (d *Driver) GetProgramInfoLog(program uint32) string {
	var length int32
	gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &length)
	if length == 0 {
		return ""
	}
	log := strings.Repeat("\x00", int(length+1))
	gl.GetProgramInfoLog(program, length, nil, gl.Str(log))
	return strings.TrimRight(log, "\x00")
}

func (d *Driver) DeleteProgram(program uint32) {
	gl.DeleteProgram(program)
}

func (d *Driver) UseProgram(program uint32) {
	gl.UseProgram(program)
}

func (d *Driver) GetUniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

func (d *Driver) Uniform4f(location int32, v0, v1, v2, v3 float32) {
	gl.Uniform4f(location, v0, v1, v2, v3)
}

func (d *Driver) ClearColor(r, g, b, a float32) {
	gl.ClearColor(r, g, b, a)
}

func (d *Driver) Clear(mask uint32) {
	gl.Clear(mask)
}

func (d *Driver) Viewport(x, y, width, height int32) {
	gl.Viewport(x, y, width, height)
}

func (d *Driver) DrawElements(mode uint32, count int32, xtype uint32, offset uintptr) {
	gl.DrawElements(mode, count, xtype, gl.PtrOffset(int(offset)))
}

var _ gpu.Driver = (*Driver)(nil)
