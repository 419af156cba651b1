// Package gputest provides an in-memory gpu.Driver that records what the
// wrappers ask of it.
package gputest

import (
	"regexp"
	"strings"

	"github.com/spaghettifunk/quad/engine/renderer/gpu"
)

// Attrib is one configured vertex attribute slot.
type Attrib struct {
	Enabled    bool
	Size       int32
	Type       uint32
	Normalized bool
	Stride     int32
	Offset     uintptr
	Buffer     uint32
}

// Draw is one recorded DrawElements call with the state it saw.
type Draw struct {
	Mode        uint32
	Count       int32
	Type        uint32
	Offset      uintptr
	VertexArray uint32
	IndexBuffer uint32
	Program     uint32
}

type shaderObject struct {
	stage    gpu.ShaderStage
	source   string
	compiled bool
	log      string
}

type programObject struct {
	attached []uint32
	linked   bool
	valid    bool
	log      string
	uniforms map[string]int32
}

// Driver simulates the binding state, object lifetimes and shader
// compilation of an OpenGL context. Shader sources compile when they start
// with a #version line, contain a main function and have balanced braces.
type Driver struct {
	// FailOn raises the given error code the next time the named method runs.
	FailOn map[string]uint32
	// FailLink makes the next LinkProgram fail.
	FailLink bool
	// FailValidate makes the next ValidateProgram fail.
	FailValidate bool
	// RequireVertexArray fails validation while no vertex array is bound,
	// as core profile drivers on darwin do.
	RequireVertexArray bool

	errors []uint32
	nextID uint32

	Buffers        map[uint32][]byte
	Generated      []uint32
	Deleted        []uint32
	arrayBinding   uint32
	elementBinding map[uint32]uint32

	VertexArrays map[uint32]map[uint32]*Attrib
	vao          uint32

	shaders  map[uint32]*shaderObject
	programs map[uint32]*programObject
	program  uint32

	UniformQueries map[string]int
	UniformValues  map[uint32]map[int32][4]float32

	ClearColors [][4]float32
	Clears      int
	ViewportSet [4]int32
	Draws       []Draw
}

func NewDriver() *Driver {
	return &Driver{
		FailOn:         make(map[string]uint32),
		Buffers:        make(map[uint32][]byte),
		elementBinding: make(map[uint32]uint32),
		VertexArrays:   make(map[uint32]map[uint32]*Attrib),
		shaders:        make(map[uint32]*shaderObject),
		programs:       make(map[uint32]*programObject),
		UniformQueries: make(map[string]int),
		UniformValues:  make(map[uint32]map[int32][4]float32),
	}
}

// Raise queues an error flag as if the last call had produced it.
func (d *Driver) Raise(code uint32) {
	d.errors = append(d.errors, code)
}

func (d *Driver) call(name string) {
	if code, ok := d.FailOn[name]; ok {
		delete(d.FailOn, name)
		d.Raise(code)
	}
}

func (d *Driver) newID() uint32 {
	d.nextID++
	return d.nextID
}

func (d *Driver) GetError() uint32 {
	if len(d.errors) == 0 {
		return gpu.NO_ERROR
	}
	code := d.errors[0]
	d.errors = d.errors[1:]
	return code
}

func (d *Driver) GetInteger(pname uint32) int32 {
	switch pname {
	case gpu.ARRAY_BUFFER_BINDING:
		return int32(d.arrayBinding)
	case gpu.ELEMENT_ARRAY_BUFFER_BINDING:
		return int32(d.elementBinding[d.vao])
	case gpu.VERTEX_ARRAY_BINDING:
		return int32(d.vao)
	case gpu.CURRENT_PROGRAM:
		return int32(d.program)
	}
	d.Raise(gpu.INVALID_ENUM)
	return 0
}

func (d *Driver) GetString(name uint32) string {
	switch name {
	case gpu.VENDOR:
		return "gputest"
	case gpu.RENDERER:
		return "in-memory"
	case gpu.VERSION:
		return "3.3.0"
	case gpu.SHADING_LANGUAGE_VERSION:
		return "3.30"
	}
	return ""
}

func (d *Driver) GenBuffer() uint32 {
	d.call("GenBuffer")
	id := d.newID()
	d.Buffers[id] = nil
	d.Generated = append(d.Generated, id)
	return id
}

func (d *Driver) DeleteBuffer(id uint32) {
	d.call("DeleteBuffer")
	if _, ok := d.Buffers[id]; !ok {
		return
	}
	delete(d.Buffers, id)
	d.Deleted = append(d.Deleted, id)
	if d.arrayBinding == id {
		d.arrayBinding = 0
	}
	if d.elementBinding[d.vao] == id {
		d.elementBinding[d.vao] = 0
	}
}

func (d *Driver) BindBuffer(target gpu.BufferTarget, id uint32) {
	d.call("BindBuffer")
	if _, ok := d.Buffers[id]; id != 0 && !ok {
		d.Raise(gpu.INVALID_OPERATION)
		return
	}
	switch target {
	case gpu.ArrayBuffer:
		d.arrayBinding = id
	case gpu.ElementArrayBuffer:
		d.elementBinding[d.vao] = id
	default:
		d.Raise(gpu.INVALID_ENUM)
	}
}

func (d *Driver) BufferData(target gpu.BufferTarget, data []byte, usage gpu.BufferUsage) {
	d.call("BufferData")
	var id uint32
	switch target {
	case gpu.ArrayBuffer:
		id = d.arrayBinding
	case gpu.ElementArrayBuffer:
		id = d.elementBinding[d.vao]
	}
	if id == 0 {
		d.Raise(gpu.INVALID_OPERATION)
		return
	}
	d.Buffers[id] = append([]byte(nil), data...)
}

func (d *Driver) GenVertexArray() uint32 {
	d.call("GenVertexArray")
	id := d.newID()
	d.VertexArrays[id] = make(map[uint32]*Attrib)
	d.Generated = append(d.Generated, id)
	return id
}

func (d *Driver) DeleteVertexArray(id uint32) {
	d.call("DeleteVertexArray")
	if _, ok := d.VertexArrays[id]; !ok {
		return
	}
	delete(d.VertexArrays, id)
	delete(d.elementBinding, id)
	d.Deleted = append(d.Deleted, id)
	if d.vao == id {
		d.vao = 0
	}
}

func (d *Driver) BindVertexArray(id uint32) {
	d.call("BindVertexArray")
	if _, ok := d.VertexArrays[id]; id != 0 && !ok {
		d.Raise(gpu.INVALID_OPERATION)
		return
	}
	d.vao = id
}

func (d *Driver) attrib(index uint32) *Attrib {
	attribs := d.VertexArrays[d.vao]
	if attribs == nil {
		return nil
	}
	a, ok := attribs[index]
	if !ok {
		a = &Attrib{}
		attribs[index] = a
	}
	return a
}

func (d *Driver) EnableVertexAttribArray(index uint32) {
	d.call("EnableVertexAttribArray")
	a := d.attrib(index)
	if a == nil {
		// core profile has no default vertex array
		d.Raise(gpu.INVALID_OPERATION)
		return
	}
	a.Enabled = true
}

func (d *Driver) VertexAttribPointer(index uint32, size int32, xtype uint32, normalized bool, stride int32, offset uintptr) {
	d.call("VertexAttribPointer")
	a := d.attrib(index)
	if a == nil || d.arrayBinding == 0 {
		d.Raise(gpu.INVALID_OPERATION)
		return
	}
	a.Size = size
	a.Type = xtype
	a.Normalized = normalized
	a.Stride = stride
	a.Offset = offset
	a.Buffer = d.arrayBinding
}

func (d *Driver) CreateShader(stage gpu.ShaderStage) uint32 {
	d.call("CreateShader")
	id := d.newID()
	d.shaders[id] = &shaderObject{stage: stage}
	return id
}

func (d *Driver) ShaderSource(id uint32, source string) {
	d.call("ShaderSource")
	if s, ok := d.shaders[id]; ok {
		s.source = source
	} else {
		d.Raise(gpu.INVALID_VALUE)
	}
}

func (d *Driver) CompileShader(id uint32) {
	d.call("CompileShader")
	s, ok := d.shaders[id]
	if !ok {
		d.Raise(gpu.INVALID_VALUE)
		return
	}
	src := strings.TrimSpace(s.source)
	switch {
	case !strings.HasPrefix(src, "#version"):
		s.log = "0:1(1): error: missing #version directive"
	case !strings.Contains(src, "void main"):
		s.log = "0:1(1): error: no main function"
	case strings.Count(src, "{") != strings.Count(src, "}"):
		s.log = "0:1(1): error: syntax error, unexpected end of file"
	default:
		s.compiled = true
		s.log = ""
		return
	}
	s.compiled = false
}

func (d *Driver) GetShaderiv(id uint32, pname uint32) int32 {
	s, ok := d.shaders[id]
	if !ok {
		d.Raise(gpu.INVALID_VALUE)
		return 0
	}
	switch pname {
	case gpu.COMPILE_STATUS:
		if s.compiled {
			return gpu.TRUE
		}
		return gpu.FALSE
	case gpu.INFO_LOG_LENGTH:
		return int32(len(s.log))
	}
	d.Raise(gpu.INVALID_ENUM)
	return 0
}

func (d *Driver) GetShaderInfoLog(id uint32) string {
	if s, ok := d.shaders[id]; ok {
		return s.log
	}
	return ""
}

func (d *Driver) DeleteShader(id uint32) {
	d.call("DeleteShader")
	delete(d.shaders, id)
}

func (d *Driver) CreateProgram() uint32 {
	d.call("CreateProgram")
	id := d.newID()
	d.programs[id] = &programObject{uniforms: make(map[string]int32)}
	return id
}

func (d *Driver) AttachShader(program, shader uint32) {
	d.call("AttachShader")
	p, ok := d.programs[program]
	if !ok || d.shaders[shader] == nil {
		d.Raise(gpu.INVALID_VALUE)
		return
	}
	p.attached = append(p.attached, shader)
}

var uniformDecl = regexp.MustCompile(`uniform\s+\w+\s+(\w+)\s*;`)

func (d *Driver) LinkProgram(program uint32) {
	d.call("LinkProgram")
	p, ok := d.programs[program]
	if !ok {
		d.Raise(gpu.INVALID_VALUE)
		return
	}
	if d.FailLink {
		d.FailLink = false
		p.linked = false
		p.log = "error: vertex shader output not consumed by fragment shader"
		return
	}

	stages := make(map[gpu.ShaderStage]bool)
	var location int32
	for _, id := range p.attached {
		s := d.shaders[id]
		if s == nil || !s.compiled {
			p.linked = false
			p.log = "error: linking with uncompiled shader"
			return
		}
		stages[s.stage] = true
		for _, m := range uniformDecl.FindAllStringSubmatch(s.source, -1) {
			if _, seen := p.uniforms[m[1]]; !seen {
				p.uniforms[m[1]] = location
				location++
			}
		}
	}
	if !stages[gpu.ShaderStageVertex] || !stages[gpu.ShaderStageFragment] {
		p.linked = false
		p.log = "error: program needs a vertex and a fragment shader"
		return
	}
	p.linked = true
}

func (d *Driver) ValidateProgram(program uint32) {
	d.call("ValidateProgram")
	p, ok := d.programs[program]
	if !ok {
		d.Raise(gpu.INVALID_VALUE)
		return
	}
	if d.FailValidate {
		d.FailValidate = false
		p.valid = false
		p.log = "validation failed"
		return
	}
	if d.RequireVertexArray && d.vao == 0 {
		p.valid = false
		p.log = "validation failed: no vertex array object bound"
		return
	}
	p.valid = p.linked
}

func (d *Driver) GetProgramiv(program uint32, pname uint32) int32 {
	p, ok := d.programs[program]
	if !ok {
		d.Raise(gpu.INVALID_VALUE)
		return 0
	}
	flag := func(b bool) int32 {
		if b {
			return gpu.TRUE
		}
		return gpu.FALSE
	}
	switch pname {
	case gpu.LINK_STATUS:
		return flag(p.linked)
	case gpu.VALIDATE_STATUS:
		return flag(p.valid)
	case gpu.INFO_LOG_LENGTH:
		return int32(len(p.log))
	}
	d.Raise(gpu.INVALID_ENUM)
	return 0
}

func (d *Driver) GetProgramInfoLog(program uint32) string {
	if p, ok := d.programs[program]; ok {
		return p.log
	}
	return ""
}

func (d *Driver) DeleteProgram(program uint32) {
	d.call("DeleteProgram")
	delete(d.programs, program)
	if d.program == program {
		d.program = 0
	}
}

func (d *Driver) UseProgram(program uint32) {
	d.call("UseProgram")
	if p, ok := d.programs[program]; program != 0 && (!ok || !p.linked) {
		d.Raise(gpu.INVALID_OPERATION)
		return
	}
	d.program = program
}

func (d *Driver) GetUniformLocation(program uint32, name string) int32 {
	d.call("GetUniformLocation")
	d.UniformQueries[name]++
	p, ok := d.programs[program]
	if !ok || !p.linked {
		d.Raise(gpu.INVALID_OPERATION)
		return -1
	}
	if location, ok := p.uniforms[name]; ok {
		return location
	}
	return -1
}

func (d *Driver) Uniform4f(location int32, v0, v1, v2, v3 float32) {
	d.call("Uniform4f")
	if d.program == 0 {
		d.Raise(gpu.INVALID_OPERATION)
		return
	}
	if location == -1 {
		return
	}
	values, ok := d.UniformValues[d.program]
	if !ok {
		values = make(map[int32][4]float32)
		d.UniformValues[d.program] = values
	}
	values[location] = [4]float32{v0, v1, v2, v3}
}

// Uniform returns the last vec4 uploaded to the named uniform of program.
func (d *Driver) Uniform(program uint32, name string) ([4]float32, bool) {
	p, ok := d.programs[program]
	if !ok {
		return [4]float32{}, false
	}
	location, ok := p.uniforms[name]
	if !ok {
		return [4]float32{}, false
	}
	v, ok := d.UniformValues[program][location]
	return v, ok
}

// LivePrograms is the number of programs created and not deleted.
func (d *Driver) LivePrograms() int {
	return len(d.programs)
}

// LiveShaders is the number of stage objects created and not deleted.
func (d *Driver) LiveShaders() int {
	return len(d.shaders)
}

func (d *Driver) ClearColor(r, g, b, a float32) {
	d.call("ClearColor")
	d.ClearColors = append(d.ClearColors, [4]float32{r, g, b, a})
}

func (d *Driver) Clear(mask uint32) {
	d.call("Clear")
	if mask&^gpu.COLOR_BUFFER_BIT != 0 {
		d.Raise(gpu.INVALID_VALUE)
		return
	}
	d.Clears++
}

func (d *Driver) Viewport(x, y, width, height int32) {
	d.call("Viewport")
	if width < 0 || height < 0 {
		d.Raise(gpu.INVALID_VALUE)
		return
	}
	d.ViewportSet = [4]int32{x, y, width, height}
}

func (d *Driver) DrawElements(mode uint32, count int32, xtype uint32, offset uintptr) {
	d.call("DrawElements")
	if d.program == 0 || d.vao == 0 || d.elementBinding[d.vao] == 0 {
		d.Raise(gpu.INVALID_OPERATION)
		return
	}
	d.Draws = append(d.Draws, Draw{
		Mode:        mode,
		Count:       count,
		Type:        xtype,
		Offset:      offset,
		VertexArray: d.vao,
		IndexBuffer: d.elementBinding[d.vao],
		Program:     d.program,
	})
}

var _ gpu.Driver = (*Driver)(nil)
