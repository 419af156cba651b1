package gpu

import (
	"errors"

	"github.com/google/uuid"
	"github.com/spaghettifunk/quad/engine/assets/loaders"
	"github.com/spaghettifunk/quad/engine/core"
	"github.com/spaghettifunk/quad/engine/math"
)

type ShaderState uint8

const (
	// The program has not been built, or was destroyed.
	ShaderStateUninitialized ShaderState = iota
	// Stages are being compiled and linked.
	ShaderStateCompiling
	// The program is linked and usable.
	ShaderStateLinked
	// A stage failed to compile or the program failed to link or validate.
	ShaderStateFailed
)

func (s ShaderState) String() string {
	switch s {
	case ShaderStateUninitialized:
		return "uninitialized"
	case ShaderStateCompiling:
		return "compiling"
	case ShaderStateLinked:
		return "linked"
	case ShaderStateFailed:
		return "failed"
	}
	return "unknown"
}

// ShaderSource is the text of the two stages of a program.
type ShaderSource struct {
	Vertex   string
	Fragment string
}

// LoadShaderSource reads both stage files whole.
func LoadShaderSource(vertexPath, fragmentPath string) (ShaderSource, error) {
	sl := &loaders.ShaderLoader{}
	vs, err := sl.Load(vertexPath)
	if err != nil {
		return ShaderSource{}, err
	}
	fs, err := sl.Load(fragmentPath)
	if err != nil {
		return ShaderSource{}, err
	}
	return ShaderSource{Vertex: vs.Text(), Fragment: fs.Text()}, nil
}

// Shader is a linked vertex + fragment program with a cache of uniform
// locations.
type Shader struct {
	ctx          *Context
	id           uint32
	label        uuid.UUID
	state        ShaderState
	vertexPath   string
	fragmentPath string
	uniforms     map[string]int32
}

// NewShader reads, compiles and links the two stage files. The returned
// shader is never nil: when err is not nil it is in ShaderStateFailed with a
// zero handle, and err is a *CompileError, a *LinkError, a file error or a
// driver *CallError.
func NewShader(ctx *Context, vertexPath, fragmentPath string) (*Shader, error) {
	s := newShader(ctx)
	s.vertexPath = vertexPath
	s.fragmentPath = fragmentPath

	src, err := LoadShaderSource(vertexPath, fragmentPath)
	if err != nil {
		s.state = ShaderStateFailed
		core.LogError(err.Error())
		return s, err
	}
	return s, s.build(src)
}

// NewShaderFromSource is NewShader for source text already in memory.
func NewShaderFromSource(ctx *Context, src ShaderSource) (*Shader, error) {
	s := newShader(ctx)
	return s, s.build(src)
}

func newShader(ctx *Context) *Shader {
	return &Shader{
		ctx:      ctx,
		state:    ShaderStateUninitialized,
		uniforms: make(map[string]int32),
	}
}

func (s *Shader) build(src ShaderSource) error {
	s.state = ShaderStateCompiling
	id, err := s.link(src)
	if err != nil {
		s.state = ShaderStateFailed
		return err
	}
	s.id = id
	s.label = s.ctx.track(ResourceProgram, id)
	s.state = ShaderStateLinked
	return nil
}

// link compiles both stages into a new program and returns its handle. The
// stage objects are deleted once attached; on failure nothing is leaked.
func (s *Shader) link(src ShaderSource) (uint32, error) {
	vs, err := s.compile(ShaderStageVertex, src.Vertex)
	if err != nil {
		return 0, err
	}
	fs, err := s.compile(ShaderStageFragment, src.Fragment)
	if err != nil {
		s.deleteShader(vs)
		return 0, err
	}

	d := s.ctx.driver
	var program uint32
	var linked, valid int32
	bt := &batch{ctx: s.ctx}
	bt.call("glCreateProgram", func() { program = d.CreateProgram() })
	bt.call("glAttachShader", func() { d.AttachShader(program, vs) })
	bt.call("glAttachShader", func() { d.AttachShader(program, fs) })
	bt.call("glLinkProgram", func() { d.LinkProgram(program) })
	bt.call("glGetProgramiv", func() { linked = d.GetProgramiv(program, LINK_STATUS) })
	if bt.err == nil && linked != FALSE {
		bt.call("glValidateProgram", func() { d.ValidateProgram(program) })
		bt.call("glGetProgramiv", func() { valid = d.GetProgramiv(program, VALIDATE_STATUS) })
	}

	s.deleteShader(vs)
	s.deleteShader(fs)

	err = bt.err
	if err == nil && linked == FALSE {
		err = &LinkError{Log: d.GetProgramInfoLog(program)}
	} else if err == nil && valid == FALSE {
		err = &LinkError{Validate: true, Log: d.GetProgramInfoLog(program)}
	}
	if err != nil {
		var le *LinkError
		if errors.As(err, &le) {
			core.LogError(le.Error())
		}
		if program != 0 {
			_ = s.ctx.Call("glDeleteProgram", func() { d.DeleteProgram(program) })
		}
		return 0, err
	}
	return program, nil
}

func (s *Shader) compile(stage ShaderStage, source string) (uint32, error) {
	d := s.ctx.driver
	var id uint32
	var status int32
	bt := &batch{ctx: s.ctx}
	bt.call("glCreateShader", func() { id = d.CreateShader(stage) })
	bt.call("glShaderSource", func() { d.ShaderSource(id, source) })
	bt.call("glCompileShader", func() { d.CompileShader(id) })
	bt.call("glGetShaderiv", func() { status = d.GetShaderiv(id, COMPILE_STATUS) })
	if bt.err != nil {
		s.deleteShader(id)
		return 0, bt.err
	}

	if status == FALSE {
		err := &CompileError{Stage: stage, Log: d.GetShaderInfoLog(id)}
		core.LogError(err.Error())
		s.deleteShader(id)
		return 0, err
	}
	return id, nil
}

func (s *Shader) deleteShader(id uint32) {
	if id == 0 {
		return
	}
	d := s.ctx.driver
	_ = s.ctx.Call("glDeleteShader", func() { d.DeleteShader(id) })
}

// Bind makes this program the active one for draw calls.
func (s *Shader) Bind() error {
	if s.state != ShaderStateLinked {
		return ErrShaderNotLinked
	}
	d := s.ctx.driver
	return s.ctx.Call("glUseProgram", func() { d.UseProgram(s.id) })
}

func (s *Shader) Unbind() error {
	d := s.ctx.driver
	return s.ctx.Call("glUseProgram", func() { d.UseProgram(0) })
}

// UniformLocation resolves name, asking the driver only the first time a name
// is seen. A name the program does not have resolves to -1; that is logged
// once and cached like any other location.
func (s *Shader) UniformLocation(name string) (int32, error) {
	if location, ok := s.uniforms[name]; ok {
		return location, nil
	}
	if s.state != ShaderStateLinked {
		return -1, ErrShaderNotLinked
	}

	d := s.ctx.driver
	var location int32
	if err := s.ctx.Call("glGetUniformLocation", func() { location = d.GetUniformLocation(s.id, name) }); err != nil {
		return -1, err
	}
	if location == -1 {
		core.LogWarn("uniform %q doesn't exist in shader program %d", name, s.id)
	}
	s.uniforms[name] = location
	return location, nil
}

// SetUniform4f uploads a vec4 to the program, which must be bound. An unknown
// uniform is not an error: the upload to location -1 is ignored by the
// driver.
func (s *Shader) SetUniform4f(name string, v0, v1, v2, v3 float32) error {
	location, err := s.UniformLocation(name)
	if err != nil {
		return err
	}
	d := s.ctx.driver
	return s.ctx.Call("glUniform4f", func() { d.Uniform4f(location, v0, v1, v2, v3) })
}

func (s *Shader) SetUniformVec4(name string, v math.Vec4) error {
	return s.SetUniform4f(name, v.X, v.Y, v.Z, v.W)
}

// Reload re-reads the stage files and rebuilds the program. If the new source
// fails the previous program stays in use and the error is returned.
func (s *Shader) Reload() error {
	if s.vertexPath == "" || s.fragmentPath == "" {
		return ErrNoShaderPaths
	}
	src, err := LoadShaderSource(s.vertexPath, s.fragmentPath)
	if err != nil {
		return err
	}

	previous := s.state
	s.state = ShaderStateCompiling
	id, err := s.link(src)
	if err != nil {
		if previous == ShaderStateLinked {
			core.LogWarn("keeping previous shader program %d", s.id)
			s.state = ShaderStateLinked
		} else {
			s.state = ShaderStateFailed
		}
		return err
	}

	if err := s.Destroy(); err != nil {
		core.LogWarn("releasing previous shader program: %s", err)
	}
	s.id = id
	s.label = s.ctx.track(ResourceProgram, id)
	s.state = ShaderStateLinked
	core.LogInfo("reloaded shader program %d from %s, %s", id, s.vertexPath, s.fragmentPath)
	return nil
}

// Destroy deletes the program and forgets cached uniform locations.
func (s *Shader) Destroy() error {
	clear(s.uniforms)
	if s.id == 0 {
		s.state = ShaderStateUninitialized
		return nil
	}
	d := s.ctx.driver
	id := s.id
	err := s.ctx.Call("glDeleteProgram", func() { d.DeleteProgram(id) })
	s.ctx.untrack(ResourceProgram, id)
	s.id = 0
	s.state = ShaderStateUninitialized
	return err
}

// Handle is the program handle, 0 unless the shader is linked.
func (s *Shader) Handle() uint32 {
	return s.id
}

func (s *Shader) State() ShaderState {
	return s.state
}

func (s *Shader) Label() uuid.UUID {
	return s.label
}
