package gpu

import "fmt"

// Driver is the subset of the OpenGL 3.3 core API the wrappers issue. Every
// call acts on the driver's current binding state, so a Driver must only be
// used from the goroutine that owns the context.
type Driver interface {
	GetError() uint32
	GetInteger(pname uint32) int32
	GetString(name uint32) string

	GenBuffer() uint32
	DeleteBuffer(id uint32)
	BindBuffer(target BufferTarget, id uint32)
	BufferData(target BufferTarget, data []byte, usage BufferUsage)

	GenVertexArray() uint32
	DeleteVertexArray(id uint32)
	BindVertexArray(id uint32)
	EnableVertexAttribArray(index uint32)
	VertexAttribPointer(index uint32, size int32, xtype uint32, normalized bool, stride int32, offset uintptr)

	CreateShader(stage ShaderStage) uint32
	ShaderSource(id uint32, source string)
	CompileShader(id uint32)
	GetShaderiv(id uint32, pname uint32) int32
	GetShaderInfoLog(id uint32) string
	DeleteShader(id uint32)

	CreateProgram() uint32
	AttachShader(program, shader uint32)
	LinkProgram(program uint32)
	ValidateProgram(program uint32)
	GetProgramiv(program uint32, pname uint32) int32
	GetProgramInfoLog(program uint32) string
	DeleteProgram(program uint32)
	UseProgram(program uint32)

	GetUniformLocation(program uint32, name string) int32
	Uniform4f(location int32, v0, v1, v2, v3 float32)

	ClearColor(r, g, b, a float32)
	Clear(mask uint32)
	Viewport(x, y, width, height int32)
	DrawElements(mode uint32, count int32, xtype uint32, offset uintptr)
}

// OpenGL enum values used by the wrappers. They match the values in the GL
// headers so a Driver can pass them through unchanged.
const (
	NO_ERROR                      uint32 = 0
	INVALID_ENUM                  uint32 = 0x0500
	INVALID_VALUE                 uint32 = 0x0501
	INVALID_OPERATION             uint32 = 0x0502
	OUT_OF_MEMORY                 uint32 = 0x0505
	INVALID_FRAMEBUFFER_OPERATION uint32 = 0x0506

	FALSE int32 = 0
	TRUE  int32 = 1

	TRIANGLES        uint32 = 0x0004
	COLOR_BUFFER_BIT uint32 = 0x4000

	UNSIGNED_BYTE uint32 = 0x1401
	UNSIGNED_INT  uint32 = 0x1405
	FLOAT         uint32 = 0x1406

	VENDOR                   uint32 = 0x1F00
	RENDERER                 uint32 = 0x1F01
	VERSION                  uint32 = 0x1F02
	SHADING_LANGUAGE_VERSION uint32 = 0x8B8C

	ARRAY_BUFFER_BINDING         uint32 = 0x8894
	ELEMENT_ARRAY_BUFFER_BINDING uint32 = 0x8895
	VERTEX_ARRAY_BINDING         uint32 = 0x85B5
	CURRENT_PROGRAM              uint32 = 0x8B8D

	COMPILE_STATUS  uint32 = 0x8B81
	LINK_STATUS     uint32 = 0x8B82
	VALIDATE_STATUS uint32 = 0x8B83
	INFO_LOG_LENGTH uint32 = 0x8B84
)

type BufferTarget uint32

const (
	ArrayBuffer        BufferTarget = 0x8892
	ElementArrayBuffer BufferTarget = 0x8893
)

// binding returns the GetInteger query reporting what is bound to the target.
func (t BufferTarget) binding() uint32 {
	if t == ElementArrayBuffer {
		return ELEMENT_ARRAY_BUFFER_BINDING
	}
	return ARRAY_BUFFER_BINDING
}

func (t BufferTarget) String() string {
	switch t {
	case ArrayBuffer:
		return "GL_ARRAY_BUFFER"
	case ElementArrayBuffer:
		return "GL_ELEMENT_ARRAY_BUFFER"
	}
	return fmt.Sprintf("BufferTarget(0x%04X)", uint32(t))
}

type BufferUsage uint32

const (
	StaticDraw  BufferUsage = 0x88E4
	DynamicDraw BufferUsage = 0x88E8
)

type ShaderStage uint32

const (
	ShaderStageFragment ShaderStage = 0x8B30
	ShaderStageVertex   ShaderStage = 0x8B31
)

func (s ShaderStage) String() string {
	switch s {
	case ShaderStageVertex:
		return "vertex"
	case ShaderStageFragment:
		return "fragment"
	}
	return fmt.Sprintf("ShaderStage(0x%04X)", uint32(s))
}

// ErrorName returns the GL constant name of an error code.
func ErrorName(code uint32) string {
	switch code {
	case NO_ERROR:
		return "GL_NO_ERROR"
	case INVALID_ENUM:
		return "GL_INVALID_ENUM"
	case INVALID_VALUE:
		return "GL_INVALID_VALUE"
	case INVALID_OPERATION:
		return "GL_INVALID_OPERATION"
	case OUT_OF_MEMORY:
		return "GL_OUT_OF_MEMORY"
	case INVALID_FRAMEBUFFER_OPERATION:
		return "GL_INVALID_FRAMEBUFFER_OPERATION"
	}
	return "GL_UNKNOWN_ERROR"
}
