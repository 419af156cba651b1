package gpu

import "fmt"

// AttribType is the closed set of component types a vertex attribute can
// have.
type AttribType uint8

const (
	AttribFloat32 AttribType = iota + 1
	AttribUint32
	AttribUint8
)

// describe is the single place mapping an AttribType to its driver type,
// byte width and normalize flag.
func (t AttribType) describe() (glType uint32, size int32, normalized bool, ok bool) {
	switch t {
	case AttribFloat32:
		return FLOAT, 4, false, true
	case AttribUint32:
		return UNSIGNED_INT, 4, false, true
	case AttribUint8:
		return UNSIGNED_BYTE, 1, true, true
	}
	return 0, 0, false, false
}

func (t AttribType) Valid() bool {
	_, _, _, ok := t.describe()
	return ok
}

// GLType is the driver enum for the component type.
func (t AttribType) GLType() uint32 {
	glType, _, _, _ := t.describe()
	return glType
}

// Size is the byte width of one component.
func (t AttribType) Size() int32 {
	_, size, _, _ := t.describe()
	return size
}

// Normalized reports whether integer data is mapped to [0, 1] when read by
// the shader. Only uint8 components are.
func (t AttribType) Normalized() bool {
	_, _, normalized, _ := t.describe()
	return normalized
}

func (t AttribType) String() string {
	switch t {
	case AttribFloat32:
		return "float32"
	case AttribUint32:
		return "uint32"
	case AttribUint8:
		return "uint8"
	}
	return fmt.Sprintf("AttribType(%d)", uint8(t))
}

type VertexAttrib struct {
	Type       AttribType
	Count      int32
	Normalized bool
}

// ByteSize is the number of bytes the attribute takes in one vertex.
func (a VertexAttrib) ByteSize() int32 {
	return a.Count * a.Type.Size()
}

// VertexLayout describes how the bytes of one vertex map to shader inputs.
// Attributes are assigned locations 0, 1, 2... in push order.
type VertexLayout struct {
	attribs []VertexAttrib
	stride  int32
}

func NewVertexLayout() *VertexLayout {
	return &VertexLayout{}
}

// Push appends an attribute of count components of type t.
func (l *VertexLayout) Push(t AttribType, count int32) error {
	if !t.Valid() {
		return fmt.Errorf("%w: %s", ErrUnsupportedAttribType, t)
	}
	if count <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidAttribCount, count)
	}
	a := VertexAttrib{Type: t, Count: count, Normalized: t.Normalized()}
	l.attribs = append(l.attribs, a)
	l.stride += a.ByteSize()
	return nil
}

// Attribs returns a copy of the attributes in location order.
func (l *VertexLayout) Attribs() []VertexAttrib {
	out := make([]VertexAttrib, len(l.attribs))
	copy(out, l.attribs)
	return out
}

// Stride is the byte distance between consecutive vertices.
func (l *VertexLayout) Stride() int32 {
	return l.stride
}

// Offsets returns the byte offset of each attribute within a vertex.
func (l *VertexLayout) Offsets() []uintptr {
	offsets := make([]uintptr, len(l.attribs))
	var offset uintptr
	for i, a := range l.attribs {
		offsets[i] = offset
		offset += uintptr(a.ByteSize())
	}
	return offsets
}

func (l *VertexLayout) Len() int {
	return len(l.attribs)
}
