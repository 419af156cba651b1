package testbed

import (
	"github.com/spaghettifunk/quad/engine/math"
	"github.com/spaghettifunk/quad/engine/renderer/gpu"
)

// Corners of the quad in normalized device coordinates, counter-clockwise
// from bottom left.
var QuadPositions = []float32{
	-0.5, -0.5,
	0.5, -0.5,
	0.5, 0.5,
	-0.5, 0.5,
}

// Two triangles sharing the 0-2 diagonal.
var QuadIndices = []uint32{
	0, 1, 2,
	3, 2, 0,
}

// Quad owns the GPU objects of the demo geometry.
type Quad struct {
	VertexArray  *gpu.VertexArray
	VertexBuffer *gpu.VertexBuffer
	IndexBuffer  *gpu.IndexBuffer
	Layout       *gpu.VertexLayout
}

func NewQuad(ctx *gpu.Context) (*Quad, error) {
	q := &Quad{Layout: gpu.NewVertexLayout()}
	if err := q.Layout.Push(gpu.AttribFloat32, 2); err != nil {
		return nil, err
	}

	var err error
	if q.VertexArray, err = gpu.NewVertexArray(ctx); err != nil {
		return nil, err
	}
	if q.VertexBuffer, err = gpu.NewVertexBufferOf(ctx, QuadPositions); err != nil {
		q.Destroy()
		return nil, err
	}
	if err = q.VertexArray.AddBuffer(q.VertexBuffer, q.Layout); err != nil {
		q.Destroy()
		return nil, err
	}
	if q.IndexBuffer, err = gpu.NewIndexBuffer(ctx, QuadIndices); err != nil {
		q.Destroy()
		return nil, err
	}
	if err = q.VertexArray.SetIndexBuffer(q.IndexBuffer); err != nil {
		q.Destroy()
		return nil, err
	}
	return q, q.VertexArray.Unbind()
}

// WithBound runs fn with the quad's vertex array bound and unbinds it after.
func (q *Quad) WithBound(fn func() error) error {
	if err := q.VertexArray.Bind(); err != nil {
		return err
	}
	err := fn()
	if uerr := q.VertexArray.Unbind(); err == nil {
		err = uerr
	}
	return err
}

// Destroy releases whatever was created. Safe on a partially built quad.
func (q *Quad) Destroy() error {
	var first error
	keep := func(err error) {
		if first == nil {
			first = err
		}
	}
	if q.IndexBuffer != nil {
		keep(q.IndexBuffer.Destroy())
	}
	if q.VertexBuffer != nil {
		keep(q.VertexBuffer.Destroy())
	}
	if q.VertexArray != nil {
		keep(q.VertexArray.Destroy())
	}
	return first
}

// Triangles returns the corners of each indexed triangle.
func Triangles(positions []float32, indices []uint32) [][3]math.Vec2 {
	tris := make([][3]math.Vec2, 0, len(indices)/3)
	for i := 0; i+2 < len(indices); i += 3 {
		var t [3]math.Vec2
		for j := 0; j < 3; j++ {
			k := indices[i+j] * 2
			t[j] = math.NewVec2(positions[k], positions[k+1])
		}
		tris = append(tris, t)
	}
	return tris
}

// ColorOscillator bounces the red channel between 0 and 1, one step per
// frame.
type ColorOscillator struct {
	Step  float32
	red   float32
	delta float32
	base  math.Vec4
}

func NewColorOscillator(base math.Vec4, step float32) *ColorOscillator {
	return &ColorOscillator{
		Step:  step,
		red:   0,
		delta: step,
		base:  base,
	}
}

// Next returns the colour for this frame and advances the channel.
func (o *ColorOscillator) Next() math.Vec4 {
	c := o.base
	c.X = math.Clamp(o.red, 0, 1)

	if o.red > 1 {
		o.delta = -o.Step
	} else if o.red < 0 {
		o.delta = o.Step
	}
	o.red += o.delta
	return c
}
