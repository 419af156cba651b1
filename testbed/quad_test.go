package testbed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/quad/engine/math"
	"github.com/spaghettifunk/quad/engine/renderer/gpu"
	"github.com/spaghettifunk/quad/engine/renderer/gpu/gputest"
)

const testVertexSource = `#version 330 core
layout(location = 0) in vec4 position;

void main() {
	gl_Position = position;
}
`

const testFragmentSource = `#version 330 core
layout(location = 0) out vec4 color;

uniform vec4 u_Color;

void main() {
	color = u_Color;
}
`

func TestQuadGeometry(t *testing.T) {
	assert.Len(t, QuadIndices, 6)

	tris := Triangles(QuadPositions, QuadIndices)
	require.Len(t, tris, 2)

	var area float32
	for _, tri := range tris {
		a := math.Cross2D(tri[0], tri[1], tri[2])
		assert.NotZero(t, a)
		if a < 0 {
			a = -a
		}
		area += a / 2
	}
	// the unit quad, with no overlap
	assert.InDelta(t, 1.0, area, 1e-6)

	seen := make(map[uint32]int)
	for _, i := range QuadIndices {
		seen[i]++
	}
	assert.Len(t, seen, 4)
	// vertices 0 and 2 form the shared diagonal
	assert.Equal(t, map[uint32]int{0: 2, 1: 1, 2: 2, 3: 1}, seen)
}

func TestNewQuad(t *testing.T) {
	d := gputest.NewDriver()
	ctx := gpu.NewContext(d)

	q, err := NewQuad(ctx)
	require.NoError(t, err)

	assert.Equal(t, int32(8), q.Layout.Stride())
	assert.Equal(t, []uintptr{0}, q.Layout.Offsets())
	assert.Equal(t, int32(6), q.IndexBuffer.Count())
	assert.Same(t, q.IndexBuffer, q.VertexArray.IndexBuffer())
	assert.Equal(t, gpu.AsBytes(QuadPositions), d.Buffers[q.VertexBuffer.Handle()])
	assert.Equal(t, gpu.AsBytes(QuadIndices), d.Buffers[q.IndexBuffer.Handle()])

	attribs := d.VertexArrays[q.VertexArray.Handle()]
	require.Len(t, attribs, 1)
	assert.Equal(t, &gputest.Attrib{Enabled: true, Size: 2, Type: gpu.FLOAT, Stride: 8, Offset: 0, Buffer: q.VertexBuffer.Handle()}, attribs[0])
	assert.Zero(t, ctx.BoundVertexArray())

	require.NoError(t, q.Destroy())
	assert.Empty(t, ctx.Live())
	assert.ElementsMatch(t, d.Generated, d.Deleted)
}

func TestNewQuadCleansUpOnFailure(t *testing.T) {
	d := gputest.NewDriver()
	ctx := gpu.NewContext(d)

	d.FailOn["VertexAttribPointer"] = gpu.INVALID_OPERATION
	_, err := NewQuad(ctx)
	require.Error(t, err)
	assert.Empty(t, ctx.Live())
}

func TestQuadWithBoundValidatesShader(t *testing.T) {
	d := gputest.NewDriver()
	d.RequireVertexArray = true
	ctx := gpu.NewContext(d)
	src := gpu.ShaderSource{Vertex: testVertexSource, Fragment: testFragmentSource}

	q, err := NewQuad(ctx)
	require.NoError(t, err)
	defer q.Destroy()
	require.Zero(t, ctx.BoundVertexArray())

	// NewQuad leaves nothing bound, so validation has no vertex array to check
	s, err := gpu.NewShaderFromSource(ctx, src)
	var linkErr *gpu.LinkError
	require.ErrorAs(t, err, &linkErr)
	assert.True(t, linkErr.Validate)
	assert.Equal(t, gpu.ShaderStateFailed, s.State())

	err = q.WithBound(func() error {
		assert.Equal(t, q.VertexArray.Handle(), ctx.BoundVertexArray())
		s, err = gpu.NewShaderFromSource(ctx, src)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, gpu.ShaderStateLinked, s.State())
	assert.Zero(t, ctx.BoundVertexArray())
	require.NoError(t, s.Destroy())
}

func TestColorOscillator(t *testing.T) {
	o := NewColorOscillator(math.NewVec4(0, 0.9, 0.2, 1), 0.01)

	first := o.Next()
	assert.Equal(t, math.NewVec4(0, 0.9, 0.2, 1), first)

	var reds []float32
	for i := 0; i < 250; i++ {
		c := o.Next()
		assert.GreaterOrEqual(t, c.X, float32(0))
		assert.LessOrEqual(t, c.X, float32(1))
		assert.Equal(t, float32(0.9), c.Y)
		reds = append(reds, c.X)
	}

	// rises to the top, then turns around
	peak := 0
	for i, r := range reds {
		if r > reds[peak] {
			peak = i
		}
	}
	assert.InDelta(t, 1.0, reds[peak], 1e-6)
	assert.Less(t, reds[len(reds)-1], reds[peak])
	assert.InDelta(t, 0.01, reds[1]-reds[0], 1e-4)
}
