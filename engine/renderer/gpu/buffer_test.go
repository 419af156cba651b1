package gpu_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/quad/engine/renderer/gpu"
	"github.com/spaghettifunk/quad/engine/renderer/gpu/gputest"
)

func newTestContext(t *testing.T) (*gpu.Context, *gputest.Driver) {
	t.Helper()
	d := gputest.NewDriver()
	return gpu.NewContext(d), d
}

func TestVertexBufferUploadsPayload(t *testing.T) {
	ctx, d := newTestContext(t)

	positions := []float32{-0.5, -0.5, 0.5, -0.5, 0.5, 0.5}
	vb, err := gpu.NewVertexBufferOf(ctx, positions)
	require.NoError(t, err)

	assert.NotZero(t, vb.Handle())
	assert.Equal(t, 6*4, vb.Size())
	assert.Equal(t, gpu.AsBytes(positions), d.Buffers[vb.Handle()])
}

func TestBufferBindAndUnbind(t *testing.T) {
	ctx, _ := newTestContext(t)

	vb, err := gpu.NewVertexBuffer(ctx, []byte{1, 2, 3, 4})
	require.NoError(t, err)
	other, err := gpu.NewVertexBuffer(ctx, []byte{5, 6, 7, 8})
	require.NoError(t, err)

	require.NoError(t, vb.Bind())
	assert.Equal(t, vb.Handle(), ctx.BoundBuffer(gpu.ArrayBuffer))

	require.NoError(t, other.Bind())
	assert.Equal(t, other.Handle(), ctx.BoundBuffer(gpu.ArrayBuffer))

	require.NoError(t, other.Unbind())
	assert.Zero(t, ctx.BoundBuffer(gpu.ArrayBuffer))
}

func TestIndexBuffer(t *testing.T) {
	ctx, d := newTestContext(t)
	va, err := gpu.NewVertexArray(ctx)
	require.NoError(t, err)
	require.NoError(t, va.Bind())

	indices := []uint32{0, 1, 2, 3, 2, 0}
	ib, err := gpu.NewIndexBuffer(ctx, indices)
	require.NoError(t, err)

	assert.Equal(t, int32(6), ib.Count())
	assert.Equal(t, gpu.UNSIGNED_INT, ib.IndexType())
	assert.Equal(t, 6*4, ib.Size())
	assert.Equal(t, gpu.AsBytes(indices), d.Buffers[ib.Handle()])

	require.NoError(t, ib.Bind())
	assert.Equal(t, ib.Handle(), ctx.BoundBuffer(gpu.ElementArrayBuffer))
	require.NoError(t, ib.Unbind())
	assert.Zero(t, ctx.BoundBuffer(gpu.ElementArrayBuffer))
}

func TestEmptyBufferRejected(t *testing.T) {
	ctx, d := newTestContext(t)

	_, err := gpu.NewVertexBuffer(ctx, nil)
	assert.ErrorIs(t, err, gpu.ErrEmptyBuffer)
	_, err = gpu.NewIndexBuffer(ctx, []uint32{})
	assert.ErrorIs(t, err, gpu.ErrEmptyBuffer)

	assert.Empty(t, d.Generated)
	assert.Empty(t, ctx.Live())
}

func TestBufferAcquireReleaseIsOneToOne(t *testing.T) {
	ctx, d := newTestContext(t)

	for i := 0; i < 50; i++ {
		vb, err := gpu.NewVertexBuffer(ctx, []byte{byte(i)})
		require.NoError(t, err)
		ib, err := gpu.NewIndexBuffer(ctx, []uint32{uint32(i)})
		require.NoError(t, err)

		assert.Len(t, ctx.Live(), 2)
		require.NoError(t, vb.Destroy())
		require.NoError(t, ib.Destroy())
	}

	assert.Empty(t, d.Buffers)
	assert.Empty(t, ctx.Live())
	assert.Zero(t, ctx.ReportLeaks())
	// every handle generated was deleted exactly once
	assert.ElementsMatch(t, d.Generated, d.Deleted)
}

func TestBufferDestroyTwice(t *testing.T) {
	ctx, d := newTestContext(t)

	vb, err := gpu.NewVertexBuffer(ctx, []byte{1})
	require.NoError(t, err)
	require.NoError(t, vb.Destroy())
	require.NoError(t, vb.Destroy())

	assert.Len(t, d.Deleted, 1)
	assert.Zero(t, vb.Handle())
	assert.ErrorIs(t, vb.Bind(), gpu.ErrDestroyed)
}

func TestBufferUploadFailureReleasesHandle(t *testing.T) {
	ctx, d := newTestContext(t)
	d.FailOn["BufferData"] = gpu.OUT_OF_MEMORY

	_, err := gpu.NewVertexBuffer(ctx, make([]byte, 64))
	var callErr *gpu.CallError
	require.ErrorAs(t, err, &callErr)
	assert.True(t, callErr.Has(gpu.OUT_OF_MEMORY))
	assert.Equal(t, "glBufferData", callErr.Call)

	assert.Empty(t, ctx.Live())
	assert.ElementsMatch(t, d.Generated, d.Deleted)
}

func TestLiveReportsLabels(t *testing.T) {
	ctx, _ := newTestContext(t)

	vb, err := gpu.NewVertexBuffer(ctx, []byte{1})
	require.NoError(t, err)

	live := ctx.Live()
	require.Len(t, live, 1)
	assert.Equal(t, gpu.ResourceVertexBuffer, live[0].Kind)
	assert.Equal(t, vb.Handle(), live[0].Handle)
	assert.Equal(t, vb.Label(), live[0].Label)
	assert.Equal(t, 1, ctx.ReportLeaks())
}
