package gpu_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/quad/engine/renderer/gpu"
	"github.com/spaghettifunk/quad/engine/renderer/gpu/gputest"
)

func TestCallReportsErrorsRaisedByTheCall(t *testing.T) {
	ctx, d := newTestContext(t)

	err := ctx.Call("glBindBuffer(GL_ARRAY_BUFFER, 42)", func() {
		d.BindBuffer(gpu.ArrayBuffer, 42)
	})

	var callErr *gpu.CallError
	require.ErrorAs(t, err, &callErr)
	assert.Equal(t, []uint32{gpu.INVALID_OPERATION}, callErr.Codes)
	assert.Equal(t, "glBindBuffer(GL_ARRAY_BUFFER, 42)", callErr.Call)
	assert.Equal(t, "context_test.go", callErr.File)
	assert.NotZero(t, callErr.Line)
	assert.Contains(t, callErr.Error(), "GL_INVALID_OPERATION")
}

func TestCallClearsStaleErrorsFirst(t *testing.T) {
	ctx, d := newTestContext(t)

	// left over from some earlier, unchecked call
	d.Raise(gpu.INVALID_ENUM)
	d.Raise(gpu.INVALID_VALUE)

	err := ctx.Call("glClear", func() { d.Clear(gpu.COLOR_BUFFER_BIT) })
	assert.NoError(t, err)
	assert.Equal(t, gpu.NO_ERROR, d.GetError())
}

func TestCallCollectsEveryFlag(t *testing.T) {
	ctx, d := newTestContext(t)

	err := ctx.Call("several", func() {
		d.Raise(gpu.INVALID_ENUM)
		d.Raise(gpu.OUT_OF_MEMORY)
	})

	var callErr *gpu.CallError
	require.ErrorAs(t, err, &callErr)
	assert.Equal(t, []uint32{gpu.INVALID_ENUM, gpu.OUT_OF_MEMORY}, callErr.Codes)
	assert.True(t, callErr.Has(gpu.OUT_OF_MEMORY))
	assert.False(t, callErr.Has(gpu.INVALID_VALUE))
}

func TestCallWithoutDebugSkipsChecks(t *testing.T) {
	d := gputest.NewDriver()
	ctx := gpu.NewContext(d, gpu.WithDebug(false))
	assert.False(t, ctx.Debug())

	ran := false
	err := ctx.Call("glBindBuffer", func() {
		ran = true
		d.BindBuffer(gpu.ArrayBuffer, 42)
	})
	assert.NoError(t, err)
	assert.True(t, ran)
	// the flag is still pending in the driver
	assert.Equal(t, gpu.INVALID_OPERATION, d.GetError())
}

func TestCallStopsDrainingEventually(t *testing.T) {
	ctx, d := newTestContext(t)

	err := ctx.Call("flood", func() {
		for i := 0; i < 100; i++ {
			d.Raise(gpu.INVALID_OPERATION)
		}
	})
	var callErr *gpu.CallError
	require.ErrorAs(t, err, &callErr)
	assert.Len(t, callErr.Codes, 32)
}

func TestMust(t *testing.T) {
	assert.NotPanics(t, func() { gpu.Must(nil) })
	assert.PanicsWithError(t, gpu.ErrShaderNotLinked.Error(), func() { gpu.Must(gpu.ErrShaderNotLinked) })
}
