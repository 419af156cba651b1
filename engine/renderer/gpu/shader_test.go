package gpu_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/quad/engine/core"
	"github.com/spaghettifunk/quad/engine/math"
	"github.com/spaghettifunk/quad/engine/renderer/gpu"
)

const vertexSource = `#version 330 core
layout(location = 0) in vec4 position;

void main() {
	gl_Position = position;
}
`

const fragmentSource = `#version 330 core
layout(location = 0) out vec4 color;

uniform vec4 u_Color;

void main() {
	color = u_Color;
}
`

// missing the closing brace of main
const brokenSource = `#version 330 core
layout(location = 0) out vec4 color;

void main() {
	color = vec4(1.0);
`

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	core.SetLogOutput(&buf)
	t.Cleanup(func() { core.SetLogOutput(os.Stderr) })
	return &buf
}

func writeShaders(t *testing.T, vertex, fragment string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	vp := filepath.Join(dir, "basic.vert")
	fp := filepath.Join(dir, "basic.frag")
	require.NoError(t, os.WriteFile(vp, []byte(vertex), 0o644))
	require.NoError(t, os.WriteFile(fp, []byte(fragment), 0o644))
	return vp, fp
}

func TestShaderLinks(t *testing.T) {
	ctx, d := newTestContext(t)

	s, err := gpu.NewShaderFromSource(ctx, gpu.ShaderSource{Vertex: vertexSource, Fragment: fragmentSource})
	require.NoError(t, err)
	assert.NotZero(t, s.Handle())
	assert.Equal(t, gpu.ShaderStateLinked, s.State())
	// stage objects are not kept once the program is linked
	assert.Zero(t, d.LiveShaders())
	assert.Equal(t, 1, d.LivePrograms())

	require.NoError(t, s.Bind())
	assert.Equal(t, s.Handle(), ctx.BoundProgram())
	require.NoError(t, s.Unbind())
	assert.Zero(t, ctx.BoundProgram())
}

func TestShaderCompileErrors(t *testing.T) {
	tests := []struct {
		name     string
		vertex   string
		fragment string
		stage    gpu.ShaderStage
	}{
		{"fragment syntax error", vertexSource, brokenSource, gpu.ShaderStageFragment},
		{"vertex syntax error", brokenSource, fragmentSource, gpu.ShaderStageVertex},
		{"missing version", strings.TrimPrefix(vertexSource, "#version 330 core\n"), fragmentSource, gpu.ShaderStageVertex},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLog(t)
			ctx, d := newTestContext(t)

			s, err := gpu.NewShaderFromSource(ctx, gpu.ShaderSource{Vertex: tt.vertex, Fragment: tt.fragment})
			require.NotNil(t, s)
			var compileErr *gpu.CompileError
			require.ErrorAs(t, err, &compileErr)
			assert.Equal(t, tt.stage, compileErr.Stage)
			assert.NotEmpty(t, compileErr.Log)

			assert.Zero(t, s.Handle())
			assert.Equal(t, gpu.ShaderStateFailed, s.State())
			assert.Contains(t, buf.String(), "failed to compile "+tt.stage.String()+" shader")

			assert.Zero(t, d.LiveShaders())
			assert.Zero(t, d.LivePrograms())
			assert.Empty(t, ctx.Live())
			assert.ErrorIs(t, s.Bind(), gpu.ErrShaderNotLinked)
		})
	}
}

func TestShaderLinkAndValidateErrors(t *testing.T) {
	ctx, d := newTestContext(t)
	src := gpu.ShaderSource{Vertex: vertexSource, Fragment: fragmentSource}

	d.FailLink = true
	s, err := gpu.NewShaderFromSource(ctx, src)
	var linkErr *gpu.LinkError
	require.ErrorAs(t, err, &linkErr)
	assert.False(t, linkErr.Validate)
	assert.Equal(t, gpu.ShaderStateFailed, s.State())
	assert.Zero(t, s.Handle())

	d.FailValidate = true
	s, err = gpu.NewShaderFromSource(ctx, src)
	require.ErrorAs(t, err, &linkErr)
	assert.True(t, linkErr.Validate)
	assert.Contains(t, err.Error(), "failed to validate")
	assert.Equal(t, gpu.ShaderStateFailed, s.State())

	assert.Zero(t, d.LivePrograms())
	assert.Zero(t, d.LiveShaders())
}

func TestUniformLocationIsCached(t *testing.T) {
	ctx, d := newTestContext(t)

	s, err := gpu.NewShaderFromSource(ctx, gpu.ShaderSource{Vertex: vertexSource, Fragment: fragmentSource})
	require.NoError(t, err)
	require.NoError(t, s.Bind())

	require.NoError(t, s.SetUniform4f("u_Color", 0.2, 0.3, 0.8, 1.0))
	require.NoError(t, s.SetUniform4f("u_Color", 0.4, 0.3, 0.8, 1.0))
	assert.Equal(t, 1, d.UniformQueries["u_Color"])

	v, ok := d.Uniform(s.Handle(), "u_Color")
	require.True(t, ok)
	assert.Equal(t, [4]float32{0.4, 0.3, 0.8, 1.0}, v)

	require.NoError(t, s.SetUniformVec4("u_Color", math.NewVec4(1, 0, 0, 1)))
	v, _ = d.Uniform(s.Handle(), "u_Color")
	assert.Equal(t, [4]float32{1, 0, 0, 1}, v)
	assert.Equal(t, 1, d.UniformQueries["u_Color"])
}

func TestUnknownUniformWarnsOnce(t *testing.T) {
	buf := captureLog(t)
	ctx, d := newTestContext(t)

	s, err := gpu.NewShaderFromSource(ctx, gpu.ShaderSource{Vertex: vertexSource, Fragment: fragmentSource})
	require.NoError(t, err)
	require.NoError(t, s.Bind())

	for i := 0; i < 3; i++ {
		assert.NoError(t, s.SetUniform4f("u_Missing", 1, 1, 1, 1))
	}
	location, err := s.UniformLocation("u_Missing")
	require.NoError(t, err)
	assert.Equal(t, int32(-1), location)

	assert.Equal(t, 1, d.UniformQueries["u_Missing"])
	assert.Equal(t, 1, strings.Count(buf.String(), "doesn't exist"))
}

func TestUniformOnUnlinkedShader(t *testing.T) {
	ctx, d := newTestContext(t)

	s, _ := gpu.NewShaderFromSource(ctx, gpu.ShaderSource{Vertex: vertexSource, Fragment: brokenSource})
	assert.ErrorIs(t, s.SetUniform4f("u_Color", 1, 0, 0, 1), gpu.ErrShaderNotLinked)
	assert.Zero(t, d.UniformQueries["u_Color"])
}

func TestNewShaderFromFiles(t *testing.T) {
	ctx, _ := newTestContext(t)
	vp, fp := writeShaders(t, vertexSource, fragmentSource)

	s, err := gpu.NewShader(ctx, vp, fp)
	require.NoError(t, err)
	assert.Equal(t, gpu.ShaderStateLinked, s.State())

	live := ctx.Live()
	require.Len(t, live, 1)
	assert.Equal(t, gpu.ResourceProgram, live[0].Kind)
	assert.Equal(t, s.Label(), live[0].Label)
}

func TestNewShaderMissingFile(t *testing.T) {
	ctx, d := newTestContext(t)
	vp, _ := writeShaders(t, vertexSource, fragmentSource)

	s, err := gpu.NewShader(ctx, vp, filepath.Join(t.TempDir(), "nope.frag"))
	require.NotNil(t, s)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, gpu.ShaderStateFailed, s.State())
	assert.Zero(t, s.Handle())
	assert.Zero(t, d.LiveShaders())
}

func TestShaderReload(t *testing.T) {
	ctx, d := newTestContext(t)
	vp, fp := writeShaders(t, vertexSource, fragmentSource)

	s, err := gpu.NewShader(ctx, vp, fp)
	require.NoError(t, err)
	require.NoError(t, s.Bind())
	require.NoError(t, s.SetUniform4f("u_Color", 1, 0, 0, 1))
	first := s.Handle()

	t.Run("failure keeps the linked program", func(t *testing.T) {
		captureLog(t)
		require.NoError(t, os.WriteFile(fp, []byte(brokenSource), 0o644))

		var compileErr *gpu.CompileError
		require.ErrorAs(t, s.Reload(), &compileErr)
		assert.Equal(t, first, s.Handle())
		assert.Equal(t, gpu.ShaderStateLinked, s.State())
		assert.Equal(t, 1, d.LivePrograms())
	})

	t.Run("success swaps the program", func(t *testing.T) {
		require.NoError(t, os.WriteFile(fp, []byte(fragmentSource), 0o644))

		require.NoError(t, s.Reload())
		assert.NotEqual(t, first, s.Handle())
		assert.Equal(t, gpu.ShaderStateLinked, s.State())
		assert.Equal(t, 1, d.LivePrograms())
		assert.Len(t, ctx.Live(), 1)

		// the cache belonged to the old program
		require.NoError(t, s.Bind())
		require.NoError(t, s.SetUniform4f("u_Color", 0, 1, 0, 1))
		assert.Equal(t, 2, d.UniformQueries["u_Color"])
	})
}

func TestShaderReloadWithoutPaths(t *testing.T) {
	ctx, _ := newTestContext(t)

	s, err := gpu.NewShaderFromSource(ctx, gpu.ShaderSource{Vertex: vertexSource, Fragment: fragmentSource})
	require.NoError(t, err)
	assert.ErrorIs(t, s.Reload(), gpu.ErrNoShaderPaths)
}

func TestShaderDestroy(t *testing.T) {
	ctx, d := newTestContext(t)

	for i := 0; i < 20; i++ {
		s, err := gpu.NewShaderFromSource(ctx, gpu.ShaderSource{Vertex: vertexSource, Fragment: fragmentSource})
		require.NoError(t, err)
		require.NoError(t, s.Destroy())
		require.NoError(t, s.Destroy())
		assert.Zero(t, s.Handle())
		assert.Equal(t, gpu.ShaderStateUninitialized, s.State())
	}

	assert.Zero(t, d.LivePrograms())
	assert.Zero(t, d.LiveShaders())
	assert.Zero(t, ctx.ReportLeaks())
}
