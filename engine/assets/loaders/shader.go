package loaders

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ShaderLoader reads GLSL source files. No preprocessing or templating is
// applied.
type ShaderLoader struct{}

func (sl *ShaderLoader) Load(path string) (*Resource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading shader %s: %w", path, err)
	}
	return &Resource{
		Name:     strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		FullPath: path,
		Type:     ResourceTypeShader,
		DataSize: uint64(len(data)),
		Data:     data,
		LoadedAt: time.Now(),
	}, nil
}

func (sl *ShaderLoader) Unload(r *Resource) error {
	r.Data = nil
	r.DataSize = 0
	return nil
}

// IsShaderFile reports whether path has one of the GLSL stage extensions.
func IsShaderFile(path string) bool {
	switch filepath.Ext(path) {
	case ".vert", ".frag", ".glsl", ".vs", ".fs":
		return true
	}
	return false
}
