package loaders

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ConfigLoader reads TOML configuration files. Decoding is left to the
// caller, which owns the target type.
type ConfigLoader struct{}

func (cl *ConfigLoader) Load(path string) (*Resource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}
	return &Resource{
		Name:     strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		FullPath: path,
		Type:     ResourceTypeConfig,
		DataSize: uint64(len(data)),
		Data:     data,
		LoadedAt: time.Now(),
	}, nil
}

func (cl *ConfigLoader) Unload(r *Resource) error {
	r.Data = nil
	r.DataSize = 0
	return nil
}
