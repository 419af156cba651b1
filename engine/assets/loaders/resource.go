package loaders

import "time"

type ResourceType uint8

const (
	ResourceTypeNone ResourceType = iota
	ResourceTypeShader
	ResourceTypeConfig
)

// Resource is the raw content of one asset file.
type Resource struct {
	Name     string
	FullPath string
	Type     ResourceType
	DataSize uint64
	Data     []byte
	LoadedAt time.Time
}

// Text returns the data as a string, verbatim.
func (r *Resource) Text() string {
	return string(r.Data)
}
