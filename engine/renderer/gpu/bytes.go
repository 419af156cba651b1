package gpu

import (
	"unsafe"

	"golang.org/x/exp/constraints"
)

// Numeric is any element type a vertex or index payload can hold.
type Numeric interface {
	constraints.Integer | constraints.Float
}

// AsBytes reinterprets a numeric slice as its raw bytes, without copying.
func AsBytes[T Numeric](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), len(data)*int(unsafe.Sizeof(zero)))
}
