package gpu

// VertexBuffer holds vertex data in an ARRAY_BUFFER.
type VertexBuffer struct {
	buffer
}

// NewVertexBuffer allocates a buffer and uploads data to it.
func NewVertexBuffer(ctx *Context, data []byte) (*VertexBuffer, error) {
	b, err := newBuffer(ctx, ArrayBuffer, ResourceVertexBuffer, data)
	if err != nil {
		return nil, err
	}
	return &VertexBuffer{buffer: b}, nil
}

// NewVertexBufferOf uploads a typed slice, e.g. []float32 positions.
func NewVertexBufferOf[T Numeric](ctx *Context, data []T) (*VertexBuffer, error) {
	return NewVertexBuffer(ctx, AsBytes(data))
}
