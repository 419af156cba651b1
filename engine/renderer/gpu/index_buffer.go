package gpu

// IndexBuffer holds uint32 element indices in an ELEMENT_ARRAY_BUFFER.
type IndexBuffer struct {
	buffer
	count int32
}

func NewIndexBuffer(ctx *Context, indices []uint32) (*IndexBuffer, error) {
	b, err := newBuffer(ctx, ElementArrayBuffer, ResourceIndexBuffer, AsBytes(indices))
	if err != nil {
		return nil, err
	}
	return &IndexBuffer{buffer: b, count: int32(len(indices))}, nil
}

// Count is the number of indices, used to size draw calls.
func (ib *IndexBuffer) Count() int32 {
	return ib.count
}

// IndexType is the element type passed to DrawElements.
func (ib *IndexBuffer) IndexType() uint32 {
	return UNSIGNED_INT
}
