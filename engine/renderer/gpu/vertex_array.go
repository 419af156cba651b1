package gpu

import (
	"fmt"

	"github.com/google/uuid"
)

// VertexArray owns a vertex array object: the attribute configuration and
// the index buffer binding used by draws.
type VertexArray struct {
	ctx   *Context
	id    uint32
	label uuid.UUID
	index *IndexBuffer
}

func NewVertexArray(ctx *Context) (*VertexArray, error) {
	va := &VertexArray{ctx: ctx}
	d := ctx.driver
	if err := ctx.Call("glGenVertexArrays", func() { va.id = d.GenVertexArray() }); err != nil {
		return nil, err
	}
	va.label = ctx.track(ResourceVertexArray, va.id)
	return va, nil
}

func (va *VertexArray) Bind() error {
	if va.id == 0 {
		return ErrDestroyed
	}
	d := va.ctx.driver
	return va.ctx.Call("glBindVertexArray", func() { d.BindVertexArray(va.id) })
}

func (va *VertexArray) Unbind() error {
	d := va.ctx.driver
	return va.ctx.Call("glBindVertexArray", func() { d.BindVertexArray(0) })
}

// AddBuffer binds vb into this array and points attribute i of the layout at
// its offset within each vertex. Nothing checks that the layout matches the
// data in vb: a wrong stride or offset makes attributes bleed across vertices.
func (va *VertexArray) AddBuffer(vb *VertexBuffer, layout *VertexLayout) error {
	if layout.Len() == 0 {
		return ErrEmptyLayout
	}
	if err := va.Bind(); err != nil {
		return err
	}
	if err := vb.Bind(); err != nil {
		return err
	}

	d := va.ctx.driver
	stride := layout.Stride()
	var offset uintptr
	for i, a := range layout.attribs {
		index := uint32(i)
		attrOffset := offset
		bt := &batch{ctx: va.ctx}
		bt.call("glEnableVertexAttribArray", func() { d.EnableVertexAttribArray(index) })
		bt.call("glVertexAttribPointer", func() {
			d.VertexAttribPointer(index, a.Count, a.Type.GLType(), a.Normalized, stride, attrOffset)
		})
		if bt.err != nil {
			return fmt.Errorf("attribute %d (%s x%d): %w", i, a.Type, a.Count, bt.err)
		}
		offset += uintptr(a.ByteSize())
	}
	return nil
}

// SetIndexBuffer records ib in this array's state so draws only need the
// array bound.
func (va *VertexArray) SetIndexBuffer(ib *IndexBuffer) error {
	if err := va.Bind(); err != nil {
		return err
	}
	if err := ib.Bind(); err != nil {
		return err
	}
	va.index = ib
	return nil
}

// IndexBuffer returns the buffer given to SetIndexBuffer, or nil.
func (va *VertexArray) IndexBuffer() *IndexBuffer {
	return va.index
}

// Destroy releases the driver handle. Destroying twice is a no-op.
func (va *VertexArray) Destroy() error {
	if va.id == 0 {
		return nil
	}
	d := va.ctx.driver
	id := va.id
	err := va.ctx.Call("glDeleteVertexArrays", func() { d.DeleteVertexArray(id) })
	va.ctx.untrack(ResourceVertexArray, id)
	va.id = 0
	va.index = nil
	return err
}

func (va *VertexArray) Handle() uint32 {
	return va.id
}

func (va *VertexArray) Label() uuid.UUID {
	return va.label
}
