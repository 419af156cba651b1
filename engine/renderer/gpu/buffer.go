package gpu

import (
	"fmt"

	"github.com/google/uuid"
)

// buffer owns one driver buffer object. The payload is uploaded once at
// construction; there is no resize, partial update or readback.
type buffer struct {
	ctx    *Context
	target BufferTarget
	kind   ResourceKind
	id     uint32
	size   int
	label  uuid.UUID
}

func newBuffer(ctx *Context, target BufferTarget, kind ResourceKind, data []byte) (buffer, error) {
	b := buffer{ctx: ctx, target: target, kind: kind, size: len(data)}
	if len(data) == 0 {
		return b, fmt.Errorf("%s: %w", kind, ErrEmptyBuffer)
	}

	d := ctx.driver
	if err := ctx.Call("glGenBuffers", func() { b.id = d.GenBuffer() }); err != nil {
		return b, err
	}
	b.label = ctx.track(kind, b.id)

	bt := &batch{ctx: ctx}
	bt.call("glBindBuffer", func() { d.BindBuffer(target, b.id) })
	bt.call("glBufferData", func() { d.BufferData(target, data, StaticDraw) })
	if bt.err != nil {
		_ = b.Destroy()
		return b, bt.err
	}
	return b, nil
}

// Bind makes this buffer the active one for its target.
func (b *buffer) Bind() error {
	if b.id == 0 {
		return ErrDestroyed
	}
	d := b.ctx.driver
	return b.ctx.Call("glBindBuffer", func() { d.BindBuffer(b.target, b.id) })
}

// Unbind clears the binding of this buffer's target.
func (b *buffer) Unbind() error {
	d := b.ctx.driver
	return b.ctx.Call("glBindBuffer", func() { d.BindBuffer(b.target, 0) })
}

// Destroy releases the driver handle. Destroying twice is a no-op.
func (b *buffer) Destroy() error {
	if b.id == 0 {
		return nil
	}
	d := b.ctx.driver
	id := b.id
	err := b.ctx.Call("glDeleteBuffers", func() { d.DeleteBuffer(id) })
	b.ctx.untrack(b.kind, id)
	b.id = 0
	return err
}

func (b *buffer) Handle() uint32 {
	return b.id
}

// Size is the payload size in bytes.
func (b *buffer) Size() int {
	return b.size
}

func (b *buffer) Label() uuid.UUID {
	return b.label
}
