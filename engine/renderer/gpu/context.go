package gpu

import (
	"path/filepath"
	"runtime"
	"sort"

	"github.com/google/uuid"
	"github.com/spaghettifunk/quad/engine/core"
)

// glGetError keeps returning an error when no context is current on some
// drivers, so draining stops after this many flags.
const maxDrainedErrors = 32

type ResourceKind uint8

const (
	ResourceVertexBuffer ResourceKind = iota
	ResourceIndexBuffer
	ResourceVertexArray
	ResourceProgram
)

func (k ResourceKind) String() string {
	switch k {
	case ResourceVertexBuffer:
		return "vertex buffer"
	case ResourceIndexBuffer:
		return "index buffer"
	case ResourceVertexArray:
		return "vertex array"
	case ResourceProgram:
		return "shader program"
	}
	return "unknown"
}

// Resource is a live driver handle owned by one wrapper.
type Resource struct {
	Label  uuid.UUID
	Kind   ResourceKind
	Handle uint32
}

type resourceKey struct {
	kind   ResourceKind
	handle uint32
}

// Context is the capability every wrapper is given to reach the driver. It
// replaces implicit global state: a wrapper can only bind, upload or draw
// through the Context it was created with.
type Context struct {
	driver    Driver
	debug     bool
	resources map[resourceKey]Resource
}

type ContextOption func(*Context)

// WithDebug turns error checking around every driver call on or off.
func WithDebug(debug bool) ContextOption {
	return func(c *Context) {
		c.debug = debug
	}
}

// NewContext wraps a driver. Debug checking is on unless disabled with
// WithDebug(false).
func NewContext(driver Driver, opts ...ContextOption) *Context {
	c := &Context{
		driver:    driver,
		debug:     true,
		resources: make(map[resourceKey]Resource),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Context) Driver() Driver {
	return c.driver
}

func (c *Context) Debug() bool {
	return c.debug
}

// Call runs one driver call. In debug mode the error queue is drained before
// and after fn; any flag raised by fn is logged and returned as a *CallError
// carrying the call text and the location of the code that issued it.
func (c *Context) Call(call string, fn func()) error {
	return c.call(2, call, fn)
}

// call reports the location skip frames above itself.
func (c *Context) call(skip int, call string, fn func()) error {
	if !c.debug {
		fn()
		return nil
	}

	c.drainErrors()
	fn()
	codes := c.drainErrors()
	if len(codes) == 0 {
		return nil
	}

	err := &CallError{Codes: codes, Call: call}
	if _, file, line, ok := runtime.Caller(skip); ok {
		err.File = filepath.Base(file)
		err.Line = line
	}
	core.LogError(err.Error())
	return err
}

func (c *Context) drainErrors() []uint32 {
	var codes []uint32
	for i := 0; i < maxDrainedErrors; i++ {
		code := c.driver.GetError()
		if code == NO_ERROR {
			break
		}
		codes = append(codes, code)
	}
	return codes
}

// batch issues a sequence of driver calls, skipping the rest after the first
// failure.
type batch struct {
	ctx *Context
	err error
}

func (b *batch) call(call string, fn func()) {
	if b.err == nil {
		b.err = b.ctx.call(2, call, fn)
	}
}

// BoundBuffer asks the driver which buffer is bound to target.
func (c *Context) BoundBuffer(target BufferTarget) uint32 {
	return uint32(c.driver.GetInteger(target.binding()))
}

// BoundVertexArray asks the driver which vertex array is bound.
func (c *Context) BoundVertexArray() uint32 {
	return uint32(c.driver.GetInteger(VERTEX_ARRAY_BINDING))
}

// BoundProgram asks the driver which program is in use.
func (c *Context) BoundProgram() uint32 {
	return uint32(c.driver.GetInteger(CURRENT_PROGRAM))
}

func (c *Context) track(kind ResourceKind, handle uint32) uuid.UUID {
	r := Resource{
		Label:  uuid.New(),
		Kind:   kind,
		Handle: handle,
	}
	c.resources[resourceKey{kind, handle}] = r
	core.LogDebug("acquired %s %d (%s)", kind, handle, r.Label)
	return r.Label
}

func (c *Context) untrack(kind ResourceKind, handle uint32) {
	key := resourceKey{kind, handle}
	if r, ok := c.resources[key]; ok {
		core.LogDebug("released %s %d (%s)", kind, handle, r.Label)
		delete(c.resources, key)
	}
}

// Live returns the resources acquired through this context and not yet
// destroyed, ordered by kind then handle.
func (c *Context) Live() []Resource {
	live := make([]Resource, 0, len(c.resources))
	for _, r := range c.resources {
		live = append(live, r)
	}
	sort.Slice(live, func(i, j int) bool {
		if live[i].Kind != live[j].Kind {
			return live[i].Kind < live[j].Kind
		}
		return live[i].Handle < live[j].Handle
	})
	return live
}

// ReportLeaks logs every live resource and returns how many there were.
func (c *Context) ReportLeaks() int {
	live := c.Live()
	for _, r := range live {
		core.LogWarn("leaked %s %d (%s)", r.Kind, r.Handle, r.Label)
	}
	return len(live)
}
