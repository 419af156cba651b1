package gpu

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyBuffer           = errors.New("buffer data is empty")
	ErrUnsupportedAttribType = errors.New("unsupported vertex attribute type")
	ErrInvalidAttribCount    = errors.New("vertex attribute count must be positive")
	ErrEmptyLayout           = errors.New("vertex layout has no attributes")
	ErrDestroyed             = errors.New("resource already destroyed")
	ErrShaderNotLinked       = errors.New("shader program is not linked")
	ErrNoShaderPaths         = errors.New("shader was not created from files")
)

// CallError reports the error flags raised by one driver call.
type CallError struct {
	Codes []uint32
	Call  string
	File  string
	Line  int
}

func (e *CallError) Error() string {
	names := make([]string, len(e.Codes))
	for i, c := range e.Codes {
		names[i] = fmt.Sprintf("0x%04X %s", c, ErrorName(c))
	}
	return fmt.Sprintf("opengl error: %s [%s] [%s] [%d]", strings.Join(names, ", "), e.Call, e.File, e.Line)
}

// Has reports whether the call raised the given error code.
func (e *CallError) Has(code uint32) bool {
	for _, c := range e.Codes {
		if c == code {
			return true
		}
	}
	return false
}

type CompileError struct {
	Stage ShaderStage
	Log   string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("failed to compile %s shader: %s", e.Stage, strings.TrimSpace(e.Log))
}

// LinkError is returned when a program fails to link, or links but does not
// pass validation.
type LinkError struct {
	Validate bool
	Log      string
}

func (e *LinkError) Error() string {
	step := "link"
	if e.Validate {
		step = "validate"
	}
	return fmt.Sprintf("failed to %s shader program: %s", step, strings.TrimSpace(e.Log))
}

// Must panics if err is not nil. It is the abort path for callers that treat
// driver errors as fatal programming mistakes.
func Must(err error) {
	if err != nil {
		panic(err)
	}
}
