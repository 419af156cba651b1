package renderer

import "errors"

var ErrNoIndexBuffer = errors.New("draw needs an index buffer")
