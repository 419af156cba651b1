package core

import (
	"errors"
)

var (
	ErrWindowCreation = errors.New("window or context creation failed")
	ErrEventNotReady  = errors.New("event system not initialized")
	ErrEngineNotReady = errors.New("engine is not initialized")
	ErrUnknown        = errors.New("unknown")
)
