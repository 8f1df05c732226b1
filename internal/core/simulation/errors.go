package simulation

import "errors"

var (
	ErrLoopStopped     = errors.New("simulation loop is not running")
	ErrLoopRunning     = errors.New("simulation loop is already running")
	ErrInvalidInterval = errors.New("interval must be positive")
)
