package game

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDimension = errors.New("invalid board dimension")
	ErrInvalidGoalWidth = errors.New("invalid goal width")
	ErrIllegalMove      = errors.New("illegal move")
)

// ConfigError reports a rejected board configuration. It unwraps to
// ErrInvalidDimension or ErrInvalidGoalWidth.
type ConfigError struct {
	Dimensions Dimensions
	Reason     string
	Err        error
}

func (e *ConfigError) Error() string {
	d := e.Dimensions
	return fmt.Sprintf("%v: %s (width=%d height=%d goal=%d)", e.Err, e.Reason, d.Width, d.Height, d.GoalWidth)
}

func (e *ConfigError) Unwrap() error { return e.Err }
