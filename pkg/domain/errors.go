package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidConfiguration is returned when a run or definition is rejected
// before it starts. Use errors.Is to detect it through wrappers.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// ErrInvariantViolation signals a broken precondition inside the engine.
// It is a programming error, never a user-recoverable condition.
var ErrInvariantViolation = errors.New("invariant violation")

// ErrRunActive is returned when an operation requires an idle simulator.
var ErrRunActive = errors.New("simulation run is active")

// ErrNotRunning is returned when an operation requires a running simulator.
var ErrNotRunning = errors.New("simulation is not running")

// ErrNotFound is returned by definition stores when an id is unknown.
var ErrNotFound = errors.New("definition not found")

// ConfigError describes why a configuration was rejected.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfiguration }

// InvariantViolation reports which engine operation found a broken invariant.
type InvariantViolation struct {
	Op     string
	Detail string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("invariant violation in %s: %s", e.Op, e.Detail)
}

func (e *InvariantViolation) Unwrap() error { return ErrInvariantViolation }
