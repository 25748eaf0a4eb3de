package adaptive

import "errors"

var (
	// ErrShapeMismatch is returned at construction when the encoder layout and
	// the agent's state/action sizes disagree.
	ErrShapeMismatch = errors.New("state/action shape mismatch")

	// ErrStateSize is returned when a state vector has the wrong length.
	ErrStateSize = errors.New("state vector has wrong length")

	// ErrWeightsShape is returned when a weights file was produced by a
	// different network configuration.
	ErrWeightsShape = errors.New("weights file does not match network shape")

	// ErrInvalidAction is returned for actions outside [0, action size).
	ErrInvalidAction = errors.New("invalid action")

	// ErrInvalidBucket is returned for an unknown chapter or difficulty.
	ErrInvalidBucket = errors.New("invalid chapter/difficulty bucket")
)
