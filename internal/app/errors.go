package service

import "errors"

// Sentinel kinds returned by the service.
var (
	ErrNotStarted   = errors.New("service not started")
	ErrBackpressure = errors.New("analysis queue is full")
	ErrTimeout      = errors.New("analysis timed out")
)
