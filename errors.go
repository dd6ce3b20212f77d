package parallel

import "errors"

const Namespace = "parallel"

var (
	ErrWorkerPanicked = errors.New(Namespace + ": worker panicked")
	ErrInvalidConfig  = errors.New(Namespace + ": invalid configuration")
)
