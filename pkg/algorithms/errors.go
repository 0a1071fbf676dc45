package algorithms

import "errors"

var (
	// ErrInvalidPartition is returned when a set of cells does not cover every
	// node exactly once.
	ErrInvalidPartition = errors.New("invalid partition")

	// ErrUnknownPartitioner is returned by NewPartitioner for unsupported names.
	ErrUnknownPartitioner = errors.New("unknown partitioner")
)
