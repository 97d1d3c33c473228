package partkv

import (
	"errors"

	"github.com/Voskan/partkv/internal/ops"
	"github.com/Voskan/partkv/internal/partition"
)

// Status is the result taxonomy returned by Read/Write/Scan: Success,
// NotFound, Error, and the transient Pending used by a fan-out Scan
// before its coordinator finalizes.
type Status = ops.Status

const (
	StatusPending  = ops.StatusPending
	StatusSuccess  = ops.StatusSuccess
	StatusNotFound = ops.StatusNotFound
	StatusError    = ops.StatusError
)

// Sentinel errors callers can match with errors.Is.
var (
	ErrGraphEmpty            = partition.ErrGraphEmpty
	ErrTooFewVertices        = partition.ErrTooFewVertices
	ErrPartitionerFailed     = partition.ErrPartitionerFail
	ErrInvalidPartitionCount = errors.New("partkv: partition count must be >= 1")
	ErrInvalidHashFunc       = errors.New("partkv: hash function must not be nil")
	ErrClosed                = errors.New("partkv: store is closed")
)
