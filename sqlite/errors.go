package sqlite

import "errors"

// Structural decode errors. All of these are fatal for the operation that
// hits them; only the suspicious-overflow-pointer case in cell.go is
// recovered locally.
var (
	ErrInvalidHeader   = errors.New("malformed database header")
	ErrInvalidPageNo   = errors.New("invalid page number")
	ErrUnknownPageType = errors.New("unknown b-tree page type")
	ErrPageBounds      = errors.New("read beyond page bounds")
	ErrBadVarint       = errors.New("varint runs past end of buffer")
	ErrBadSerialType   = errors.New("unrecognized record serial type")
	ErrInvalidText     = errors.New("text value is not valid UTF-8")
	ErrRecordTruncated = errors.New("record shorter than its header declares")
	ErrOverflowChain   = errors.New("overflow chain ends before declared payload size")
	ErrTreeTooDeep     = errors.New("b-tree depth limit exceeded")
)

// Query-level errors.
var (
	ErrTableNotFound    = errors.New("no such table")
	ErrColumnNotFound   = errors.New("no such column")
	ErrUnsupportedQuery = errors.New("unsupported query shape")
)
