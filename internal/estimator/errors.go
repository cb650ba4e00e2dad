package estimator

import "errors"

var (
	ErrFloorOutOfRange = errors.New("floor index out of range")
	ErrRoomOutOfRange  = errors.New("room index out of range")
	ErrInvalidCount    = errors.New("count must be at least 1")
)
