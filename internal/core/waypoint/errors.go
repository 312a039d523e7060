package waypoint

import "errors"

var (
	ErrBadMagic    = errors.New("waypoint file: bad magic number")
	ErrCorruptFile = errors.New("waypoint file: corrupt or truncated")
)
