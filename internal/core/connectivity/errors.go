package connectivity

import "errors"

var (
	ErrAborted         = errors.New("connectivity build aborted by progress callback")
	ErrUnknownWaypoint = errors.New("unknown waypoint")
	ErrNotLinkable     = errors.New("waypoint kind is not linked by the builder")
	ErrOracle          = errors.New("traversability oracle failed")
)
