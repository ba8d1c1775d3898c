package chain

import "errors"

// ErrNotFound is returned when the node has no data for a request.
var ErrNotFound = errors.New("not found")
