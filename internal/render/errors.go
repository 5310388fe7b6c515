package render

import "errors"

var (
	ErrMalformedTemplate   = errors.New("malformed template")
	ErrUnresolvedParameter = errors.New("unresolved parameter")
)
