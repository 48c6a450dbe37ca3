package search

import "errors"

// Common errors returned by the search engine.
var (
	// ErrInvalidToken indicates the target code is not 6 to 8 decimal digits.
	ErrInvalidToken = errors.New("search: invalid target token")
	// ErrInvalidRequest indicates a request field is out of range.
	ErrInvalidRequest = errors.New("search: invalid request")
	// ErrConfiguration indicates the token generator rejected its parameters.
	ErrConfiguration = errors.New("search: generator configuration failed")
	// ErrRangeOverflow indicates a partition start does not fit in a Secret.
	ErrRangeOverflow = errors.New("search: partition exceeds secret range")
	// ErrNilSearcher indicates a nil searcher was used.
	ErrNilSearcher = errors.New("search: searcher is nil")
)
