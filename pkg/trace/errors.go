package trace

import (
	"github.com/pkg/errors"

	"github.com/askiada/go-autotrace/pkg/bitmap"
)

var (
	// ErrInvalidInput is returned for a malformed bitmap.
	ErrInvalidInput = bitmap.ErrInvalidInput
	// ErrOptionOutOfRange is returned when an option lies outside its documented range.
	ErrOptionOutOfRange = errors.New("option out of range")
)
