package classifier

import (
	"errors"
	"fmt"
)

// ErrOutputMismatch means the model produced a vector whose width does not
// match Categories.
var ErrOutputMismatch = errors.New("model output does not match category list")

// ErrClosed is returned by Predict after Close.
var ErrClosed = errors.New("model closed")

func outputMismatch(got int) error {
	return fmt.Errorf("%w: got %d values, want %d", ErrOutputMismatch, got, NumCategories)
}
