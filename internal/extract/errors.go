package extract

import (
	"errors"
	"fmt"
)

// ErrUnknownFormat is matched by errors.Is for every *UnknownFormatError.
var ErrUnknownFormat = errors.New("unknown format")

// UnknownFormatError is returned when a forced format id is not registered.
type UnknownFormatError struct {
	ID string
}

func (e *UnknownFormatError) Error() string {
	return fmt.Sprintf("unknown format %q", e.ID)
}

func (e *UnknownFormatError) Is(target error) bool {
	return target == ErrUnknownFormat
}
