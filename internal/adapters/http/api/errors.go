package api

import (
	"errors"
	"fmt"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
)

// badRequest wraps a body decoding failure.
func badRequest(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrBadRequest, err)
}
