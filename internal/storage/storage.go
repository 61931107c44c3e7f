// Package storage provides the persistence gateway behind the board,
// message and user services: a durable gorm-backed implementation and an
// in-process memory implementation with identical observable behavior.
package storage

import (
	"errors"
	"fmt"
)

// ErrUnavailable wraps backend connectivity failures. Callers may retry;
// the memory gateway never produces it.
var ErrUnavailable = errors.New("storage: backend unavailable")

func wrapBackend(err error) error {
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
