// Package queue defines the upstream message source the ingestion loop
// consumes from.
package queue

import (
	"context"
	"errors"
)

// Source yields raw reading payloads one message at a time. Receive blocks
// until a payload arrives, an error occurs or ctx is cancelled, in which
// case it returns ctx.Err().
type Source interface {
	Receive(ctx context.Context) ([]byte, error)
}

// ErrClosed is returned by sources whose underlying client has shut down.
var ErrClosed = errors.New("queue: source closed")

type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// Transient marks err as a per-message failure the consumer can skip.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// IsTransient reports whether err was marked by Transient
func IsTransient(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}
