package service

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates the requested resource was not found.
var ErrNotFound = errors.New("not found")

// ValidationError represents a bad-request condition (HTTP 400).
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// DispatchError is a non-2xx answer from Discord's message endpoint.
type DispatchError struct {
	Status int
	Body   string
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("discord rejected message: status %d: %s", e.Status, e.Body)
}

// GuildLookupError is a failure fetching guild metadata before a send.
// Status is Discord's answer, or 0 when the request did not complete.
type GuildLookupError struct {
	GuildID string
	Status  int
	Err     error
}

func (e *GuildLookupError) Error() string {
	return fmt.Sprintf("fetch guild %s: %v", e.GuildID, e.Err)
}

func (e *GuildLookupError) Unwrap() error { return e.Err }
