// Package provider holds the outbound HTTP clients for third-party content
// generation: AI roasts and memes. Every call is a single attempt with a
// fixed timeout; failures surface to the user, they are never retried.
package provider

import "errors"

var (
	// ErrTimeout is returned when a provider did not answer in time.
	ErrTimeout = errors.New("content provider timed out")
	// ErrStatus is returned when a provider answered with a non-success
	// status or an unusable body.
	ErrStatus = errors.New("content provider request failed")
)
