// Package store defines persistence-level errors shared by store implementations.
package store

import "github.com/coverscafe/covers-server/internal/errors"

// Sentinel errors returned by store implementations. They alias the domain
// error codes so handlers can map them straight to HTTP statuses.
var (
	ErrNotFound      = errors.ErrNotFound
	ErrAlreadyExists = errors.ErrAlreadyExists
)
