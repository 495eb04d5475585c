package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and clients return these
// (optionally wrapped) so callers can branch with errors.Is without caring
// which backing implementation produced them.
//
// - ErrNotFound: record does not exist in the store
// - ErrUnauthenticated: no principal is attached to the process session
// - ErrExpired: a stored session record is past its lifetime
// - ErrUnavailable: backing service temporarily unreachable
var (
	ErrNotFound        = errors.New("not found")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrExpired         = errors.New("expired")
	ErrUnavailable     = errors.New("unavailable")
)
