package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and infrastructure layers
// return these (optionally wrapped) so handlers can translate them into HTTP
// statuses without knowing backend specifics.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entity does not exist in store
// - ErrConflict: entity conflicts with stored state
// - ErrReadOnly: store does not accept mutations
// - ErrUnavailable: service or resource temporarily unavailable
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrReadOnly    = errors.New("read-only store")
	ErrUnavailable = errors.New("unavailable")
)
