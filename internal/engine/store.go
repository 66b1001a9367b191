// Package engine implements the local key-value store that backs the
// dashboard's moderation state and settings.
package engine

import "github.com/techwomen-moldova/mentordesk/internal/common"

// ErrKeyNotFound is returned when a requested key does not exist.
var ErrKeyNotFound = common.ErrKeyNotFound

// Store is the contract both the embedded MemStore and the remote SDK client satisfy.
type Store interface {
	// Get retrieves the value stored under key.
	Get(key string) (any, error)
	// Set stores val under key, replacing any previous value.
	Set(key string, val any) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
	// Keys lists every stored key.
	Keys() ([]string, error)
}
