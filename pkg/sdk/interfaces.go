package sdk

import (
	"context"

	"github.com/techwomen-moldova/mentordesk/internal/common"
	"github.com/techwomen-moldova/mentordesk/pkg/schema"
)

// ErrKeyNotFound is returned when a requested key does not exist.
var ErrKeyNotFound = common.ErrKeyNotFound

// --- Functional Interfaces (Interface Segregation) ---

// KVReader defines the basic read operation for the store.
type KVReader interface {
	Get(key string) (any, error)
}

// KVWriter defines the basic write and delete operations for the store.
type KVWriter interface {
	Set(key string, val any) error
	Delete(key string) error
}

// KeyEnumeration allows discovering stored keys.
type KeyEnumeration interface {
	Keys() ([]string, error)
}

// --- Composite Interfaces ---

// KeyValueStore is the get/set/clear contract injected into the moderation
// tracker and the settings manager. Both the embedded engine and the remote
// Client implement it.
type KeyValueStore interface {
	KVReader
	KVWriter
	KeyEnumeration
}

// ProfilePublisher applies add/update/delete actions to a profile collection.
type ProfilePublisher interface {
	Apply(ctx context.Context, req schema.PublishRequest) (*schema.PublishResult, error)
}
