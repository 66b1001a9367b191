package sdk

import (
	"context"
	"time"

	"github.com/techwomen-moldova/mentordesk/internal/engine"
)

// Open returns the state store for the dashboard. With a remote address it
// connects to a mentordesk daemon; otherwise it opens the embedded engine in
// dataDir. Callers don't care which one they got.
func Open(ctx context.Context, remoteAddr, dataDir string, timeout time.Duration) (KeyValueStore, error) {
	if remoteAddr != "" {
		return Connect(ctx, remoteAddr, timeout)
	}
	return OpenLocal(dataDir)
}

// OpenLocal opens the embedded engine persisted in dataDir.
func OpenLocal(dataDir string) (*engine.MemStore, error) {
	p, err := engine.NewPersistence(dataDir)
	if err != nil {
		return nil, err
	}

	data, err := p.Load()
	if err != nil {
		return nil, err
	}
	return engine.NewMemStore(data, p), nil
}
