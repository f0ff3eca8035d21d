package store

import "context"

// Logical keys used by the outreach engine. The engine treats the store as
// three JSON documents; backends decide how keys map to physical storage.
const (
	KeyActivities = "outreach:activities"
	KeyMetrics    = "outreach:metrics"
	KeyHistory    = "outreach:recommendation_history"
)

// Store is the key-value persistence contract for the outreach engine.
// Values are JSON documents. Get reports (false, nil) when the key has
// never been written.
type Store interface {
	// Get unmarshals the value at key into target. Returns false when the
	// key does not exist.
	Get(ctx context.Context, key string, target interface{}) (bool, error)

	// Set marshals value as JSON and stores it at key, replacing any
	// previous value.
	Set(ctx context.Context, key string, value interface{}) error
}
