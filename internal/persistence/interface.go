package persistence

// Store persists opaque session snapshots keyed by session. The session
// engine owns the encoding; the store only moves bytes.
type Store interface {
	// Save writes or replaces the snapshot for the key.
	Save(key string, state []byte) error
	// Load returns the snapshot for the key and whether one exists.
	Load(key string) ([]byte, bool, error)
	// Clear removes the snapshot for the key. Clearing a missing key is
	// not an error.
	Clear(key string) error
}
