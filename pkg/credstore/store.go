package credstore

import "context"

// Keys of the persisted credential pair. The two entries are written
// independently; a crash between writes can leave one without the other,
// and hydration treats such a partial pair as "no session".
const (
	KeyAuthToken = "authToken"
	KeyUser      = "user"
)

// Store is durable key-value storage for the credential pair.
type Store interface {
	// Get returns the stored value. A missing key is (``, false, nil),
	// not an error.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	// RemoveMany deletes the given keys; missing keys are skipped.
	RemoveMany(ctx context.Context, keys ...string) error
}
