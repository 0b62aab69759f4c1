package store

// Backend is the contract every storage implementation satisfies. Operations
// are atomic with respect to each other for a single backend instance: no
// caller observes a partially applied effect of a concurrent operation.
//
// txnID is a per-request correlation token used in logs and carries no
// semantic weight.
type Backend interface {
	// Create inserts key→value. It fails with a KeyConflictError if the key
	// is already present; it never silently overwrites.
	Create(key string, value Value, txnID string) error

	// Replace inserts or overwrites key→value unconditionally. It returns
	// the previous value and whether one existed, so the caller can
	// distinguish a create from an update. Replacing an absent key is not
	// an error; it is logged as a notable event.
	Replace(key string, value Value, txnID string) (prev Value, replaced bool, err error)

	// Delete removes the key and returns the value that was deleted. It
	// fails with a KeyNotFoundError if the key is absent.
	Delete(key string, txnID string) (Value, error)

	// Get returns the current value for the key, or a KeyNotFoundError.
	Get(key string, txnID string) (Value, error)

	// Close releases any resources held by the backend.
	Close() error
}
