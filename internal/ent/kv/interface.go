package kv

// KeyVal is a key-value store for accession to protein-name lookups.
type KeyVal interface {
	// Open opens a key-value store.
	Open() error

	// Close closes a key-value store.
	Close() error

	// SetRecords stores a batch of key-value pairs.
	SetRecords(recs []Record) error

	// GetValue returns the value stored for key, or nil when the key is
	// absent.
	GetValue(key []byte) ([]byte, error)
}
