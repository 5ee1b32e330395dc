package names

// Mapper builds and serves the accession to protein-name map used to
// overlay display names on group quantitation outputs.
type Mapper interface {
	// MapNames builds the map from the configured ProteinSummary tables
	// and persists it.
	MapNames() error

	// Open opens the persisted map for lookups.
	Open() error

	// Lookup returns the protein name stored for an accession, or "" when
	// the accession is unknown.
	Lookup(accession string) (string, error)

	// Close releases the underlying store.
	Close() error
}
