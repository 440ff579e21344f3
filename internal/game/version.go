package game

// Version constants for the persisted snapshot.
const (
	// SnapshotVersion is the snapshot schema version written with every save.
	SnapshotVersion = "1"

	// EngineVersion is the minerush engine version.
	EngineVersion = "0.1.0"
)
