package ir

// Version constants for the analysis result schema and engine.
const (
	// SchemaVersion is the version of persisted and serialized run results.
	SchemaVersion = "1"

	// EngineVersion is the analysis engine version.
	EngineVersion = "0.3.0"
)
