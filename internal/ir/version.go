package ir

// Version constants for the persisted schema and the tool.
const (
	// SchemaVersion is the state file schema version.
	// Bump together with a migration in internal/store.
	SchemaVersion = 1

	// ToolVersion is the gate release version.
	ToolVersion = "0.1.0"
)
