package ir

// Version constants stamped on stored runs.
const (
	// SchemaVersion is the version of the instance record layout.
	SchemaVersion = "1"

	// GeneratorVersion is the scenesmith generator version.
	GeneratorVersion = "0.1.0"
)
