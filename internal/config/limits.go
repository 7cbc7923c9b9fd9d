package config

const (
	// MaxProfileIDLength is the maximum length for profile ids.
	// Profile ids are shown in the profile panel and used as map keys in
	// the settings store, so they stay short.
	MaxProfileIDLength = 128

	// MaxPathLength is the maximum length for a workspace-relative path or
	// glob key. Matches the common PATH_MAX.
	MaxPathLength = 4096

	// MaxRequestBodyBytes caps JSON request bodies.
	MaxRequestBodyBytes = 1 << 20
)
