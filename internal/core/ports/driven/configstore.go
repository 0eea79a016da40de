package driven

// ConfigStore holds flat, dot-keyed configuration values such as
// "analysis.default_provider" or "providers.openai.api_key".
//
// Values may come from more than one layer (a TOML file, the environment);
// reads see the winning layer, writes go to the persistent one.
type ConfigStore interface {
	// Get returns the raw value for key and whether it is set.
	Get(key string) (any, bool)

	// GetString returns the value for key, or "" if unset or not a string.
	GetString(key string) string

	// GetInt returns the value for key, or 0 if unset or not numeric.
	GetInt(key string) int

	// GetBool returns the value for key, or false if unset or not a boolean.
	GetBool(key string) bool

	// GetStringSlice returns the value for key, or nil if unset or not a list.
	GetStringSlice(key string) []string

	// Set stores a value and persists it immediately.
	Set(key string, value any) error

	// Save writes the persistent layer to storage.
	Save() error

	// Load rereads the persistent layer from storage.
	Load() error

	// Path returns where the persistent layer lives.
	Path() string
}
