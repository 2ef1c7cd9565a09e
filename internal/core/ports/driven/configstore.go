package driven

// ConfigStore provides access to application settings.
// Implementations handle persistence (e.g., TOML files) and type conversion.
type ConfigStore interface {
	// Get retrieves a value by key with an existence flag.
	Get(key string) (any, bool)

	// GetString retrieves a string value, empty when absent.
	GetString(key string) string

	// GetInt retrieves an integer value, zero when absent.
	GetInt(key string) int

	// GetBool retrieves a boolean value, false when absent.
	GetBool(key string) bool

	// GetStringSlice retrieves a string slice value, nil when absent.
	GetStringSlice(key string) []string

	// Set stores a value and persists it immediately.
	Set(key string, value any) error

	// Load reads configuration from storage.
	Load() error

	// Path returns the configuration file path.
	Path() string
}
