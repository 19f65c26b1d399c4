package driven

// ConfigStore holds the persisted settings as flat dotted keys ("retrieval.top_k").
// Environment overrides are applied above it by the settings service, never stored.
type ConfigStore interface {
	// Get returns the stored value and whether the key exists.
	Get(key string) (any, bool)

	// GetString returns "" for a missing or non-string value.
	GetString(key string) string

	// Set stores a value. File-backed stores persist it immediately.
	Set(key string, value any) error

	// Keys lists the stored keys in sorted order.
	Keys() []string

	// Path names the backing file, or ":memory:".
	Path() string
}
