package config

const (
	// DefaultMaxRedirects matches the browser redirect limit
	DefaultMaxRedirects = 20
	// DefaultUserAgent is sent unless the caller overrides it
	DefaultUserAgent = "xhrkit"
)

// DefaultConfig returns a configuration with default values. Pointer fields
// stay nil so Merge can tell explicit settings from defaults.
func DefaultConfig() *Config {
	return &Config{
		SyncWorker: SyncWorkerProcess,
		UserAgent:  DefaultUserAgent,
	}
}

// IsDefault returns true if the config matches defaults
func (c *Config) IsDefault() bool {
	defaults := DefaultConfig()
	return c.TLS.IsZero() &&
		c.GetRejectUnauthorized() == defaults.GetRejectUnauthorized() &&
		c.GetAutoUnref() == defaults.GetAutoUnref() &&
		c.GetMaxRedirects() == defaults.GetMaxRedirects() &&
		c.GetAllowFileSystemResources() == defaults.GetAllowFileSystemResources() &&
		c.GetDisableHeaderCheck() == defaults.GetDisableHeaderCheck() &&
		c.Origin == defaults.Origin &&
		c.GetSyncWorker() == defaults.GetSyncWorker() &&
		c.GetUserAgent() == defaults.GetUserAgent() &&
		c.Proxy == defaults.Proxy
}
