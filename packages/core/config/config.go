package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Sync worker modes.
const (
	SyncWorkerProcess = "process"
	SyncWorkerInline  = "inline"
)

// TLS holds client TLS material. Paths point to PEM files.
type TLS struct {
	CertFile   string   `json:"certFile,omitempty" yaml:"certFile,omitempty" split_words:"true"`
	KeyFile    string   `json:"keyFile,omitempty" yaml:"keyFile,omitempty" split_words:"true"`
	CAFile     string   `json:"caFile,omitempty" yaml:"caFile,omitempty" split_words:"true"`
	Passphrase string   `json:"passphrase,omitempty" yaml:"passphrase,omitempty"`
	Ciphers    []string `json:"ciphers,omitempty" yaml:"ciphers,omitempty"`
}

// IsZero reports whether no TLS material is configured.
func (t TLS) IsZero() bool {
	return t.CertFile == "" && t.KeyFile == "" && t.CAFile == "" && t.Passphrase == "" && len(t.Ciphers) == 0
}

// Config represents the request object configuration.
type Config struct {
	TLS                      TLS    `json:"tls,omitempty" yaml:"tls,omitempty"`
	RejectUnauthorized       *bool  `json:"rejectUnauthorized,omitempty" yaml:"rejectUnauthorized,omitempty" split_words:"true"`
	AutoUnref                *bool  `json:"autoUnref,omitempty" yaml:"autoUnref,omitempty" split_words:"true"`
	MaxRedirects             *int   `json:"maxRedirects,omitempty" yaml:"maxRedirects,omitempty" split_words:"true"`
	AllowFileSystemResources *bool  `json:"allowFileSystemResources,omitempty" yaml:"allowFileSystemResources,omitempty" split_words:"true"`
	Origin                   string `json:"origin,omitempty" yaml:"origin,omitempty"`
	SyncWorker               string `json:"syncWorker,omitempty" yaml:"syncWorker,omitempty" split_words:"true"`
	UserAgent                string `json:"userAgent,omitempty" yaml:"userAgent,omitempty" split_words:"true"`
	DisableHeaderCheck       *bool  `json:"disableHeaderCheck,omitempty" yaml:"disableHeaderCheck,omitempty" split_words:"true"`
	Proxy                    string `json:"proxy,omitempty" yaml:"proxy,omitempty"`
}

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool {
	return &b
}

// IntPtr returns a pointer to i.
func IntPtr(i int) *int {
	return &i
}

// getBool returns the value of a bool pointer, or the default if nil
func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// GetRejectUnauthorized returns whether server certificates are verified, defaulting to true
func (c *Config) GetRejectUnauthorized() bool {
	return getBool(c.RejectUnauthorized, true)
}

// GetAutoUnref returns whether idle connections are dropped after each request, defaulting to false
func (c *Config) GetAutoUnref() bool {
	return getBool(c.AutoUnref, false)
}

// GetAllowFileSystemResources returns whether file: URLs may be loaded, defaulting to true
func (c *Config) GetAllowFileSystemResources() bool {
	return getBool(c.AllowFileSystemResources, true)
}

// GetDisableHeaderCheck returns whether forbidden headers may be set, defaulting to false
func (c *Config) GetDisableHeaderCheck() bool {
	return getBool(c.DisableHeaderCheck, false)
}

// GetMaxRedirects returns the redirect budget, defaulting to 20 and never negative
func (c *Config) GetMaxRedirects() int {
	if c.MaxRedirects == nil {
		return DefaultMaxRedirects
	}
	if *c.MaxRedirects < 0 {
		return 0
	}
	return *c.MaxRedirects
}

// GetSyncWorker returns the synchronous worker mode, defaulting to process
func (c *Config) GetSyncWorker() string {
	if c.SyncWorker == "" {
		return SyncWorkerProcess
	}
	return c.SyncWorker
}

// GetUserAgent returns the default User-Agent header
func (c *Config) GetUserAgent() string {
	if c.UserAgent == "" {
		return DefaultUserAgent
	}
	return c.UserAgent
}

// Validate checks values that cannot be defaulted silently.
func (c *Config) Validate() error {
	switch c.SyncWorker {
	case "", SyncWorkerProcess, SyncWorkerInline:
	default:
		return fmt.Errorf("invalid syncWorker %q (expected %q or %q)", c.SyncWorker, SyncWorkerProcess, SyncWorkerInline)
	}
	if (c.TLS.CertFile == "") != (c.TLS.KeyFile == "") {
		return fmt.Errorf("tls.certFile and tls.keyFile must be set together")
	}
	return nil
}

// ConfigFilenames contains the possible config file names
var ConfigFilenames = []string{
	".xhrkit.json",
	"xhrkit.json",
	".xhrkit.yaml",
	".xhrkit.yml",
}

// LoadConfig loads configuration from the specified path or searches for config files
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		return loadConfigFromFile(path)
	}

	return FindAndLoadConfig(".")
}

// FindAndLoadConfig searches for a config file in the given directory
func FindAndLoadConfig(dir string) (*Config, error) {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return loadConfigFromFile(configPath)
		}
	}

	return DefaultConfig(), nil
}

func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, config)
	default:
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return config, nil
}

// Merge merges another config into this one, with other taking precedence
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	result := *c
	result.TLS.Ciphers = append([]string(nil), c.TLS.Ciphers...)

	if other.TLS.CertFile != "" {
		result.TLS.CertFile = other.TLS.CertFile
	}
	if other.TLS.KeyFile != "" {
		result.TLS.KeyFile = other.TLS.KeyFile
	}
	if other.TLS.CAFile != "" {
		result.TLS.CAFile = other.TLS.CAFile
	}
	if other.TLS.Passphrase != "" {
		result.TLS.Passphrase = other.TLS.Passphrase
	}
	if len(other.TLS.Ciphers) > 0 {
		result.TLS.Ciphers = append([]string(nil), other.TLS.Ciphers...)
	}
	if other.Origin != "" {
		result.Origin = other.Origin
	}
	if other.SyncWorker != "" {
		result.SyncWorker = other.SyncWorker
	}
	if other.UserAgent != "" {
		result.UserAgent = other.UserAgent
	}
	if other.Proxy != "" {
		result.Proxy = other.Proxy
	}

	// Pointer fields - only override if explicitly set in other config
	if other.RejectUnauthorized != nil {
		result.RejectUnauthorized = other.RejectUnauthorized
	}
	if other.AutoUnref != nil {
		result.AutoUnref = other.AutoUnref
	}
	if other.MaxRedirects != nil {
		result.MaxRedirects = other.MaxRedirects
	}
	if other.AllowFileSystemResources != nil {
		result.AllowFileSystemResources = other.AllowFileSystemResources
	}
	if other.DisableHeaderCheck != nil {
		result.DisableHeaderCheck = other.DisableHeaderCheck
	}

	return &result
}

// SaveConfig saves the configuration to a file
func (c *Config) SaveConfig(path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
