package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()

	assert.True(t, c.GetRejectUnauthorized())
	assert.False(t, c.GetAutoUnref())
	assert.True(t, c.GetAllowFileSystemResources())
	assert.False(t, c.GetDisableHeaderCheck())
	assert.Equal(t, DefaultMaxRedirects, c.GetMaxRedirects())
	assert.Equal(t, SyncWorkerProcess, c.GetSyncWorker())
	assert.Equal(t, DefaultUserAgent, c.GetUserAgent())
	assert.True(t, c.IsDefault())
}

func TestGetMaxRedirectsClamps(t *testing.T) {
	c := &Config{MaxRedirects: IntPtr(-5)}
	assert.Equal(t, 0, c.GetMaxRedirects())

	c.MaxRedirects = IntPtr(0)
	assert.Equal(t, 0, c.GetMaxRedirects())
	assert.False(t, c.IsDefault())
}

func TestValidate(t *testing.T) {
	assert.NoError(t, (&Config{}).Validate())
	assert.NoError(t, (&Config{SyncWorker: SyncWorkerInline}).Validate())
	assert.Error(t, (&Config{SyncWorker: "thread"}).Validate())
	assert.Error(t, (&Config{TLS: TLS{CertFile: "c.pem"}}).Validate())
	assert.NoError(t, (&Config{TLS: TLS{CertFile: "c.pem", KeyFile: "k.pem"}}).Validate())
}

func TestLoadConfigJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".xhrkit.json")
	content := `{
  "rejectUnauthorized": false,
  "maxRedirects": 3,
  "origin": "http://localhost:8080/app/",
  "tls": {"caFile": "ca.pem", "ciphers": ["TLS_AES_128_GCM_SHA256"]}
}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	c, err := FindAndLoadConfig(dir)
	require.NoError(t, err)
	assert.False(t, c.GetRejectUnauthorized())
	assert.Equal(t, 3, c.GetMaxRedirects())
	assert.Equal(t, "http://localhost:8080/app/", c.Origin)
	assert.Equal(t, "ca.pem", c.TLS.CAFile)
	assert.Equal(t, []string{"TLS_AES_128_GCM_SHA256"}, c.TLS.Ciphers)
	assert.Equal(t, DefaultUserAgent, c.GetUserAgent())
}

func TestLoadConfigYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".xhrkit.yaml")
	content := "syncWorker: inline\nallowFileSystemResources: false\nautoUnref: true\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	c, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, SyncWorkerInline, c.GetSyncWorker())
	assert.False(t, c.GetAllowFileSystemResources())
	assert.True(t, c.GetAutoUnref())
}

func TestLoadConfigInvalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0644))
	_, err := LoadConfig(bad)
	assert.Error(t, err)

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("syncWorker: fork\n"), 0644))
	_, err = LoadConfig(invalid)
	assert.ErrorContains(t, err, "syncWorker")

	_, err = LoadConfig(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestFindAndLoadConfigNoFile(t *testing.T) {
	c, err := FindAndLoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.True(t, c.IsDefault())
}

func TestMerge(t *testing.T) {
	base := &Config{
		MaxRedirects: IntPtr(5),
		Origin:       "http://a.example/",
		TLS:          TLS{CAFile: "base-ca.pem"},
	}
	other := &Config{
		RejectUnauthorized: BoolPtr(false),
		Origin:             "http://b.example/",
		TLS:                TLS{CertFile: "c.pem", KeyFile: "k.pem"},
	}

	merged := base.Merge(other)
	assert.Equal(t, 5, merged.GetMaxRedirects())
	assert.False(t, merged.GetRejectUnauthorized())
	assert.Equal(t, "http://b.example/", merged.Origin)
	assert.Equal(t, "base-ca.pem", merged.TLS.CAFile)
	assert.Equal(t, "c.pem", merged.TLS.CertFile)

	// the receiver is untouched
	assert.Equal(t, "http://a.example/", base.Origin)
	assert.Same(t, base, base.Merge(nil))
}

func TestFromEnv(t *testing.T) {
	t.Setenv("XHRKIT_MAX_REDIRECTS", "2")
	t.Setenv("XHRKIT_REJECT_UNAUTHORIZED", "false")
	t.Setenv("XHRKIT_ORIGIN", "http://env.example/")
	t.Setenv("XHRKIT_TLS_CA_FILE", "/etc/ca.pem")
	t.Setenv("XHRKIT_TLS_CIPHERS", "A,B")

	c, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, 2, c.GetMaxRedirects())
	assert.False(t, c.GetRejectUnauthorized())
	assert.Equal(t, "http://env.example/", c.Origin)
	assert.Equal(t, "/etc/ca.pem", c.TLS.CAFile)
	assert.Equal(t, []string{"A", "B"}, c.TLS.Ciphers)
	assert.Nil(t, c.AutoUnref)
}

func TestFromEnvInvalid(t *testing.T) {
	t.Setenv("XHRKIT_MAX_REDIRECTS", "many")
	_, err := FromEnv()
	assert.Error(t, err)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "xhrkit.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"maxRedirects": 7, "userAgent": "file-agent"}`), 0644))
	t.Setenv("XHRKIT_USER_AGENT", "env-agent")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, c.GetMaxRedirects())
	assert.Equal(t, "env-agent", c.GetUserAgent())
}

func TestSaveConfigRoundTrip(t *testing.T) {
	dir := t.TempDir()
	c := DefaultConfig().Merge(&Config{AutoUnref: BoolPtr(true), Origin: "http://localhost/"})

	for _, name := range []string{"out.json", "out.yaml"} {
		path := filepath.Join(dir, name)
		require.NoError(t, c.SaveConfig(path))

		loaded, err := LoadConfig(path)
		require.NoError(t, err, name)
		assert.True(t, loaded.GetAutoUnref(), name)
		assert.Equal(t, "http://localhost/", loaded.Origin, name)
	}
}
