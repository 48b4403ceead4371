package settings

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, args ...string) (*Settings, error) {
	t.Helper()
	fs := pflag.NewFlagSet("console", pflag.ContinueOnError)
	Flags(fs)
	return Load(fs, args)
}

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", "")
	for _, k := range []string{"SERVER", "TOKEN", "ROLE", "LOCALE", "TIMEOUT", "LOG_FILE"} {
		t.Setenv(EnvPrefix+"_"+k, "")
		require.NoError(t, os.Unsetenv(EnvPrefix+"_"+k))
	}
}

func TestLoad_Flags(t *testing.T) {
	clearEnv(t)

	s, err := load(t, "--server", "http://perms:9000 ", "-t", "abc", "-r", "4", "--locale", "en", "--timeout", "3")
	require.NoError(t, err)

	assert.Equal(t, "http://perms:9000", s.Server)
	assert.Equal(t, "abc", s.Token)
	assert.Equal(t, int64(4), s.RoleID)
	assert.Equal(t, "en", s.Locale)
	assert.Equal(t, 3*time.Second, s.Timeout)
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	s, err := load(t, "--role", "1")
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8083", s.Server)
	assert.Equal(t, 10*time.Second, s.Timeout)
	assert.Empty(t, s.Locale)
}

func TestLoad_ConfigEnvFlagPrecedence(t *testing.T) {
	clearEnv(t)
	t.Setenv("SMP_TEST_CONSOLE_TOKEN", "from-file")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
i18n:
  baseLocale: id
console:
  server: http://file:8083
  token: ${SMP_TEST_CONSOLE_TOKEN}
  roleId: 2
  timeout: 5
`), 0o644))

	s, err := load(t, "-c", path)
	require.NoError(t, err)
	assert.Equal(t, "http://file:8083", s.Server)
	assert.Equal(t, "from-file", s.Token)
	assert.Equal(t, int64(2), s.RoleID)
	assert.Equal(t, "id", s.Locale)
	assert.Equal(t, 5*time.Second, s.Timeout)

	t.Setenv(EnvPrefix+"_SERVER", "http://env:8083")
	t.Setenv(EnvPrefix+"_ROLE", "3")
	s, err = load(t, "-c", path, "--role", "6")
	require.NoError(t, err)
	assert.Equal(t, "http://env:8083", s.Server)
	assert.Equal(t, int64(6), s.RoleID)
}

func TestLoad_Invalid(t *testing.T) {
	clearEnv(t)

	_, err := load(t)
	assert.ErrorContains(t, err, "role id is required")

	_, err = load(t, "--role", "1", "--timeout", "-1")
	assert.ErrorContains(t, err, "timeout")

	_, err = load(t, "--role", "1", "--server", " ")
	assert.ErrorContains(t, err, "server")

	_, err = load(t, "-c", filepath.Join(t.TempDir(), "missing.yaml"), "--role", "1")
	assert.Error(t, err)

	_, err = load(t, "--bogus")
	assert.Error(t, err)
}
