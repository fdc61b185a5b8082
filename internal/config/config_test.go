package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "corun.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, []string{"stderr"}, cfg.Log.Outputs)
	assert.Equal(t, KnownRoutines, cfg.Demo.Routines)
	assert.Equal(t, PolicyAck, cfg.Demo.Policy)
	assert.Empty(t, cfg.Demo.Trace)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
  format: json
demo:
  routines: [letters, Custom, letters]
  policy: FAIL-ON-SECOND
  trace: out.cbor
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, []string{"letters", "custom", "letters"}, cfg.Demo.Routines)
	assert.Equal(t, PolicyFailOnSecond, cfg.Demo.Policy)
	assert.Equal(t, "out.cbor", cfg.Demo.Trace)
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, "demo:\n  policy: ack\n")
	t.Setenv("CORUN_DEMO_POLICY", "count")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, PolicyCount, cfg.Demo.Policy)
}

func TestLoadConfigEnvPath(t *testing.T) {
	path := writeConfig(t, "log:\n  level: warn\n")
	t.Setenv("CORUN_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadInvalid(t *testing.T) {
	for name, body := range map[string]string{
		"level":   "log:\n  level: loud\n",
		"policy":  "demo:\n  policy: shrug\n",
		"routine": "demo:\n  routines: [letters, nope]\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
