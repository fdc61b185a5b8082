package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/webriots/corun"
	"github.com/webriots/corun/internal/config"
)

func TestRunDemoFailOnSecond(t *testing.T) {
	defer goleak.VerifyNone(t)

	trace := filepath.Join(t.TempDir(), "trace.cbor")
	var out bytes.Buffer

	outcomes, err := runDemo(&out, config.DemoConfig{
		Routines: []string{"immediate", "letters", "single", "custom"},
		Policy:   config.PolicyFailOnSecond,
		Trace:    trace,
	}, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, []demoRes{
		corun.Sok[rune, string]('x'),
		corun.Serr[rune]("boom"),
		corun.Sok[rune, string]('z'),
		corun.None[rune, string](),
	}, outcomes)
	assert.Contains(t, out.String(), `task 1: yield ok('b') -> resume Err(boom)`)
	assert.Contains(t, out.String(), `task 3: yield err("custom")`)

	var printed bytes.Buffer
	require.NoError(t, printTrace(&printed, trace))
	assert.Contains(t, printed.String(), "task 1 finish err(boom)")
	assert.Contains(t, printed.String(), "task 0 finish ok(120)")
}

func TestRunDemoCountPolicy(t *testing.T) {
	defer goleak.VerifyNone(t)

	var out bytes.Buffer
	outcomes, err := runDemo(&out, config.DemoConfig{
		Routines: []string{"letters"},
		Policy:   config.PolicyCount,
	}, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, []demoRes{corun.Sok[rune, string]('!')}, outcomes)
	assert.Contains(t, out.String(), "resume Ok(51)")
}

func TestRunDemoUnknownRoutine(t *testing.T) {
	defer goleak.VerifyNone(t)

	_, err := runDemo(&bytes.Buffer{}, config.DemoConfig{
		Routines: []string{"single", "nope"},
		Policy:   config.PolicyAck,
	}, zap.NewNop())
	assert.ErrorContains(t, err, `unknown routine "nope"`)
}

func TestRootCommand(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Cleanup(func() { zap.ReplaceGlobals(zap.NewNop()) })

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "corun.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("log:\n  level: error\n  outputs: [stderr]\n"), 0o644))
	trace := filepath.Join(dir, "trace.cbor")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"run", "--config", cfgPath, "--routine", "single", "--policy", "count", "--trace", trace})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "task 0 (single): Ok(122)")

	out.Reset()
	cmd = newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"trace", trace})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "#0 task 0 yield ok(97)")

	cmd = newRootCmd()
	cmd.SetArgs([]string{"run", "--config", cfgPath, "--policy", "shrug"})
	assert.Error(t, cmd.Execute())
}
