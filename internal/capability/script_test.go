package capability

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, dir, name, src string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644))
}

func TestScriptInvoker(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "open_app.js", `
function invoke(args) {
	return "opened " + args.app_name;
}`)
	writeScript(t, dir, "create_event.js", `
function invoke(args) {
	if (!args.title) {
		throw "missing required field title";
	}
	return { event_id: "evt-js", text: "created " + args.title };
}`)
	writeScript(t, dir, "broken.txt", "not a script")

	inv, err := NewScriptInvoker(dir)
	require.NoError(t, err)

	res, err := inv.Invoke(context.Background(), "open_app", map[string]any{"app_name": "spotify"})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "opened spotify", res.Output)

	res, err = inv.Invoke(context.Background(), "create_event", map[string]any{"title": "standup"})
	require.NoError(t, err)
	assert.True(t, res.Success)
	out, ok := res.Output.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "evt-js", out["event_id"])

	// Thrown values are capability-level failures.
	res, err = inv.Invoke(context.Background(), "create_event", map[string]any{})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "missing required field title")

	// No script for the capability.
	res, err = inv.Invoke(context.Background(), "play_music", nil)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "not found")
}

func TestScriptInvokerRejectsBadScripts(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "bad.js", "function invoke(args) {")

	_, err := NewScriptInvoker(dir)
	assert.Error(t, err)
}

func TestScriptInvokerMissingDir(t *testing.T) {
	_, err := NewScriptInvoker(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
