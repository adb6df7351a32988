package main

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/store"
)

func init() {
	color.NoColor = true
}

func TestParseBinding(t *testing.T) {
	label, key, err := parseBinding("pointing", " F ")
	require.NoError(t, err)
	assert.Equal(t, gesture.Pointing, label)
	assert.Equal(t, control.Key("f"), key)

	_, _, err = parseBinding("fist", "f")
	assert.ErrorContains(t, err, "fixed action")

	_, _, err = parseBinding("wave", "f")
	assert.ErrorContains(t, err, "unknown gesture")

	_, _, err = parseBinding("thumbs_up", "hyper")
	assert.ErrorContains(t, err, "unsupported key")
}

func TestBannerLines(t *testing.T) {
	lines := bannerLines(control.DefaultConfig())
	assert.Contains(t, lines, "open_hand: steer with W/A/S/D")
	assert.Contains(t, lines, "thumbs_up: tap SPACE")
	assert.Equal(t, "press q in the preview or Ctrl+C to quit", lines[len(lines)-1])
}

func TestPrintBindings(t *testing.T) {
	var buf bytes.Buffer
	configured := map[gesture.Label]string{
		gesture.ThumbsUp:    "space",
		gesture.TwoFingers:  "ctrl",
		gesture.Pointing:    "e",
		gesture.FiveFingers: "i",
	}
	require.NoError(t, printBindings(&buf, configured, map[string]string{"pointing": "f"}))

	out := buf.String()
	assert.Regexp(t, `pointing\s+f\s+saved`, out)
	assert.Regexp(t, `thumbs_up\s+space\s+config`, out)
	assert.Contains(t, out, "fist")
}

func TestPrintHistory(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printHistory(&buf, nil))
	assert.Equal(t, "No actions recorded yet\n", buf.String())

	buf.Reset()
	require.NoError(t, printHistory(&buf, []*store.ActionRecord{
		{Gesture: "thumbs_up", Kind: "key_tap", Key: "space", CreatedAt: time.Now()},
	}))
	assert.Regexp(t, `thumbs_up\s+key_tap\s+space`, buf.String())
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestBindCommands(t *testing.T) {
	t.Setenv("MUDRA_BINDINGS_POINTING", "e")
	db := filepath.Join(t.TempDir(), "mudra.db")

	out, err := execute(t, "--db", db, "bind", "pointing", "F")
	require.NoError(t, err)
	assert.Equal(t, "pointing now taps f\n", out)

	out, err = execute(t, "--db", db, "bindings")
	require.NoError(t, err)
	assert.Regexp(t, `pointing\s+f\s+saved`, out)

	out, err = execute(t, "--db", db, "unbind", "pointing")
	require.NoError(t, err)
	assert.Equal(t, "pointing taps e again\n", out)

	_, err = execute(t, "--db", db, "unbind", "pointing")
	assert.ErrorContains(t, err, "no saved binding")

	_, err = execute(t, "--db", db, "bind", "open_hand", "x")
	assert.Error(t, err)
}

func TestHistoryCommand(t *testing.T) {
	db := filepath.Join(t.TempDir(), "mudra.db")
	st, err := store.New(db)
	require.NoError(t, err)
	require.NoError(t, st.Actions().Create(&store.ActionRecord{Gesture: "fist", Kind: "mouse_down"}))
	require.NoError(t, st.Close())

	out, err := execute(t, "--db", db, "history", "-n", "5")
	require.NoError(t, err)
	assert.Regexp(t, `fist\s+mouse_down`, out)

	_, err = execute(t, "--db", db, "history", "--limit", "0")
	assert.ErrorContains(t, err, "--limit must be positive")
}
