package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenarioYAML = `
name: replay
tick_rate: 10
ticks: 20
entities:
  - {uid: 1, name: Shaman}
  - {uid: 2, name: Warden, pos: {x: 4}}
steps:
  - {tick: 1, uid: 1, begin: spawn_totem, input: {hold: true, move: {y: 1}}}
  - {tick: 2, uid: 2, begin: shockwave}
  - {tick: 8, uid: 1, input: {}}
`

func TestRun_Reproducible(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(scenarioYAML), 0o644))

	var first, second bytes.Buffer
	require.NoError(t, run(context.Background(), &first, path, "", 0))
	require.NoError(t, run(context.Background(), &second, path, "", 4))

	assert.Equal(t, first.String(), second.String())

	lines := strings.Split(strings.TrimSpace(first.String()), "\n")
	require.GreaterOrEqual(t, len(lines), 20)
	assert.True(t, strings.HasPrefix(lines[0], "tick=1 "))
	assert.Contains(t, first.String(), "object id=")
	assert.Contains(t, first.String(), "kind=totem")
}

func TestRun_MissingScenario(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), &out, filepath.Join(t.TempDir(), "nope.yaml"), "", 0)
	assert.Error(t, err)
}

func TestRun_ShippedScenario(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), &out, "../../scenarios/totem.yaml", "../../config/abilities.yaml", 0))
	assert.Contains(t, out.String(), "tick=120 ")
	assert.Contains(t, out.String(), "kind=ward")
	assert.Contains(t, out.String(), "kind=totem")
}
