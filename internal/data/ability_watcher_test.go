package data

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "abilities.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testCatalog), 0o644))
	require.NoError(t, LoadAbilities(path))

	reloaded := make(chan struct{}, 4)
	cw, err := NewCatalogWatcher(path, func() { reloaded <- struct{}{} })
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- cw.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	updated := `
abilities:
  - id: only_ward
    prepare: 100ms
    effect: {type: spawn_object, object_kind: ward}
`
	// give the watcher time to subscribe before writing
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))

	select {
	case <-reloaded:
	case <-time.After(5 * time.Second):
		t.Fatal("catalog was not reloaded")
	}

	_, ok := GetAbility("only_ward")
	assert.True(t, ok)
	_, ok = GetAbility("spawn_totem")
	assert.False(t, ok)
}
