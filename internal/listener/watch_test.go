package listener

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/bundletool-sub016/internal/catalog"
	"github.com/google/bundletool-sub016/internal/storage"
)

const manifest = `{"packageName": "com.example.watch", "variants": [{"number": 1, "modules": [{"name": "base", "delivery": "install-time", "splits": [{"path": "base.apk", "master": true}]}]}]}`

func TestWatchDir_RefreshesOnNewManifest(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cat := catalog.New()
	done := make(chan error, 1)
	go func() { done <- WatchDir(ctx, storage.NewFileStore(dir), cat, 20*time.Millisecond) }()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "watch.json"), []byte(manifest), 0o644))

	assert.Eventually(t, func() bool { return len(cat.Apps()) == 1 }, 2*time.Second, 20*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}

func TestJitter(t *testing.T) {
	for i := 0; i < 100; i++ {
		d := jitter(time.Second)
		assert.GreaterOrEqual(t, d, 500*time.Millisecond)
		assert.LessOrEqual(t, d, 1500*time.Millisecond)
	}
	assert.GreaterOrEqual(t, jitter(0), 500*time.Millisecond)
}
