package listener

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"

	"github.com/google/bundletool-sub016/internal/catalog"
	"github.com/google/bundletool-sub016/internal/storage"
)

// WatchDir reloads the catalog when manifest files under the store's
// directory change. Bursts of events within debounce collapse into one
// refresh. It blocks until ctx is done.
func WatchDir(ctx context.Context, fs *storage.FileStore, cat *catalog.Catalog, debounce time.Duration) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(fs.Dir()); err != nil {
		return err
	}
	log.Info().Str("dir", fs.Dir()).Msg("watching manifest dir")

	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}
	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("watcher stopped")
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !storage.IsManifest(ev.Name) || ev.Op == fsnotify.Chmod {
				continue
			}
			timer.Reset(debounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Error().Err(err).Msg("watch error")
		case <-timer.C:
			if err := cat.Refresh(ctx, fs); err != nil {
				log.Error().Err(err).Msg("refresh catalog error")
			}
		}
	}
}
