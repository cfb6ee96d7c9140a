package listener

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"

	"github.com/google/bundletool-sub016/internal/catalog"
	"github.com/google/bundletool-sub016/internal/storage"
)

// notifyDebounce collapses bursts of notifications into one refresh.
var notifyDebounce = 200 * time.Millisecond

type waitFunc func(ctx context.Context) (*pgconn.Notification, error)

// subscribeFunc opens a LISTEN session. release must be called once the
// session's wait func is no longer in use.
type subscribeFunc func(ctx context.Context) (wait waitFunc, release func(), err error)

// ListenAndRefresh reloads the catalog whenever the archives table signals a
// change on channel. A lost connection is re-established with jittered
// backoff and followed by a full refresh. It blocks until ctx is done.
func ListenAndRefresh(ctx context.Context, st *storage.Store, cat *catalog.Catalog, channel string, baseBackoff time.Duration) {
	if channel == "" {
		channel = st.ListenChannel()
	}
	subscribe := func(ctx context.Context) (waitFunc, func(), error) {
		conn, err := st.PgxPool().Acquire(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("acquire conn for listen: %w", err)
		}
		if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{channel}.Sanitize()); err != nil {
			conn.Release()
			return nil, nil, fmt.Errorf("listen %s: %w", channel, err)
		}
		log.Info().Str("channel", channel).Msg("listening for archive changes")
		return conn.Conn().WaitForNotification, conn.Release, nil
	}
	refresh := func(ctx context.Context) error { return cat.Refresh(ctx, st) }
	refreshLoop(ctx, subscribe, refresh, baseBackoff, notifyDebounce)
}

func refreshLoop(ctx context.Context, subscribe subscribeFunc, refresh func(context.Context) error, baseBackoff, debounce time.Duration) {
	for attempt := 0; ; attempt++ {
		wait, release, err := subscribe(ctx)
		if err == nil {
			// Notifications sent while disconnected are lost.
			if attempt > 0 {
				refreshCatalog(ctx, refresh, "reconnected")
			}
			err = consume(ctx, wait, refresh, debounce)
			release()
		}
		if ctx.Err() != nil {
			log.Info().Msg("listener stopped")
			return
		}
		backoff := jitter(baseBackoff)
		log.Error().Err(err).Dur("retry_in", backoff).Msg("listen error")
		select {
		case <-ctx.Done():
			log.Info().Msg("listener stopped")
			return
		case <-time.After(backoff):
		}
	}
}

// consume refreshes on notifications until wait fails or ctx is done. The
// wait goroutine has exited when it returns.
func consume(ctx context.Context, wait waitFunc, refresh func(context.Context) error, debounce time.Duration) error {
	var wg conc.WaitGroup
	defer wg.Wait()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	notes := make(chan *pgconn.Notification)
	errc := make(chan error, 1)
	wg.Go(func() {
		for {
			ntf, err := wait(ctx)
			if err != nil {
				errc <- err
				return
			}
			select {
			case notes <- ntf:
			case <-ctx.Done():
				return
			}
		}
	})

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errc:
			return err
		case ntf := <-notes:
			log.Debug().Str("channel", ntf.Channel).Str("payload", ntf.Payload).Msg("archives changed")
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(debounce)
		case <-timer.C:
			refreshCatalog(ctx, refresh, "notify")
		}
	}
}

func refreshCatalog(ctx context.Context, refresh func(context.Context) error, reason string) {
	log.Info().Str("reason", reason).Msg("refreshing catalog")
	if err := refresh(ctx); err != nil {
		log.Error().Err(err).Msg("refresh catalog error")
	}
}

func jitter(base time.Duration) time.Duration {
	if base <= 0 {
		base = time.Second
	}
	factor := 0.5 + rand.Float64() // 0.5x-1.5x
	return time.Duration(float64(base) * factor)
}
