package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/iter"
	"golang.org/x/exp/maps"

	"github.com/google/bundletool-sub016/internal/cache"
	"github.com/google/bundletool-sub016/internal/engine"
	"github.com/google/bundletool-sub016/internal/observability"
	"github.com/google/bundletool-sub016/internal/storage"
)

var ErrUnknownApp = errors.New("unknown app")

// Loader produces the archives the catalog serves.
type Loader interface {
	LoadArchives(ctx context.Context) ([]storage.ArchiveRow, error)
}

// App describes one archive held by the catalog.
type App struct {
	AppID       string `json:"app"`
	VersionCode int64  `json:"versionCode"`
	Variants    int    `json:"variants"`
}

type snapshot struct {
	apps map[string]storage.ArchiveRow
}

// Catalog holds the archives of every app and matches devices against them.
// Reads are lock-free; Refresh swaps in a new immutable snapshot.
type Catalog struct{ snap cache.Snapshot[snapshot] }

func New() *Catalog { return &Catalog{} }

// Refresh reloads every archive from l. When l reports undecodable archives
// alongside good ones, the good ones are still served.
func (c *Catalog) Refresh(ctx context.Context, l Loader) error {
	rows, err := l.LoadArchives(ctx)
	if err != nil {
		if len(rows) == 0 {
			return fmt.Errorf("load archives: %w", err)
		}
		log.Warn().Err(err).Int("loaded", len(rows)).Msg("some archives could not be loaded")
	}
	c.Update(rows)
	return nil
}

// Update replaces the catalog contents with rows.
func (c *Catalog) Update(rows []storage.ArchiveRow) {
	apps := make(map[string]storage.ArchiveRow, len(rows))
	for _, r := range rows {
		if r.Archive == nil {
			continue
		}
		if prev, ok := apps[r.AppID]; ok && prev.VersionCode > r.VersionCode {
			continue
		}
		apps[r.AppID] = r
	}
	c.snap.Store(snapshot{apps: apps})
	observability.CatalogApps.Set(float64(len(apps)))
	log.Info().Int("count", len(apps)).Msg("catalog snapshot updated")
}

// Apps lists the catalog contents ordered by app id.
func (c *Catalog) Apps() []App {
	s, _ := c.snap.Load()
	ids := maps.Keys(s.apps)
	slices.Sort(ids)
	out := make([]App, 0, len(ids))
	for _, id := range ids {
		r := s.apps[id]
		out = append(out, App{AppID: id, VersionCode: r.VersionCode, Variants: len(r.Archive.Variants)})
	}
	return out
}

func (c *Catalog) archive(appID string) (*engine.Archive, error) {
	s, _ := c.snap.Load()
	r, ok := s.apps[appID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownApp, appID)
	}
	return r.Archive, nil
}

// Match selects the APKs of appID to install on the described device.
func (c *Catalog) Match(_ context.Context, appID string, spec engine.DeviceSpec, opts engine.Options) ([]engine.MatchedApk, error) {
	a, err := c.archive(appID)
	if err != nil {
		return nil, err
	}
	l := log.With().Str("app", appID).Logger()
	opts.Logger = &l
	apks, err := match(a, spec, opts)
	observability.ObserveMatch(len(apks), err)
	return apks, err
}

// BatchResult is the outcome for one device of a batch.
type BatchResult struct {
	Apks []engine.MatchedApk
	Err  error
}

// MatchBatch matches several devices against the same archive concurrently.
// Results are in device order.
func (c *Catalog) MatchBatch(_ context.Context, appID string, specs []engine.DeviceSpec, opts engine.Options) ([]BatchResult, error) {
	a, err := c.archive(appID)
	if err != nil {
		return nil, err
	}
	l := log.With().Str("app", appID).Logger()
	opts.Logger = &l
	return iter.Map(specs, func(spec *engine.DeviceSpec) BatchResult {
		apks, err := match(a, *spec, opts)
		observability.ObserveMatch(len(apks), err)
		return BatchResult{Apks: apks, Err: err}
	}), nil
}

func match(a *engine.Archive, spec engine.DeviceSpec, opts engine.Options) ([]engine.MatchedApk, error) {
	d, err := engine.ParseDevice(spec)
	if err != nil {
		return nil, err
	}
	return engine.Match(a, d, opts)
}
