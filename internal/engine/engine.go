package engine

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Options tunes a match request.
type Options struct {
	// Modules restricts matching to the named modules (plus base, install-time
	// modules and dependencies). Nil means no restriction; AllModules selects
	// every module.
	Modules []string
	// InstantOnly considers instant variants and modules only.
	InstantOnly bool
	// IncludeInstallTimeAssetModules folds install-time asset packs into the
	// result.
	IncludeInstallTimeAssetModules bool
	// StrictConsistency fails when a module ships ABI or density splits of
	// which none matches the device.
	StrictConsistency bool
	// Logger receives debug traces. Defaults to a no-op logger.
	Logger *zerolog.Logger
}

// ApkMatcher selects the APKs of an archive to install on one device. It is
// safe for concurrent use; every call works on read-only inputs.
type ApkMatcher struct {
	opts     Options
	filter   moduleFilter
	matchers *matcherSet
	log      zerolog.Logger
}

// NewApkMatcher binds the device and options, rejecting conflicting options.
func NewApkMatcher(device Device, opts Options) (*ApkMatcher, error) {
	filter, err := newModuleFilter(opts.Modules)
	if err != nil {
		return nil, err
	}
	if opts.InstantOnly && opts.IncludeInstallTimeAssetModules {
		return nil, invalidRequest("install-time asset modules cannot be included in instant-only matching")
	}
	l := zerolog.Nop()
	if opts.Logger != nil {
		l = *opts.Logger
	}
	return &ApkMatcher{opts: opts, filter: filter, matchers: newMatcherSet(device), log: l}, nil
}

// Match is a convenience wrapper around NewApkMatcher and ApkMatcher.Match.
func Match(archive *Archive, device Device, opts Options) ([]MatchedApk, error) {
	m, err := NewApkMatcher(device, opts)
	if err != nil {
		return nil, err
	}
	return m.Match(archive)
}

// Match returns the APKs of archive to install on the device, in variant
// module order. An empty result is not an error.
func (m *ApkMatcher) Match(archive *Archive) ([]MatchedApk, error) {
	if err := validateArchive(archive); err != nil {
		return nil, err
	}
	if m.filter.restricted() {
		if !archive.hasSplitVariant() {
			return nil, invalidRequest("cannot restrict modules of an archive without split APKs")
		}
		if !m.filter.all {
			known := archive.moduleNames()
			for _, name := range m.opts.Modules {
				if _, ok := known[name]; !ok {
					return nil, unknownModule(name)
				}
			}
		}
	}

	var candidates []*Variant
	for i := range archive.Variants {
		if archive.Variants[i].Instant == m.opts.InstantOnly {
			candidates = append(candidates, &archive.Variants[i])
		}
	}
	variant, err := m.matchers.selectVariant(candidates)
	if err != nil || variant == nil {
		return nil, err
	}
	m.log.Debug().Int("variant", variant.Number).Bool("standalone", variant.Standalone).Msg("selected variant")

	if variant.Standalone && m.filter.restricted() {
		return nil, invalidRequest("cannot restrict modules when the device matches a standalone variant")
	}

	modules, err := m.eligibleModules(variant)
	if err != nil {
		return nil, err
	}
	if e := m.log.Debug(); e.Enabled() {
		names := make([]string, len(modules))
		for i, mod := range modules {
			names[i] = mod.Name
		}
		e.Strs("modules", names).Msg("eligible modules")
	}

	apks, err := m.selectSplits(variant, modules)
	if err != nil {
		return nil, err
	}
	m.log.Debug().Int("count", len(apks)).Msg("selected splits")
	return apks, nil
}

// MatchesSplitTargeting reports whether an already resolved split, described
// by its variant and APK targeting, applies to the device.
func (m *ApkMatcher) MatchesSplitTargeting(variant VariantTargeting, apk ApkTargeting) bool {
	return m.matchers.matchesVariant(variant) && m.matchers.matchesApk(apk)
}

// validateArchive rejects descriptors that list a value both as value and
// alternative along the equality-matched dimensions.
func validateArchive(a *Archive) error {
	if a == nil {
		return invalidRequest("archive is nil")
	}
	for _, v := range a.Variants {
		if err := checkDisjoint(DimensionSdkRuntime, v.Targeting.SdkRuntime); err != nil {
			return err
		}
		for _, mod := range v.Modules {
			for _, s := range mod.Splits {
				t := s.Targeting
				for _, err := range []error{
					checkDisjoint(DimensionDeviceTier, t.DeviceTier),
					checkDisjoint(DimensionCountrySet, t.CountrySet),
					checkDisjoint(DimensionDeviceGroup, t.DeviceGroup),
				} {
					if err != nil {
						return fmt.Errorf("split %q: %w", s.Path, err)
					}
				}
			}
		}
	}
	return nil
}
