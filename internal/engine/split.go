package engine

import (
	"fmt"
	"slices"

	"go.uber.org/multierr"
)

// strictDimensions are checked for completeness when strict consistency is
// requested.
var strictDimensions = []Dimension{DimensionAbi, DimensionMultiAbi, DimensionScreenDensity}

// selectSplits picks, per module, the master split and every configuration
// split matching the device.
func (m *ApkMatcher) selectSplits(v *Variant, modules []*Module) ([]MatchedApk, error) {
	var (
		out  []MatchedApk
		seen = map[string]bool{}
		errs error
	)
	for _, mod := range modules {
		shipped := map[Dimension]bool{}
		matched := map[Dimension]bool{}
		for _, s := range mod.Splits {
			ok := m.matchers.matchesApk(s.Targeting)
			if s.Master && !v.Standalone {
				ok = true
			}
			for _, dm := range m.matchers.apkMatchers {
				if dm.TargetsApk(s.Targeting) {
					shipped[dm.Dimension()] = true
					if ok {
						matched[dm.Dimension()] = true
					}
				}
			}
			if !ok || seen[s.Path] {
				continue
			}
			seen[s.Path] = true
			out = append(out, MatchedApk{Path: s.Path, Module: mod.Name, Delivery: deliveryOf(mod)})
		}
		if m.opts.StrictConsistency {
			errs = multierr.Append(errs, m.checkComplete(mod.Name, shipped, matched))
		}
	}
	if errs != nil {
		return nil, fmt.Errorf("%w: %w", ErrIncompatibleDevice, errs)
	}
	return out, nil
}

func (m *ApkMatcher) checkComplete(module string, shipped, matched map[Dimension]bool) error {
	var missing []Dimension
	for _, dm := range m.matchers.apkMatchers {
		d := dm.Dimension()
		if !slices.Contains(strictDimensions, d) || !dm.DevicePresent() {
			continue
		}
		if shipped[d] && !matched[d] {
			missing = append(missing, d)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &MissingSplitsError{Module: module, Dimensions: missing}
}

func deliveryOf(mod *Module) DeliveryType {
	if mod.Delivery == "" {
		return DeliveryInstallTime
	}
	return mod.Delivery
}
