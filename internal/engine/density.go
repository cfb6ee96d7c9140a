package engine

import "strconv"

func newDensityAxis(d Device) *axis[ScreenDensity] {
	return &axis[ScreenDensity]{
		dim:     DimensionScreenDensity,
		present: d.Density > 0,
		device:  strconv.Itoa(d.Density) + "dpi",
		variant: func(t VariantTargeting) *ValueSet[ScreenDensity] { return t.Density },
		apk:     func(t ApkTargeting) *ValueSet[ScreenDensity] { return t.Density },
		match: func(vs *ValueSet[ScreenDensity]) bool {
			best, ok := nearestDensity(d.Density, vs.all())
			if !ok {
				return false
			}
			for _, v := range vs.Values {
				if v.DPI() == best {
					return true
				}
			}
			return false
		},
		format: ScreenDensity.String,
	}
}

// nearestDensity returns the candidate dpi closest to the device. Equal
// distances resolve to the higher density.
func nearestDensity(device int, candidates []ScreenDensity) (int, bool) {
	best, found := 0, false
	for _, c := range candidates {
		dpi := c.DPI()
		if dpi <= 0 {
			continue
		}
		if !found {
			best, found = dpi, true
			continue
		}
		d, bd := distance(dpi, device), distance(best, device)
		if d < bd || (d == bd && dpi > best) {
			best = dpi
		}
	}
	return best, found
}

func distance(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}
