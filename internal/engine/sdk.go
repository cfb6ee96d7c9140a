package engine

import (
	"slices"
	"strconv"
)

func newSdkAxis(d Device) *axis[int] {
	return &axis[int]{
		dim:     DimensionSdkVersion,
		present: d.SdkVersion > 0,
		device:  strconv.Itoa(d.SdkVersion),
		variant: func(t VariantTargeting) *ValueSet[int] { return t.Sdk },
		apk:     func(t ApkTargeting) *ValueSet[int] { return t.Sdk },
		match:   func(vs *ValueSet[int]) bool { return sdkMatches(d.SdkVersion, vs) },
		supports: func(vs *ValueSet[int]) bool {
			return d.SdkVersion >= slices.Min(vs.all())
		},
		format: func(v int) string { return strconv.Itoa(v) + "+" },
	}
}

// sdkMatches requires the device to reach the targeted minimum and rejects
// the descriptor when an alternative closer to the device also qualifies.
func sdkMatches(device int, vs *ValueSet[int]) bool {
	floor := 0
	if len(vs.Values) > 0 {
		floor = slices.Min(vs.Values)
		if device < floor {
			return false
		}
	}
	for _, alt := range vs.Alternatives {
		if alt > floor && alt <= device {
			return false
		}
	}
	return true
}
