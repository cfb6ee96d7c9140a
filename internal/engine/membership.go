package engine

import (
	"slices"
	"strconv"
)

// The device tier is always known; devices that declare none are tier 0.
func newDeviceTierAxis(d Device) *axis[int] {
	return &axis[int]{
		dim:     DimensionDeviceTier,
		present: true,
		device:  strconv.Itoa(d.Tier),
		apk:     func(t ApkTargeting) *ValueSet[int] { return t.DeviceTier },
		match:   func(vs *ValueSet[int]) bool { return memberOrFallback(vs, []int{d.Tier}) },
		format:  strconv.Itoa,
	}
}

// A device without a country set only receives the fallback slice.
func newCountrySetAxis(d Device) *axis[string] {
	var device []string
	if d.CountrySet != "" {
		device = []string{d.CountrySet}
	}
	return &axis[string]{
		dim:     DimensionCountrySet,
		present: true,
		device:  strconv.Quote(d.CountrySet),
		apk:     func(t ApkTargeting) *ValueSet[string] { return t.CountrySet },
		match:   func(vs *ValueSet[string]) bool { return memberOrFallback(vs, device) },
		format:  func(v string) string { return v },
	}
}

func newDeviceGroupAxis(d Device) *axis[string] {
	return &axis[string]{
		dim:     DimensionDeviceGroup,
		present: len(d.Groups) > 0,
		device:  listString(d.Groups),
		apk:     func(t ApkTargeting) *ValueSet[string] { return t.DeviceGroup },
		match:   func(vs *ValueSet[string]) bool { return memberOrFallback(vs, d.Groups) },
		format:  func(v string) string { return v },
	}
}

func newSdkRuntimeAxis(d Device) *axis[bool] {
	return &axis[bool]{
		dim:     DimensionSdkRuntime,
		present: true,
		device:  "supported=" + strconv.FormatBool(d.SdkRuntimeSupported),
		variant: func(t VariantTargeting) *ValueSet[bool] { return t.SdkRuntime },
		match: func(vs *ValueSet[bool]) bool {
			return memberOrFallback(vs, []bool{d.SdkRuntimeSupported})
		},
		supports: func(vs *ValueSet[bool]) bool {
			return len(vs.Values) == 0 || slices.Contains(vs.all(), d.SdkRuntimeSupported)
		},
		format: func(v bool) string { return "supported=" + strconv.FormatBool(v) },
	}
}

// checkDisjoint reports descriptors whose values overlap their alternatives.
func checkDisjoint[T comparable](dim Dimension, vs *ValueSet[T]) error {
	if vs.unset() {
		return nil
	}
	for _, v := range vs.Values {
		if slices.Contains(vs.Alternatives, v) {
			return invariant("%s targeting lists %v both as value and alternative", dim, v)
		}
	}
	return nil
}
