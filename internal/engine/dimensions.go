package engine

import (
	"fmt"
	"slices"
	"strings"
)

// Dimension is one independent targeting axis.
type Dimension int

const (
	DimensionSdkVersion Dimension = iota + 1
	DimensionSdkRuntime
	DimensionAbi
	DimensionMultiAbi
	DimensionScreenDensity
	DimensionLanguage
	DimensionTextureFormat
	DimensionDeviceTier
	DimensionCountrySet
	DimensionDeviceGroup
	DimensionDeviceFeature
	DimensionOpenGLVersion
)

var dimensionNames = map[Dimension]string{
	DimensionSdkVersion:    "SDK version",
	DimensionSdkRuntime:    "SDK runtime",
	DimensionAbi:           "ABI",
	DimensionMultiAbi:      "multi-ABI",
	DimensionScreenDensity: "screen density",
	DimensionLanguage:      "language",
	DimensionTextureFormat: "texture compression format",
	DimensionDeviceTier:    "device tier",
	DimensionCountrySet:    "country set",
	DimensionDeviceGroup:   "device group",
	DimensionDeviceFeature: "device feature",
	DimensionOpenGLVersion: "OpenGL ES version",
}

func (d Dimension) String() string {
	if n, ok := dimensionNames[d]; ok {
		return n
	}
	return fmt.Sprintf("dimension(%d)", int(d))
}

// dimensionMatcher is the contract shared by every targeting axis.
type dimensionMatcher interface {
	Dimension() Dimension
	// DevicePresent reports whether the device carries a value for the axis.
	// When it does not, every descriptor matches.
	DevicePresent() bool
	MatchesVariant(t VariantTargeting) bool
	MatchesApk(t ApkTargeting) bool
	TargetsApk(t ApkTargeting) bool
	// CheckVariants fails when the device is outside the union of values and
	// alternatives of every variant targeting this axis.
	CheckVariants(variants []*Variant) error
}

// axis implements dimensionMatcher for one value type. Nil accessors mean
// the axis does not exist at that level; a nil supports means no device is
// ever fundamentally unsupported along the axis.
type axis[T any] struct {
	dim      Dimension
	present  bool
	device   string
	variant  func(VariantTargeting) *ValueSet[T]
	apk      func(ApkTargeting) *ValueSet[T]
	match    func(*ValueSet[T]) bool
	supports func(*ValueSet[T]) bool
	format   func(T) string
}

func (a *axis[T]) Dimension() Dimension { return a.dim }

func (a *axis[T]) DevicePresent() bool { return a.present }

func (a *axis[T]) MatchesVariant(t VariantTargeting) bool {
	if a.variant == nil {
		return true
	}
	return a.matches(a.variant(t))
}

func (a *axis[T]) MatchesApk(t ApkTargeting) bool {
	if a.apk == nil {
		return true
	}
	return a.matches(a.apk(t))
}

func (a *axis[T]) TargetsApk(t ApkTargeting) bool {
	return a.apk != nil && !a.apk(t).unset()
}

// matches is the raw predicate for a descriptor at any level.
func (a *axis[T]) matches(vs *ValueSet[T]) bool {
	if !a.present || vs.unset() {
		return true
	}
	return a.match(vs)
}

func (a *axis[T]) CheckVariants(variants []*Variant) error {
	if !a.present || a.variant == nil || a.supports == nil {
		return nil
	}
	var (
		supported []string
		seen      = map[string]bool{}
		targeted  bool
	)
	for _, v := range variants {
		vs := a.variant(v.Targeting)
		if vs.unset() {
			continue
		}
		targeted = true
		if a.supports(vs) {
			return nil
		}
		for _, x := range vs.all() {
			if s := a.format(x); !seen[s] {
				seen[s] = true
				supported = append(supported, s)
			}
		}
	}
	if !targeted {
		return nil
	}
	return &IncompatibleDeviceError{Dimension: a.dim, DeviceValue: a.device, Supported: supported}
}

// matcherSet holds every axis matcher bound to one device.
type matcherSet struct {
	device Device

	sdk        *axis[int]
	runtime    *axis[bool]
	abi        *axis[string]
	multiAbi   *axis[[]string]
	density    *axis[ScreenDensity]
	language   *axis[string]
	texture    *axis[TextureFormat]
	tier       *axis[int]
	countrySet *axis[string]
	group      *axis[string]
	feature    featureMatcher
	openGL     openGLMatcher

	variantMatchers []dimensionMatcher
	apkMatchers     []dimensionMatcher
}

func newMatcherSet(d Device) *matcherSet {
	m := &matcherSet{
		device:     d,
		sdk:        newSdkAxis(d),
		runtime:    newSdkRuntimeAxis(d),
		abi:        newAbiAxis(d),
		multiAbi:   newMultiAbiAxis(d),
		density:    newDensityAxis(d),
		language:   newLanguageAxis(d),
		texture:    newTextureAxis(d),
		tier:       newDeviceTierAxis(d),
		countrySet: newCountrySetAxis(d),
		group:      newDeviceGroupAxis(d),
		feature:    featureMatcher{features: d.Features, present: d.HasFeatures},
		openGL:     openGLMatcher{version: d.GLESVersion, present: d.HasFeatures},
	}
	m.variantMatchers = []dimensionMatcher{m.sdk, m.abi, m.multiAbi, m.density, m.texture, m.runtime}
	m.apkMatchers = []dimensionMatcher{
		m.sdk, m.abi, m.multiAbi, m.density, m.language, m.texture, m.tier, m.countrySet, m.group,
	}
	return m
}

func (m *matcherSet) matchesVariant(t VariantTargeting) bool {
	for _, dm := range m.variantMatchers {
		if !dm.MatchesVariant(t) {
			return false
		}
	}
	return true
}

func (m *matcherSet) matchesApk(t ApkTargeting) bool {
	for _, dm := range m.apkMatchers {
		if !dm.MatchesApk(t) {
			return false
		}
	}
	return true
}

func containsAny[T comparable](values, device []T) bool {
	for _, v := range values {
		if slices.Contains(device, v) {
			return true
		}
	}
	return false
}

// memberOrFallback matches when a device value is targeted, or when the
// descriptor is the fallback and no alternative covers the device.
func memberOrFallback[T comparable](vs *ValueSet[T], device []T) bool {
	if len(vs.Values) > 0 {
		return containsAny(vs.Values, device)
	}
	return !containsAny(vs.Alternatives, device)
}

func listString(values []string) string {
	return "[" + strings.Join(values, ", ") + "]"
}
