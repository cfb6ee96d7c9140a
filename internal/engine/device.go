package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// OpenGLFeature is the pseudo-feature carrying the device's OpenGL ES version.
const OpenGLFeature = "reqGlEsVersion"

// glES3 is the OpenGL ES 3.0 version as encoded in reqGlEsVersion.
const glES3 = 0x30000

// DeviceSpec is a device description as reported by a device probe.
type DeviceSpec struct {
	SdkVersion          int      `json:"sdkVersion,omitempty" yaml:"sdkVersion,omitempty"`
	SupportedAbis       []string `json:"supportedAbis,omitempty" yaml:"supportedAbis,omitempty"`
	ScreenDensity       int      `json:"screenDensity,omitempty" yaml:"screenDensity,omitempty"`
	SupportedLocales    []string `json:"supportedLocales,omitempty" yaml:"supportedLocales,omitempty"`
	GlExtensions        []string `json:"glExtensions,omitempty" yaml:"glExtensions,omitempty"`
	DeviceFeatures      []string `json:"deviceFeatures,omitempty" yaml:"deviceFeatures,omitempty"`
	DeviceGroups        []string `json:"deviceGroups,omitempty" yaml:"deviceGroups,omitempty"`
	DeviceTier          *int     `json:"deviceTier,omitempty" yaml:"deviceTier,omitempty"`
	CountrySet          string   `json:"countrySet,omitempty" yaml:"countrySet,omitempty"`
	SdkRuntimeSupported bool     `json:"sdkRuntimeSupported,omitempty" yaml:"sdkRuntimeSupported,omitempty"`
}

// Device is the parsed, read-only snapshot the matchers work on.
type Device struct {
	SdkVersion          int
	Abis                []string
	Density             int
	Locales             []string
	GLExtensions        []string
	Features            []string // names only, without the OpenGL pseudo-feature
	GLESVersion         int      // 0 when unknown
	HasFeatures         bool     // DeviceSpec listed any feature, OpenGL pseudo-feature included
	Groups              []string
	Tier                int
	CountrySet          string
	SdkRuntimeSupported bool
}

// ParseDevice validates spec and extracts the OpenGL ES version from its
// feature list.
func ParseDevice(spec DeviceSpec) (Device, error) {
	if spec.SdkVersion < 0 {
		return Device{}, invalidRequest("sdk version must not be negative, got %d", spec.SdkVersion)
	}
	if spec.ScreenDensity < 0 {
		return Device{}, invalidRequest("screen density must not be negative, got %d", spec.ScreenDensity)
	}
	d := Device{
		SdkVersion:          spec.SdkVersion,
		Abis:                spec.SupportedAbis,
		Density:             spec.ScreenDensity,
		Locales:             spec.SupportedLocales,
		GLExtensions:        spec.GlExtensions,
		Groups:              spec.DeviceGroups,
		CountrySet:          spec.CountrySet,
		SdkRuntimeSupported: spec.SdkRuntimeSupported,
		HasFeatures:         len(spec.DeviceFeatures) > 0,
	}
	if spec.DeviceTier != nil {
		if *spec.DeviceTier < 0 {
			return Device{}, invalidRequest("device tier must not be negative, got %d", *spec.DeviceTier)
		}
		d.Tier = *spec.DeviceTier
	}
	for _, f := range spec.DeviceFeatures {
		name, value, hasValue := strings.Cut(f, "=")
		name = strings.TrimSpace(name)
		if name == OpenGLFeature {
			if !hasValue {
				return Device{}, invalidRequest("feature %q has no value", f)
			}
			v, err := parseGLESVersion(value)
			if err != nil {
				return Device{}, err
			}
			d.GLESVersion = v
			continue
		}
		if name != "" {
			d.Features = append(d.Features, name)
		}
	}
	return d, nil
}

func parseGLESVersion(s string) (int, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 0, 32)
	if err != nil || v < 0 {
		return 0, invalidRequest("malformed %s value %q", OpenGLFeature, s)
	}
	return int(v), nil
}

// textureFormats merges the formats implied by GL extensions with those
// implied by the OpenGL ES version.
func (d *Device) textureFormats() []TextureFormat {
	var out []TextureFormat
	seen := map[TextureFormat]bool{}
	add := func(f TextureFormat) {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	for _, ext := range d.GLExtensions {
		if f, ok := glExtensionFormats[ext]; ok {
			add(f)
		}
	}
	if d.GLESVersion >= glES3 {
		add(TextureETC2)
	}
	return out
}

func formatGLES(v int) string {
	return fmt.Sprintf("%d.%d", v>>16, v&0xffff)
}
