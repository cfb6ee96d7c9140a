package engine

import (
	"slices"
	"strconv"
)

// featureMatcher checks plain device features by name. The OpenGL ES
// pseudo-feature never reaches it because ParseDevice lifts it out, so
// presence comes from the raw feature list.
type featureMatcher struct {
	features []string
	present  bool
}

func (m featureMatcher) Dimension() Dimension { return DimensionDeviceFeature }

func (m featureMatcher) DevicePresent() bool { return m.present }

func (m featureMatcher) matches(f DeviceFeature) bool {
	if !m.DevicePresent() {
		return true
	}
	return slices.Contains(m.features, f.Name)
}

// openGLMatcher compares the required OpenGL ES version numerically. A
// device declaring features but no version fails every version requirement.
type openGLMatcher struct {
	version int
	present bool
}

func (m openGLMatcher) Dimension() Dimension { return DimensionOpenGLVersion }

func (m openGLMatcher) DevicePresent() bool { return m.present }

func (m openGLMatcher) matches(f DeviceFeature) bool {
	if !m.DevicePresent() {
		return true
	}
	return m.version >= f.Version
}

// matchesCondition decides whether a conditional module applies to the
// device. Every condition present on the module must hold.
func (m *matcherSet) matchesCondition(c *ModuleCondition) bool {
	if c == nil {
		return true
	}
	if c.MinSdkVersion > 0 && !m.sdk.matches(&ValueSet[int]{Values: []int{c.MinSdkVersion}}) {
		return false
	}
	for _, f := range c.DeviceFeatures {
		if f.Name == OpenGLFeature {
			if !m.openGL.matches(f) {
				return false
			}
			continue
		}
		if !m.feature.matches(f) {
			return false
		}
	}
	if len(c.DeviceGroups) > 0 && !m.group.matches(&ValueSet[string]{Values: c.DeviceGroups}) {
		return false
	}
	return true
}

func describeCondition(c *ModuleCondition) string {
	if c == nil {
		return "none"
	}
	s := "minSdk=" + strconv.Itoa(c.MinSdkVersion)
	for _, f := range c.DeviceFeatures {
		if f.Name == OpenGLFeature {
			s += " glEs>=" + formatGLES(f.Version)
			continue
		}
		s += " feature=" + f.Name
	}
	for _, g := range c.DeviceGroups {
		s += " group=" + g
	}
	return s
}
