package engine

// BaseModule is always installed.
const BaseModule = "base"

// AllModules requests every module of the matched variant.
const AllModules = "_ALL_"

// DeliveryType governs when a module is installed by default.
type DeliveryType string

const (
	DeliveryInstallTime DeliveryType = "install-time"
	DeliveryOnDemand    DeliveryType = "on-demand"
	DeliveryFastFollow  DeliveryType = "fast-follow"
	DeliveryConditional DeliveryType = "conditional"
)

// ModuleKind distinguishes code-carrying feature modules from asset packs.
type ModuleKind string

const (
	ModuleFeature ModuleKind = "feature"
	ModuleAsset   ModuleKind = "asset"
)

// Archive is the deserialized description of every APK produced for one app.
type Archive struct {
	PackageName string    `json:"packageName,omitempty" yaml:"packageName,omitempty"`
	VersionCode int64     `json:"versionCode,omitempty" yaml:"versionCode,omitempty"`
	Variants    []Variant `json:"variants" yaml:"variants"`
}

// Variant is one full build generation; at most one is selected per device.
type Variant struct {
	Number     int              `json:"number" yaml:"number"`
	Targeting  VariantTargeting `json:"targeting" yaml:"targeting"`
	Standalone bool             `json:"standalone,omitempty" yaml:"standalone,omitempty"`
	Instant    bool             `json:"instant,omitempty" yaml:"instant,omitempty"`
	Modules    []Module         `json:"modules" yaml:"modules"`
}

// Module is an installable unit inside a variant.
type Module struct {
	Name         string           `json:"name" yaml:"name"`
	Kind         ModuleKind       `json:"kind,omitempty" yaml:"kind,omitempty"`
	Delivery     DeliveryType     `json:"delivery" yaml:"delivery"`
	Instant      bool             `json:"instant,omitempty" yaml:"instant,omitempty"`
	Dependencies []string         `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	Condition    *ModuleCondition `json:"condition,omitempty" yaml:"condition,omitempty"`
	Splits       []Split          `json:"splits" yaml:"splits"`
}

func (m *Module) isAsset() bool { return m.Kind == ModuleAsset }

// ModuleCondition decides whether a conditional module applies to a device.
// All present conditions must hold.
type ModuleCondition struct {
	MinSdkVersion  int             `json:"minSdkVersion,omitempty" yaml:"minSdkVersion,omitempty"`
	DeviceFeatures []DeviceFeature `json:"deviceFeatures,omitempty" yaml:"deviceFeatures,omitempty"`
	DeviceGroups   []string        `json:"deviceGroups,omitempty" yaml:"deviceGroups,omitempty"`
}

// DeviceFeature names a required device feature. Version is only meaningful
// for the OpenGL ES pseudo-feature.
type DeviceFeature struct {
	Name    string `json:"name" yaml:"name"`
	Version int    `json:"version,omitempty" yaml:"version,omitempty"`
}

// Split is one APK file of a module.
type Split struct {
	Path      string       `json:"path" yaml:"path"`
	Master    bool         `json:"master,omitempty" yaml:"master,omitempty"`
	Targeting ApkTargeting `json:"targeting" yaml:"targeting"`
}

// MatchedApk is one APK selected for a device.
type MatchedApk struct {
	Path     string       `json:"path"`
	Module   string       `json:"module"`
	Delivery DeliveryType `json:"delivery"`
}

func (a *Archive) moduleNames() map[string]struct{} {
	names := map[string]struct{}{}
	for _, v := range a.Variants {
		for _, m := range v.Modules {
			names[m.Name] = struct{}{}
		}
	}
	return names
}

func (a *Archive) hasSplitVariant() bool {
	for _, v := range a.Variants {
		if !v.Standalone {
			return true
		}
	}
	return false
}
