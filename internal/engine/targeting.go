package engine

import (
	"fmt"
	"strings"
)

// ValueSet is the targeting of one artifact along one dimension. Values is
// what the artifact targets, Alternatives what its siblings target. An empty
// Values with non-empty Alternatives marks the fallback artifact.
type ValueSet[T any] struct {
	Values       []T `json:"values,omitempty" yaml:"values,omitempty"`
	Alternatives []T `json:"alternatives,omitempty" yaml:"alternatives,omitempty"`
}

func (vs *ValueSet[T]) unset() bool {
	return vs == nil || (len(vs.Values) == 0 && len(vs.Alternatives) == 0)
}

func (vs *ValueSet[T]) all() []T {
	out := make([]T, 0, len(vs.Values)+len(vs.Alternatives))
	out = append(out, vs.Values...)
	return append(out, vs.Alternatives...)
}

// VariantTargeting is the coarse targeting that fixes a whole variant.
type VariantTargeting struct {
	Sdk        *ValueSet[int]           `json:"sdkVersion,omitempty" yaml:"sdkVersion,omitempty"`
	Abi        *ValueSet[string]        `json:"abi,omitempty" yaml:"abi,omitempty"`
	MultiAbi   *ValueSet[[]string]      `json:"multiAbi,omitempty" yaml:"multiAbi,omitempty"`
	Density    *ValueSet[ScreenDensity] `json:"screenDensity,omitempty" yaml:"screenDensity,omitempty"`
	Texture    *ValueSet[TextureFormat] `json:"textureCompressionFormat,omitempty" yaml:"textureCompressionFormat,omitempty"`
	SdkRuntime *ValueSet[bool]          `json:"sdkRuntime,omitempty" yaml:"sdkRuntime,omitempty"`
}

// ApkTargeting is the targeting of a single APK. Configuration splits carry
// exactly one dimension.
type ApkTargeting struct {
	Sdk         *ValueSet[int]           `json:"sdkVersion,omitempty" yaml:"sdkVersion,omitempty"`
	Abi         *ValueSet[string]        `json:"abi,omitempty" yaml:"abi,omitempty"`
	MultiAbi    *ValueSet[[]string]      `json:"multiAbi,omitempty" yaml:"multiAbi,omitempty"`
	Density     *ValueSet[ScreenDensity] `json:"screenDensity,omitempty" yaml:"screenDensity,omitempty"`
	Language    *ValueSet[string]        `json:"language,omitempty" yaml:"language,omitempty"`
	Texture     *ValueSet[TextureFormat] `json:"textureCompressionFormat,omitempty" yaml:"textureCompressionFormat,omitempty"`
	DeviceTier  *ValueSet[int]           `json:"deviceTier,omitempty" yaml:"deviceTier,omitempty"`
	CountrySet  *ValueSet[string]        `json:"countrySet,omitempty" yaml:"countrySet,omitempty"`
	DeviceGroup *ValueSet[string]        `json:"deviceGroup,omitempty" yaml:"deviceGroup,omitempty"`
}

// ScreenDensity is either a named density bucket or a raw dpi value.
type ScreenDensity struct {
	Alias string `json:"alias,omitempty" yaml:"alias,omitempty"`
	Dpi   int    `json:"dpi,omitempty" yaml:"dpi,omitempty"`
}

var densityAliases = map[string]int{
	"ldpi":    120,
	"mdpi":    160,
	"tvdpi":   213,
	"hdpi":    240,
	"xhdpi":   320,
	"xxhdpi":  480,
	"xxxhdpi": 640,
}

// DPI resolves the density to dots per inch. Unknown aliases resolve to 0.
func (d ScreenDensity) DPI() int {
	if d.Alias != "" {
		return densityAliases[strings.ToLower(d.Alias)]
	}
	return d.Dpi
}

func (d ScreenDensity) String() string {
	if d.Alias != "" {
		return strings.ToLower(d.Alias)
	}
	return fmt.Sprintf("%ddpi", d.Dpi)
}

// TextureFormat is a texture compression format alias.
type TextureFormat string

const (
	TextureASTC     TextureFormat = "ASTC"
	TextureETC2     TextureFormat = "ETC2"
	TextureS3TC     TextureFormat = "S3TC"
	TexturePVRTC    TextureFormat = "PVRTC"
	TextureATC      TextureFormat = "ATC"
	TextureLATC     TextureFormat = "LATC"
	Texture3DC      TextureFormat = "3DC"
	TextureETC1     TextureFormat = "ETC1_RGB8"
	TexturePaletted TextureFormat = "PALETTED"
)

// texturePreference ranks formats from best to worst.
var texturePreference = []TextureFormat{
	TextureASTC, TextureETC2, TextureS3TC, TexturePVRTC, TextureATC,
	TextureLATC, Texture3DC, TextureETC1, TexturePaletted,
}

// glExtensionFormats maps OpenGL extension strings to the formats they expose.
var glExtensionFormats = map[string]TextureFormat{
	"GL_OES_compressed_ETC1_RGB8_texture": TextureETC1,
	"GL_OES_compressed_paletted_texture":  TexturePaletted,
	"GL_AMD_compressed_3DC_texture":       Texture3DC,
	"GL_AMD_compressed_ATC_texture":       TextureATC,
	"GL_ATI_texture_compression_atitc":    TextureATC,
	"GL_EXT_texture_compression_latc":     TextureLATC,
	"GL_EXT_texture_compression_dxt1":     TextureS3TC,
	"GL_EXT_texture_compression_s3tc":     TextureS3TC,
	"GL_IMG_texture_compression_pvrtc":    TexturePVRTC,
	"GL_KHR_texture_compression_astc_ldr": TextureASTC,
}

func textureRank(f TextureFormat) int {
	for i, p := range texturePreference {
		if strings.EqualFold(string(p), string(f)) {
			return i
		}
	}
	return len(texturePreference)
}
