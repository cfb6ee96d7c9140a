package engine

import "strings"

func newTextureAxis(d Device) *axis[TextureFormat] {
	formats := d.textureFormats()
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = string(f)
	}
	return &axis[TextureFormat]{
		dim:     DimensionTextureFormat,
		present: len(d.GLExtensions) > 0 || d.GLESVersion > 0,
		device:  listString(names) + " (OpenGL ES " + formatGLES(d.GLESVersion) + ")",
		variant: func(t VariantTargeting) *ValueSet[TextureFormat] { return t.Texture },
		apk:     func(t ApkTargeting) *ValueSet[TextureFormat] { return t.Texture },
		match:   func(vs *ValueSet[TextureFormat]) bool { return textureMatches(formats, vs) },
		supports: func(vs *ValueSet[TextureFormat]) bool {
			return len(vs.Values) == 0 || supportsAnyTexture(formats, vs.all())
		},
		format: func(f TextureFormat) string { return string(f) },
	}
}

// textureMatches selects the best ranked format the device supports among
// values and alternatives; the fallback wins only when none is supported.
func textureMatches(device []TextureFormat, vs *ValueSet[TextureFormat]) bool {
	bestValue := -1
	for _, v := range vs.Values {
		if supportsAnyTexture(device, []TextureFormat{v}) {
			if r := textureRank(v); bestValue < 0 || r < bestValue {
				bestValue = r
			}
		}
	}
	if len(vs.Values) > 0 && bestValue < 0 {
		return false
	}
	for _, alt := range vs.Alternatives {
		if !supportsAnyTexture(device, []TextureFormat{alt}) {
			continue
		}
		if bestValue < 0 || textureRank(alt) < bestValue {
			return false
		}
	}
	return true
}

func supportsAnyTexture(device, formats []TextureFormat) bool {
	for _, f := range formats {
		for _, df := range device {
			if strings.EqualFold(string(f), string(df)) {
				return true
			}
		}
	}
	return false
}
