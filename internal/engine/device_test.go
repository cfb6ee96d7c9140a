package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDevice(t *testing.T) {
	tests := []struct {
		name         string
		spec         DeviceSpec
		wantFeatures []string
		wantGL       int
		wantTier     int
		wantErr      bool
	}{
		{
			name:         "gl version lifted out of features",
			spec:         DeviceSpec{DeviceFeatures: []string{"android.hardware.camera", "reqGlEsVersion=0x30002"}},
			wantFeatures: []string{"android.hardware.camera"},
			wantGL:       0x30002,
		},
		{
			name:         "feature values dropped",
			spec:         DeviceSpec{DeviceFeatures: []string{"android.hardware.vulkan.level=1"}},
			wantFeatures: []string{"android.hardware.vulkan.level"},
		},
		{
			name:     "tier copied",
			spec:     DeviceSpec{DeviceTier: intPtr(2)},
			wantTier: 2,
		},
		{name: "malformed gl version", spec: DeviceSpec{DeviceFeatures: []string{"reqGlEsVersion=abc"}}, wantErr: true},
		{name: "gl version without value", spec: DeviceSpec{DeviceFeatures: []string{"reqGlEsVersion"}}, wantErr: true},
		{name: "negative sdk", spec: DeviceSpec{SdkVersion: -1}, wantErr: true},
		{name: "negative tier", spec: DeviceSpec{DeviceTier: intPtr(-1)}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseDevice(tt.spec)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRequest)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantFeatures, d.Features)
			assert.Equal(t, tt.wantGL, d.GLESVersion)
			assert.Equal(t, tt.wantTier, d.Tier)
		})
	}
}

func TestDevice_TextureFormats(t *testing.T) {
	d := mustDevice(DeviceSpec{
		GlExtensions:   []string{"GL_KHR_texture_compression_astc_ldr", "GL_OES_compressed_ETC1_RGB8_texture", "GL_FOO"},
		DeviceFeatures: []string{"reqGlEsVersion=0x30000"},
	})
	assert.Equal(t, []TextureFormat{TextureASTC, TextureETC1, TextureETC2}, d.textureFormats())

	d = mustDevice(DeviceSpec{DeviceFeatures: []string{"reqGlEsVersion=0x20000"}})
	assert.Empty(t, d.textureFormats())
	assert.Empty(t, d.Features)
	assert.True(t, d.HasFeatures)

	assert.False(t, mustDevice(DeviceSpec{}).HasFeatures)
}
