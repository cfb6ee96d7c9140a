package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const manifest = `
variants:
  - number: 1
    targeting:
      sdkVersion:
        values: [21]
    modules:
      - name: base
        delivery: install-time
        splits:
          - path: base-master.apk
            master: true
          - path: base-x86.apk
            targeting:
              abi:
                values: [x86]
      - name: camera
        delivery: on-demand
        splits:
          - path: camera-master.apk
            master: true
`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	m := writeFile(t, dir, "archive.yaml", manifest)
	x86 := writeFile(t, dir, "x86.json", `{"sdkVersion": 30, "supportedAbis": ["x86"]}`)
	old := writeFile(t, dir, "old.json", `{"sdkVersion": 19, "supportedAbis": ["x86"]}`)

	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantOut  string
	}{
		{
			name:     "base only",
			args:     []string{"--manifest", m, "--device", x86},
			wantCode: 0,
			wantOut:  "base-master.apk\nbase-x86.apk\n",
		},
		{
			name:     "requested module",
			args:     []string{"--manifest", m, "--device", x86, "--modules", "camera"},
			wantCode: 0,
			wantOut:  "base-master.apk\nbase-x86.apk\ncamera-master.apk\n",
		},
		{
			name:     "incompatible device",
			args:     []string{"--manifest", m, "--device", old},
			wantCode: 3,
		},
		{
			name:     "unknown module",
			args:     []string{"--manifest", m, "--device", x86, "--modules", "nope"},
			wantCode: 1,
		},
		{
			name:     "missing flags",
			args:     []string{"--manifest", m},
			wantCode: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out, errOut bytes.Buffer
			code := run(tt.args, &out, &errOut)
			assert.Equal(t, tt.wantCode, code, errOut.String())
			if tt.wantOut != "" {
				assert.Equal(t, tt.wantOut, out.String())
			}
		})
	}
}

func TestRun_JSON(t *testing.T) {
	dir := t.TempDir()
	m := writeFile(t, dir, "archive.yaml", manifest)
	d := writeFile(t, dir, "arm.json", `{"sdkVersion": 30, "supportedAbis": ["arm64-v8a"]}`)

	var out, errOut bytes.Buffer
	require.Equal(t, 0, run([]string{"--manifest", m, "--device", d, "--json"}, &out, &errOut), errOut.String())
	assert.JSONEq(t, `[{"path": "base-master.apk", "module": "base", "delivery": "install-time"}]`, out.String())
}
