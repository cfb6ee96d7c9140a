package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/bundletool-sub016/internal/config"
	"github.com/google/bundletool-sub016/internal/engine"
)

const manifest = `
packageName: com.example.app
versionCode: 7
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
`

func filesConfig(dir string) config.Config {
	var cfg config.Config
	cfg.Catalog.Source = config.SourceFiles
	cfg.Catalog.Dir = dir
	cfg.Catalog.DebounceMs = 50
	return cfg
}

func TestBuild_FilesSource(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.yaml"), []byte(manifest), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h, closeFn, err := build(ctx, filesConfig(dir))
	require.NoError(t, err)
	defer closeFn()

	body := `{"device": {"sdkVersion": 30, "supportedAbis": ["x86"]}}`
	req := httptest.NewRequest(http.MethodPost, "/v1/apps/com.example.app/match", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var apks []engine.MatchedApk
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &apks))
	var paths []string
	for _, a := range apks {
		paths = append(paths, a.Path)
	}
	assert.Equal(t, []string{"base-master.apk", "base-x86.apk"}, paths)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestBuild_MissingDirFails(t *testing.T) {
	_, closeFn, err := build(context.Background(), filesConfig(filepath.Join(t.TempDir(), "missing")))
	defer closeFn()
	assert.Error(t, err)
}
