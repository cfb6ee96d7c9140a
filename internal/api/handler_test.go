package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/bundletool-sub016/internal/catalog"
	"github.com/google/bundletool-sub016/internal/engine"
	"github.com/google/bundletool-sub016/internal/storage"
)

func newTestCatalog() *catalog.Catalog {
	cat := catalog.New()
	cat.Update([]storage.ArchiveRow{{
		AppID:       "com.example",
		VersionCode: 7,
		Archive: &engine.Archive{Variants: []engine.Variant{{
			Number:    1,
			Targeting: engine.VariantTargeting{Sdk: &engine.ValueSet[int]{Values: []int{21}}},
			Modules: []engine.Module{
				{Name: "base", Delivery: engine.DeliveryInstallTime, Splits: []engine.Split{
					{Path: "base-master.apk", Master: true},
					{Path: "base-x86.apk", Targeting: engine.ApkTargeting{Abi: &engine.ValueSet[string]{Values: []string{"x86"}}}},
				}},
				{Name: "camera", Delivery: engine.DeliveryOnDemand, Splits: []engine.Split{
					{Path: "camera-master.apk", Master: true},
				}},
			},
		}}},
	}})
	return cat
}

func TestMatchHandler_Scenarios(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		body       string
		wantStatus int
		wantPaths  []string
	}{
		{
			name:       "base only",
			url:        "/v1/apps/com.example/match",
			body:       `{"device": {"sdkVersion": 30, "supportedAbis": ["arm64-v8a"]}}`,
			wantStatus: http.StatusOK,
			wantPaths:  []string{"base-master.apk"},
		},
		{
			name:       "requested module",
			url:        "/v1/apps/com.example/match",
			body:       `{"device": {"sdkVersion": 30, "supportedAbis": ["x86"]}, "modules": ["camera"]}`,
			wantStatus: http.StatusOK,
			wantPaths:  []string{"base-master.apk", "base-x86.apk", "camera-master.apk"},
		},
		{
			name:       "strict consistency",
			url:        "/v1/apps/com.example/match",
			body:       `{"device": {"sdkVersion": 30, "supportedAbis": ["arm64-v8a"]}, "strictConsistency": true}`,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "incompatible device",
			url:        "/v1/apps/com.example/match",
			body:       `{"device": {"sdkVersion": 19}}`,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "unknown module",
			url:        "/v1/apps/com.example/match",
			body:       `{"device": {"sdkVersion": 30}, "modules": ["nope"]}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "instant without instant variants",
			url:        "/v1/apps/com.example/match",
			body:       `{"device": {"sdkVersion": 30}, "instant": true}`,
			wantStatus: http.StatusNoContent,
		},
		{
			name:       "unknown app",
			url:        "/v1/apps/com.missing/match",
			body:       `{"device": {"sdkVersion": 30}}`,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "malformed body",
			url:        "/v1/apps/com.example/match",
			body:       `{"device":`,
			wantStatus: http.StatusBadRequest,
		},
	}

	srv := httptest.NewServer(Router(NewMatchHandler(newTestCatalog(), Defaults{})))
	defer srv.Close()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+tt.url, "application/json", strings.NewReader(tt.body))
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			if tt.wantStatus == http.StatusOK {
				var apks []engine.MatchedApk
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&apks))
				var got []string
				for _, a := range apks {
					got = append(got, a.Path)
				}
				assert.Equal(t, tt.wantPaths, got)
			}
		})
	}
}

func TestMatchHandler_Batch(t *testing.T) {
	srv := httptest.NewServer(Router(NewMatchHandler(newTestCatalog(), Defaults{})))
	defer srv.Close()

	body := `{"devices": [{"sdkVersion": 30, "supportedAbis": ["x86"]}, {"sdkVersion": 19}]}`
	resp, err := http.Post(srv.URL+"/v1/apps/com.example/match/batch", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var items []batchItem
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&items))
	require.Len(t, items, 2)
	assert.Len(t, items[0].Apks, 2)
	assert.Empty(t, items[0].Error)
	assert.Contains(t, items[1].Error, "19")

	resp2, err := http.Post(srv.URL+"/v1/apps/com.example/match/batch", "application/json", strings.NewReader(`{"devices": []}`))
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp2.StatusCode)
}

func TestMatchHandler_DefaultsApply(t *testing.T) {
	srv := httptest.NewServer(Router(NewMatchHandler(newTestCatalog(), Defaults{StrictConsistency: true})))
	defer srv.Close()

	body := `{"device": {"sdkVersion": 30, "supportedAbis": ["arm64-v8a"]}}`
	resp, err := http.Post(srv.URL+"/v1/apps/com.example/match", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	body = `{"device": {"sdkVersion": 30, "supportedAbis": ["arm64-v8a"]}, "strictConsistency": false}`
	resp, err = http.Post(srv.URL+"/v1/apps/com.example/match", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestApps(t *testing.T) {
	srv := httptest.NewServer(Router(NewMatchHandler(newTestCatalog(), Defaults{})))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/v1/apps")
	require.NoError(t, err)
	defer resp.Body.Close()

	var apps []catalog.App
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&apps))
	assert.Equal(t, []catalog.App{{AppID: "com.example", VersionCode: 7, Variants: 1}}, apps)
}
