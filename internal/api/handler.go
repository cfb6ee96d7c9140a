package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/google/bundletool-sub016/internal/catalog"
	"github.com/google/bundletool-sub016/internal/engine"
)

// Defaults are applied to options a request leaves unset.
type Defaults struct {
	StrictConsistency              bool
	IncludeInstallTimeAssetModules bool
}

type MatchHandler struct {
	Catalog  *catalog.Catalog
	Defaults Defaults
}

func NewMatchHandler(cat *catalog.Catalog, d Defaults) *MatchHandler {
	return &MatchHandler{Catalog: cat, Defaults: d}
}

type matchOptions struct {
	Modules                        []string `json:"modules,omitempty"`
	Instant                        bool     `json:"instant,omitempty"`
	IncludeInstallTimeAssetModules *bool    `json:"includeInstallTimeAssetModules,omitempty"`
	StrictConsistency              *bool    `json:"strictConsistency,omitempty"`
}

type matchRequest struct {
	Device engine.DeviceSpec `json:"device"`
	matchOptions
}

type batchRequest struct {
	Devices []engine.DeviceSpec `json:"devices"`
	matchOptions
}

type batchItem struct {
	Apks  []engine.MatchedApk `json:"apks"`
	Error string              `json:"error,omitempty"`
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *MatchHandler) options(o matchOptions) engine.Options {
	opts := engine.Options{
		Modules:                        o.Modules,
		InstantOnly:                    o.Instant,
		IncludeInstallTimeAssetModules: h.Defaults.IncludeInstallTimeAssetModules,
		StrictConsistency:              h.Defaults.StrictConsistency,
	}
	if o.IncludeInstallTimeAssetModules != nil {
		opts.IncludeInstallTimeAssetModules = *o.IncludeInstallTimeAssetModules
	}
	if o.StrictConsistency != nil {
		opts.StrictConsistency = *o.StrictConsistency
	}
	return opts
}

// Match serves POST /v1/apps/{app}/match.
func (h *MatchHandler) Match(w http.ResponseWriter, r *http.Request) {
	var req matchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "malformed request body: " + err.Error()})
		return
	}
	app := chi.URLParam(r, "app")
	apks, err := h.Catalog.Match(r.Context(), app, req.Device, h.options(req.matchOptions))
	if err != nil {
		writeError(w, app, err)
		return
	}
	if len(apks) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, apks)
}

// MatchBatch serves POST /v1/apps/{app}/match/batch.
func (h *MatchHandler) MatchBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "malformed request body: " + err.Error()})
		return
	}
	if len(req.Devices) == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "no devices given"})
		return
	}
	app := chi.URLParam(r, "app")
	results, err := h.Catalog.MatchBatch(r.Context(), app, req.Devices, h.options(req.matchOptions))
	if err != nil {
		writeError(w, app, err)
		return
	}
	out := make([]batchItem, len(results))
	for i, res := range results {
		out[i].Apks = res.Apks
		if res.Err != nil {
			out[i].Error = res.Err.Error()
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// Apps serves GET /v1/apps.
func (h *MatchHandler) Apps(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.Catalog.Apps())
}

func writeError(w http.ResponseWriter, app string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, catalog.ErrUnknownApp):
		status = http.StatusNotFound
	case errors.Is(err, engine.ErrInvalidRequest):
		status = http.StatusBadRequest
	case errors.Is(err, engine.ErrIncompatibleDevice):
		status = http.StatusUnprocessableEntity
	default:
		log.Error().Err(err).Str("app", app).Msg("match failed")
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}
