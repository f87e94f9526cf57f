package httpapi

import (
	"encoding/json"
	"net/http"

	"imageflow/internal/validate"
)

// ImageFlow implements POST /api/image-flow: validate, then run the
// pipeline and respond with its outcome. A validation rejection short
// circuits before any upload or model call happens.
func (a *App) ImageFlow(w http.ResponseWriter, r *http.Request) {
	req, verr := validate.Request(r, a.MaxReferenceImages)
	if verr != nil {
		a.writeJSON(w, http.StatusBadRequest, map[string]any{"message": verr.Message, "issues": verr.Issues})
		return
	}

	outcome := a.Orchestrator.Run(r.Context(), req)
	a.writeJSON(w, outcome.Status, outcome.Response)
}

// Health implements GET /health.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		a.Logger.Error().Err(err).Msg("failed to encode response")
	}
}
