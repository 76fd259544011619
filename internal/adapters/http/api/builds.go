package api

import (
	"encoding/json"
	"net/http"

	"github.com/okian/buildlab/internal/domain/model"
	"github.com/okian/buildlab/pkg/logger"
)

// BuildsHandler handles build and match requests.
type BuildsHandler struct {
	deps Dependencies
}

// NewBuildsHandler creates a new builds handler.
func NewBuildsHandler(deps Dependencies) *BuildsHandler {
	return &BuildsHandler{deps: deps}
}

// HandleBuild handles POST /builds requests.
func (h *BuildsHandler) HandleBuild(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "api.post_build", model.JobBuild)
}

// HandleMatch handles POST /builds/match requests.
func (h *BuildsHandler) HandleMatch(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "api.post_match", model.JobMatch)
}

func (h *BuildsHandler) handle(w http.ResponseWriter, r *http.Request, op string, kind model.JobKind) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req buildRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, model.Failure{
			Error:   "Invalid request body",
			Details: badRequest(op, err).Error(),
		})
		return
	}

	res, err := h.deps.Submit(r.Context(), kind, req.Prompt)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			logger.Get().Error(r.Context(), "request failed",
				logger.String("op", op),
				logger.Int("status", status),
				logger.Error(err),
			)
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
