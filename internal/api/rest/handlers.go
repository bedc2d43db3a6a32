package rest

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/abel-yelin/AI-blog-for-gitbase/pkg/types"
)

// Runner executes one publishing run.
type Runner interface {
	Run(ctx context.Context) (*types.PublishResult, error)
}

// Handler binds the publishing pipeline to HTTP. Each request gets a
// fresh runner; the design assumes single-run-at-a-time invocation.
type Handler struct {
	newRun func() Runner
	logger *zap.Logger
}

// NewHandler creates a new REST handler.
func NewHandler(newRun func() Runner, logger *zap.Logger) *Handler {
	return &Handler{
		newRun: newRun,
		logger: logger,
	}
}

// PublishResponse is the JSON body for all publishing outcomes.
type PublishResponse struct {
	Status string `json:"status"`
	PRURL  string `json:"pr_url,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// PublishPost handles POST /posts
func (h *Handler) PublishPost(w http.ResponseWriter, r *http.Request) {
	result, err := h.newRun().Run(r.Context())
	if err != nil {
		h.logger.Error("publishing run failed", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := PublishResponse{
		Status: string(result.Status),
		PRURL:  result.PRURL,
		Reason: result.Reason,
	}

	w.Header().Set("Content-Type", "application/json")
	if result.Status == types.StatusRejected {
		w.WriteHeader(http.StatusUnprocessableEntity)
	} else {
		w.WriteHeader(http.StatusCreated)
	}
	json.NewEncoder(w).Encode(resp)
}

// RegisterRoutes registers REST API routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/posts", h.PublishPost)
}
