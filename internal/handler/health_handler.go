package handler

import (
	"context"
	"net/http"
	"time"

	"go-vidtube/pkg/apierror"
)

type pinger interface {
	Health(ctx context.Context) error
}

type HealthHandler struct {
	db pinger
}

func NewHealthHandler(db pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Health(ctx); err != nil {
		return apierror.New(http.StatusServiceUnavailable, "Database unavailable").WithCause(err)
	}

	return writeSuccess(w, http.StatusOK, map[string]string{"status": "ok"}, "Healthy")
}
