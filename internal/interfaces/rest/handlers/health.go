package handlers

import (
	"net/http"

	"github.com/DanielPopoola/tourvista-payments/internal/interfaces/rest"
)

// @Summary      Health check
// @Tags         health
// @Produce      json
// @Success      200  {object}  rest.APIResponse
// @Failure      503  {object}  rest.APIResponse
// @Router       /health [get]
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.health.Ping(r.Context()); err != nil {
		h.logger.Error("health check failed", "error", err)
		rest.WriteJSON(w, http.StatusServiceUnavailable, &rest.APIError{
			Code:    "UNAVAILABLE",
			Message: "database unreachable",
		})
		return
	}
	rest.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
