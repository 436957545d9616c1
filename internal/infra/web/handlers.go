// internal/infra/web/handlers.go
package web

import (
	"encoding/json"
	"net/http"

	"homework_notification_bot/internal/app"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// Handler serves the observability endpoints: liveness and a read-only
// snapshot of the poller state.
type Handler struct {
	poller *app.PollerService
	logger *logrus.Logger
}

func NewHandler(poller *app.PollerService, logger *logrus.Logger) *Handler {
	return &Handler{
		poller: poller,
		logger: logger,
	}
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (h *Handler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.poller.Snapshot()); err != nil {
		h.logger.Errorf("Failed to encode status response: %v", err)
	}
}

func (h *Handler) SetupRoutes() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/healthz", h.HealthHandler).Methods("GET")
	router.HandleFunc("/status", h.StatusHandler).Methods("GET")
	return router
}
