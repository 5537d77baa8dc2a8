package rest

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rocketscienceinc/tictactoe-cluster/internal/metrics"
)

// Register - liveness and Prometheus exposition.
func Register(router *mux.Router) {
	router.HandleFunc("/ping", pingHandler).Methods(http.MethodGet)
	router.HandleFunc("/metrics", metricsHandler).Methods(http.MethodGet)
}

func pingHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}

func metricsHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	metrics.WritePrometheus(w)
}
