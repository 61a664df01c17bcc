package admin

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/nitzanf/fakergame-go/internal/game"
	"github.com/nitzanf/fakergame-go/internal/middleware"
	"github.com/nitzanf/fakergame-go/internal/model"
	"github.com/nitzanf/fakergame-go/internal/tasks"
)

// StatusSource supplies point-in-time game snapshots
type StatusSource interface {
	Status() game.Status
}

// RouterConfig holds dependencies for the admin router
type RouterConfig struct {
	Logger *slog.Logger
	Game   StatusSource
	Tasks  tasks.ServiceInterface
}

// NewRouter creates the admin router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	r.HandleFunc("/healthz", healthHandler).Methods(http.MethodGet)
	r.HandleFunc("/status", statusHandler(cfg.Game)).Methods(http.MethodGet)
	r.HandleFunc("/tasks", tasksHandler(cfg.Tasks)).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func statusHandler(source StatusSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, source.Status())
	}
}

// tasksHandler reports the corpus size per category
func tasksHandler(service tasks.ServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counts := make(map[string]int, len(model.Categories))
		for _, category := range model.Categories {
			count, err := service.Count(r.Context(), category)
			if err != nil {
				writeJSON(w, http.StatusInternalServerError, map[string]string{
					"error": err.Error(),
				})
				return
			}
			counts[string(category)] = count
		}
		writeJSON(w, http.StatusOK, counts)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
