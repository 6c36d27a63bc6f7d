package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MKhiriev/go-list-sync/internal/utils"
)

// compressionLevel is the gzip level used for JSON responses.
const compressionLevel = 5

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)
	router.Use(middleware.Compress(compressionLevel, "application/json"))

	// routes without authorization
	router.Group(func(r chi.Router) {
		r.Get("/api/health", h.health)
		r.Get("/api/version/", h.getServerVersion)
		if h.metrics != nil {
			r.Method(http.MethodGet, "/metrics", h.metrics)
		}
	})

	// routes with authorization
	router.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Post("/api/groups", h.createGroup)
		r.Get("/api/groups", h.listGroups)
		r.Post("/api/groups/join", h.joinGroup)
		r.Get("/api/groups/{groupID}", h.getGroup)
		r.Get("/api/groups/{groupID}/history", h.getGroupHistory)
		r.Put("/api/groups/{groupID}/mode", h.setGroupMode)
		r.Delete("/api/groups/{groupID}/members/{memberID}", h.removeMember)
		r.Post("/api/groups/{groupID}/sync", h.triggerSync)

		r.Put("/api/credentials", h.storeCredential)
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteError(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteError(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return router
}
