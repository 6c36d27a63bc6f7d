package http

import (
	"net/http"

	"github.com/MKhiriev/go-list-sync/internal/utils"
)

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	report, err := h.services.SyncManager.Health(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "error building health report")
		return
	}

	utils.WriteJSON(w, report, http.StatusOK)
}
