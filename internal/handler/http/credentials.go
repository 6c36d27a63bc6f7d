package http

import (
	"encoding/json"
	"net/http"

	"github.com/MKhiriev/go-list-sync/internal/logger"
	"github.com/MKhiriev/go-list-sync/internal/utils"
	"github.com/MKhiriev/go-list-sync/models"
)

// storeCredential seals the caller's list-service secret. The body is never
// logged.
func (h *Handler) storeCredential(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	accountID, ok := utils.GetAccountIDFromContext(ctx)
	if !ok {
		log.Error().Str("func", "*Handler.storeCredential").Msg(ErrNoAccountID.Error())
		utils.WriteError(w, ErrNoAccountID.Error(), http.StatusUnauthorized)
		return
	}

	var body models.StoreCredentialRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		log.Err(err).Str("func", "*Handler.storeCredential").Msg(ErrInvalidJSON.Error())
		utils.WriteError(w, ErrInvalidJSON.Error(), http.StatusBadRequest)
		return
	}

	if err := h.services.CredentialService.StoreCredential(ctx, accountID, body.Secret); err != nil {
		writeServiceError(w, r, err, "error storing credential")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
