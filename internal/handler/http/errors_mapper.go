package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-list-sync/internal/logger"
	"github.com/MKhiriev/go-list-sync/internal/service"
	"github.com/MKhiriev/go-list-sync/internal/utils"
)

// errorStatuses is checked in order. Specific sentinels come before the
// taxonomy roots they wrap.
var errorStatuses = []struct {
	target error
	status int
}{
	{service.ErrForbidden, http.StatusForbidden},
	{service.ErrGroupNotFound, http.StatusNotFound},
	{service.ErrMemberNotFound, http.StatusNotFound},
	{service.ErrAlreadyMember, http.StatusConflict},
	{service.ErrNeedsMaster, http.StatusConflict},
	{service.ErrValidation, http.StatusBadRequest},
	{service.ErrCredential, http.StatusUnprocessableEntity},
	{service.ErrTokenIsExpiredOrInvalid, http.StatusUnauthorized},
	{service.ErrShuttingDown, http.StatusServiceUnavailable},
	{service.ErrPersistence, http.StatusInternalServerError},
}

func statusFromError(err error) int {
	for _, e := range errorStatuses {
		if errors.Is(err, e.target) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

// writeServiceError logs err and answers with the status it maps to. Server
// errors are reported to the caller without their details.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	status := statusFromError(err)

	event := logger.FromRequest(r).Warn()
	if status >= http.StatusInternalServerError {
		event = logger.FromRequest(r).Error()
	}
	event.Err(err).Int("status", status).Msg(msg)

	if status >= http.StatusInternalServerError {
		utils.WriteError(w, http.StatusText(status), status)
		return
	}
	utils.WriteError(w, err.Error(), status)
}
