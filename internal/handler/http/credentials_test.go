package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-list-sync/internal/service"
	"github.com/MKhiriev/go-list-sync/models"
)

func TestStoreCredential(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "stored", wantStatus: http.StatusNoContent},
		{name: "empty secret", err: service.ErrInvalidInput, wantStatus: http.StatusBadRequest},
		{name: "storage failure", err: service.ErrPersistence, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newHandlerFixture(t)
			f.as("alice")
			f.credentials.EXPECT().StoreCredential(gomock.Any(), "alice", "s3cret").Return(tt.err)

			w := f.do(http.MethodPut, "/api/credentials", models.StoreCredentialRequest{Secret: "s3cret"})

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}

	t.Run("invalid JSON", func(t *testing.T) {
		f := newHandlerFixture(t)
		f.as("alice")

		w := f.do(http.MethodPut, "/api/credentials", "not json")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
