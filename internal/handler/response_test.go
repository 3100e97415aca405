package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/jwalitptl/ward-api/pkg/errors"
)

func TestRespondErrorStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", apperrors.NewValidation("bad input"), http.StatusBadRequest},
		{"invalid transition", apperrors.NewInvalidTransition("not in labor"), http.StatusConflict},
		{"room unavailable", apperrors.NewRoomUnavailable("Labor Room 1"), http.StatusConflict},
		{"not found", apperrors.NewNotFound("patient", nil), http.StatusNotFound},
		{"template not found", apperrors.NewTemplateNotFound(nil), http.StatusNotFound},
		{"unauthorized", apperrors.NewUnauthorized(nil), http.StatusUnauthorized},
		{"forbidden", apperrors.NewForbidden("no"), http.StatusForbidden},
		{"store", apperrors.NewStore("insert", errors.New("boom")), http.StatusInternalServerError},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			RespondError(c, tt.err)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}
