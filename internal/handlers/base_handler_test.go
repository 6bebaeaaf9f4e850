package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/edstack/exam-service/internal/services"
	"github.com/edstack/exam-service/internal/utils"
)

func newErrorContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func TestHandleServiceErrorStatusMapping(t *testing.T) {
	h := NewBaseHandler(utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "not found", err: services.ErrTestNotFound, want: http.StatusNotFound},
		{name: "wrapped not found", err: fmt.Errorf("loading attempt: %w", services.ErrAttemptNotFound), want: http.StatusNotFound},
		{name: "duplicate attempt is a bad request", err: services.ErrAttemptCompleted, want: http.StatusBadRequest},
		{name: "duplicate email is a bad request", err: services.ErrDuplicateEmail, want: http.StatusBadRequest},
		{name: "illegal transition", err: services.NewValidationError("cannot publish without questions"), want: http.StatusBadRequest},
		{name: "expired attempt", err: services.ErrAttemptExpired, want: http.StatusBadRequest},
		{name: "permission", err: services.NewPermissionError(7, 1, "test", "update", "not owner"), want: http.StatusForbidden},
		{name: "bad credentials", err: services.ErrInvalidCredentials, want: http.StatusUnauthorized},
		{name: "disabled account", err: services.ErrAccountDisabled, want: http.StatusForbidden},
		{name: "unexpected", err: errors.New("connection refused"), want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newErrorContext(t)
			h.handleServiceError(c, tt.err)
			assert.Equal(t, tt.want, w.Code)
			assert.Contains(t, w.Body.String(), `"success":false`)
		})
	}
}
