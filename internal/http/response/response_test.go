package response

import (
	"github.com/go-json-experiment/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coverscafe/covers-server/internal/errors"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	Success(rec, map[string]string{"hello": "world"}, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	env := decode(t, rec)
	assert.True(t, env.Success)
	assert.Empty(t, env.Error)
}

func TestDomainError_MapsCodeToStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", errors.Validation("bad input"), http.StatusBadRequest, "VALIDATION"},
		{"not found", errors.NotFound("missing"), http.StatusNotFound, "NOT_FOUND"},
		{"conflict", errors.Conflict("duplicate"), http.StatusConflict, "CONFLICT"},
		{"expired", errors.Expired("window closed"), http.StatusGone, "EXPIRED"},
		{"unauthorized", errors.Unauthorized("no"), http.StatusUnauthorized, "UNAUTHORIZED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			DomainError(rec, tt.err, nil)

			assert.Equal(t, tt.status, rec.Code)
			env := decode(t, rec)
			assert.False(t, env.Success)
			assert.Equal(t, tt.code, env.Code)
		})
	}
}

func TestDomainError_HidesUnknownErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	DomainError(rec, errors.New("sqlite: disk I/O error at page 8123"), nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, "internal error", env.Error, "internals never leak to clients")
}

func TestDomainError_UnwrapsWrappedErrors(t *testing.T) {
	wrapped := errors.Wrap(errors.New("root cause"), errors.CodeExpired, "undo window has closed")

	rec := httptest.NewRecorder()
	DomainError(rec, wrapped, nil)

	assert.Equal(t, http.StatusGone, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, "undo window has closed", env.Error, "the cause stays server-side")
}
