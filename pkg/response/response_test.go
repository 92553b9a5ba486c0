package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"clinic-workflow/pkg/apperror"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestFromError_StatusByKind(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", apperror.Validation("create service request", "invalid request", map[string]string{"patient_email": "patient_email must be a valid email address"}), http.StatusBadRequest},
		{"transition", apperror.InvalidTransition("confirm service request", "request is completed"), http.StatusConflict},
		{"not found", apperror.NotFound("get service request", "service request 9 not found"), http.StatusNotFound},
		{"permission", apperror.Permission("confirm service request", "role patient may not confirm"), http.StatusForbidden},
		{"dependency", apperror.Dependency("list notifications", errors.New("dial tcp: refused")), http.StatusBadGateway},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			FromError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.False(t, decode(t, rec).Success)
		})
	}
}

func TestFromError_MessageNamesOperation(t *testing.T) {
	rec := httptest.NewRecorder()
	FromError(rec, apperror.Validation("create service request", "invalid request", map[string]string{"patient_email": "patient_email must be a valid email address"}))

	body := decode(t, rec)
	assert.Equal(t, "create service request: invalid request", body.Message)
	assert.Equal(t, map[string]interface{}{"patient_email": "patient_email must be a valid email address"}, body.Error)
}

func TestFromError_DependencyHidesStoreMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	cause := &pgconn.PgError{Code: apperror.CodeUndefinedTable, Message: `relation "notifications" does not exist`}
	FromError(rec, apperror.Dependency("list notifications", cause))

	body := decode(t, rec)
	assert.Equal(t, "list notifications: dependency failure", body.Message)
	assert.Equal(t, map[string]interface{}{"code": apperror.CodeUndefinedTable}, body.Error)
}
