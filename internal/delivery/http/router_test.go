package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"clinic-workflow/config"
	"clinic-workflow/internal/delivery/http/handler"
	"clinic-workflow/internal/delivery/http/middleware"
	"clinic-workflow/internal/domain/entity"
	"clinic-workflow/internal/repository/memory"
	"clinic-workflow/internal/service"
	"clinic-workflow/internal/usecase"
	"clinic-workflow/pkg/clock"
	"clinic-workflow/pkg/jwt"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

type testServer struct {
	router *mux.Router
	jwt    *jwt.JWTService
	audit  *memory.AuditLogRepository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), Protocol: 2})
	t.Cleanup(func() { _ = client.Close() })

	clk := clock.System()
	requestRepo := memory.NewServiceRequestRepository()
	notificationRepo := memory.NewNotificationRepository()
	auditRepo := memory.NewAuditLogRepository()
	priceRepo := memory.NewServicePriceRepository()

	counter := service.NewRedisUnreadCounter(notificationRepo, client, log)
	feed := service.NewRealtimeFeed(client, log)
	pricing := service.NewPricingService(priceRepo, client, time.Minute, log)
	audit := service.NewAuditService(log, auditRepo)
	dispatcher := service.NewNotificationDispatcher(notificationRepo, memory.NewUserRepository(), counter, feed, clk, service.DispatcherConfig{Shards: 2}, log)
	t.Cleanup(dispatcher.Stop)
	denylist := service.NewTokenDenylist(client)
	inbox := service.NewInboxService(notificationRepo, counter, feed, 50, log)

	jwtService := jwt.NewJWTService(config.JWTConfig{Secret: "test-secret", AccessExpiry: time.Hour})
	cors := middleware.NewCORSMiddleware()

	router := NewRouter(Handlers{
		Auth:            handler.NewAuthHandler(denylist, log),
		ServiceRequest:  handler.NewServiceRequestHandler(usecase.NewServiceRequestUsecase(log, clk, requestRepo, pricing, dispatcher, audit, service.NewNoopEventPublisher())),
		Queue:           handler.NewQueueHandler(usecase.NewQueueUsecase(log, requestRepo, pricing)),
		Notification:    handler.NewNotificationHandler(usecase.NewNotificationUsecase(log, clk, notificationRepo, dispatcher, counter, feed, inbox, 50), cors.Allows, log),
		ChangeLog:       handler.NewChangeLogHandler(usecase.NewChangeLogUsecase(log, memory.NewAppointmentChangeLogRepository(), dispatcher)),
		DeletionRequest: handler.NewDeletionRequestHandler(usecase.NewDeletionRequestUsecase(log, clk, memory.NewDeletionRequestRepository(), dispatcher, audit)),
		ServicePrice:    handler.NewServicePriceHandler(usecase.NewServicePriceUsecase(log, priceRepo, pricing, audit)),
		AuditLog:        handler.NewAuditLogHandler(usecase.NewAuditLogUsecase(log, auditRepo)),
	}, middleware.NewAuthMiddleware(jwtService, denylist, log), cors)

	return &testServer{router: router.Setup(), jwt: jwtService, audit: auditRepo}
}

func (s *testServer) token(t *testing.T, email, role string) string {
	t.Helper()
	return s.tokenFor(t, uuid.New(), email, role)
}

func (s *testServer) tokenFor(t *testing.T, userID uuid.UUID, email, role string) string {
	t.Helper()
	token, _, err := s.jwt.GenerateAccessToken(userID, email, role)
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func createBody(patientID uuid.UUID, email string) map[string]interface{} {
	return map[string]interface{}{
		"patient_id":    patientID.String(),
		"patient_email": email,
		"patient_name":  "Maya Haddad",
		"doctor_id":     uuid.NewString(),
		"doctor_name":   "Dr. Nasser",
		"service_type":  "lab",
		"price":         "80",
	}
}

func TestRouter_PaidRequestLifecycle(t *testing.T) {
	s := newTestServer(t)
	patientID := uuid.New()
	patient := s.tokenFor(t, patientID, "maya@example.com", entity.RolePatient)
	secretary := s.token(t, "desk@clinic.test", entity.RoleSecretary)
	lab := s.token(t, "lab1@clinic.test", entity.RoleLab)

	code, env := s.do(t, http.MethodPost, "/api/v1/service-requests", patient, createBody(patientID, "maya@example.com"))
	require.Equal(t, http.StatusCreated, code, env.Message)
	var created struct {
		ID     int64  `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "pending", created.Status)

	base := "/api/v1/service-requests/" + strconv.FormatInt(created.ID, 10)

	code, _ = s.do(t, http.MethodPost, base+"/confirm", patient, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, env = s.do(t, http.MethodPost, base+"/confirm", secretary, nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	assert.Contains(t, string(env.Data), `"status":"payment_required"`)

	code, env = s.do(t, http.MethodPost, base+"/confirm", secretary, nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.True(t, strings.HasPrefix(env.Message, "confirm"), env.Message)

	code, _ = s.do(t, http.MethodPatch, base+"/payment", secretary, map[string]string{"payment_status": "paid"})
	require.Equal(t, http.StatusOK, code)
	code, _ = s.do(t, http.MethodPost, base+"/confirm-payment", secretary, nil)
	require.Equal(t, http.StatusOK, code)

	code, env = s.do(t, http.MethodGet, "/api/v1/queues/lab", lab, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"total":1`)

	code, _ = s.do(t, http.MethodPost, base+"/start", lab, nil)
	require.Equal(t, http.StatusOK, code)
	code, env = s.do(t, http.MethodPost, base+"/complete", lab, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"status":"completed"`)

	code, _ = s.do(t, http.MethodGet, base, patient, nil)
	assert.Equal(t, http.StatusOK, code)

	code, env = s.do(t, http.MethodGet, "/api/v1/service-requests/mine", patient, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"total":1`)

	assert.Equal(t, []string{
		entity.AuditActionServiceRequestCreate,
		entity.AuditActionServiceRequestConfirm,
	}, s.audit.Actions()[:2])
}

func TestRouter_ErrorMapping(t *testing.T) {
	s := newTestServer(t)
	patient := s.token(t, "maya@example.com", entity.RolePatient)
	secretary := s.token(t, "desk@clinic.test", entity.RoleSecretary)

	code, _ := s.do(t, http.MethodGet, "/api/v1/service-requests/mine", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	body := createBody(uuid.New(), "not-an-email")
	code, env := s.do(t, http.MethodPost, "/api/v1/service-requests", patient, body)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, string(env.Error), "patient_email")

	code, _ = s.do(t, http.MethodPost, "/api/v1/service-requests/404/confirm", secretary, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = s.do(t, http.MethodGet, "/api/v1/management/service-requests", patient, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = s.do(t, http.MethodGet, "/api/v1/management/service-requests?status=pending,completed", secretary, nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = s.do(t, http.MethodGet, "/api/v1/admin/audit-logs", secretary, nil)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestRouter_LogoutRevokesToken(t *testing.T) {
	s := newTestServer(t)
	token := s.token(t, "desk@clinic.test", entity.RoleSecretary)

	code, env := s.do(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), "desk@clinic.test")

	code, _ = s.do(t, http.MethodPost, "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, code)

	code, env = s.do(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Token has been revoked", env.Message)
}

func TestRouter_PublicCatalogAndHealth(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(t, "root@clinic.test", entity.RoleAdmin)

	code, _ := s.do(t, http.MethodPut, "/api/v1/admin/service-prices", admin, map[string]interface{}{
		"service_type": "xray",
		"name":         "Chest X-ray",
		"price":        "120",
	})
	require.Equal(t, http.StatusOK, code)

	code, env := s.do(t, http.MethodGet, "/api/v1/service-prices?service_type=xray", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), "Chest X-ray")

	code, _ = s.do(t, http.MethodGet, "/api/v1/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
}
