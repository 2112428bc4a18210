package customers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sangkips/clientes-service/internal/db"
	"github.com/sangkips/clientes-service/internal/domains/customers/models"
	"github.com/sangkips/clientes-service/internal/handlers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(svc *Service) http.Handler {
	r := chi.NewRouter()
	h := &Handler{svc: svc}
	h.RegisterCustomerRoutes(r)
	return r
}

func doRequest(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeAPIResponse(t *testing.T, rec *httptest.ResponseRecorder) handlers.APIResponse {
	t.Helper()

	var resp handlers.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func TestHandler_RegisterLoginScenario(t *testing.T) {
	router := newTestRouter(NewService(connectedGuard(), newMemoryRepository().factory(), nil))

	rec := doRequest(t, router, http.MethodPost, "/register",
		`{"name":"Ana","taxId":"111.111.111-11","address":"Rua A","email":"ana@x.com","password":"p1"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"success":true,"message":"registered"}`, rec.Body.String())

	rec = doRequest(t, router, http.MethodPost, "/register",
		`{"name":"Ana 2","taxId":"999.999.999-99","address":"Rua Z","email":"ana@x.com","password":"p2"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	resp := decodeAPIResponse(t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, "EMAIL_TAKEN", resp.Code)

	rec = doRequest(t, router, http.MethodPost, "/login", `{"email":"ana@x.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", decodeAPIResponse(t, rec).Code)

	rec = doRequest(t, router, http.MethodPost, "/login", `{"email":"ana@x.com","password":"p1"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"success":true,"message":"login ok","customer":{"id":1,"name":"Ana"}}`, rec.Body.String())
}

func TestHandler_Register_DuplicateTaxID(t *testing.T) {
	router := newTestRouter(NewService(connectedGuard(), newMemoryRepository().factory(), nil))

	rec := doRequest(t, router, http.MethodPost, "/register",
		`{"name":"Ana","taxId":"111.111.111-11","address":"Rua A","email":"ana@x.com","password":"p1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/register",
		`{"name":"Outra","taxId":"111.111.111-11","address":"Rua B","email":"outra@x.com","password":"p2"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "TAX_ID_TAKEN", decodeAPIResponse(t, rec).Code)

	// Both duplicated: the email check runs first.
	rec = doRequest(t, router, http.MethodPost, "/register",
		`{"name":"Ana","taxId":"111.111.111-11","address":"Rua A","email":"ana@x.com","password":"p1"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "EMAIL_TAKEN", decodeAPIResponse(t, rec).Code)
}

func TestHandler_Login_SameResponseForUnknownEmailAndWrongPassword(t *testing.T) {
	router := newTestRouter(NewService(connectedGuard(), newMemoryRepository().factory(), nil))

	rec := doRequest(t, router, http.MethodPost, "/register",
		`{"name":"Ana","taxId":"111.111.111-11","address":"Rua A","email":"ana@x.com","password":"p1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	wrongPassword := doRequest(t, router, http.MethodPost, "/login", `{"email":"ana@x.com","password":"nope"}`)
	unknownEmail := doRequest(t, router, http.MethodPost, "/login", `{"email":"ghost@x.com","password":"p1"}`)

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, wrongPassword.Code, unknownEmail.Code)
	assert.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String())
}

func TestHandler_ListCustomers(t *testing.T) {
	repo := newMemoryRepository()
	repo.now = func() time.Time { return time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC) }
	router := newTestRouter(NewService(connectedGuard(), repo.factory(), nil))

	rec := doRequest(t, router, http.MethodGet, "/clientes", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	for _, body := range []string{
		`{"name":"Ana","taxId":"111.111.111-11","address":"Rua A","email":"ana@x.com","password":"hunter2-ana"}`,
		`{"name":"Bia","taxId":"222.222.222-22","address":"Rua B","email":"bia@x.com","password":"hunter2-bia"}`,
	} {
		require.Equal(t, http.StatusOK, doRequest(t, router, http.MethodPost, "/register", body).Code)
	}

	rec = doRequest(t, router, http.MethodGet, "/clientes", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "hunter2")
	assert.NotContains(t, rec.Body.String(), "password")

	var got []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, map[string]interface{}{
		"id":        float64(1),
		"name":      "Ana",
		"taxId":     "111.111.111-11",
		"address":   "Rua A",
		"email":     "ana@x.com",
		"createdAt": "2024-05-01T12:30:00Z",
	}, got[0])
	assert.Equal(t, float64(2), got[1]["id"])
}

func TestHandler_BadRequests(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		body     string
		wantCode string
		wantMsg  string
	}{
		{name: "register malformed json", path: "/register", body: `{"name":`, wantCode: "INVALID_REQUEST"},
		{name: "register wrong type", path: "/register", body: `{"name":42}`, wantCode: "INVALID_REQUEST"},
		{name: "register missing fields", path: "/register", body: `{"name":"Ana","address":"Rua A","password":"p1"}`, wantCode: "VALIDATION_FAILED", wantMsg: "taxId, email"},
		{name: "login empty body", path: "/login", body: `{}`, wantCode: "VALIDATION_FAILED", wantMsg: "email, password"},
		{name: "login null password", path: "/login", body: `{"email":"ana@x.com","password":null}`, wantCode: "VALIDATION_FAILED", wantMsg: "password"},
		{name: "login not json", path: "/login", body: `email=ana`, wantCode: "INVALID_REQUEST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockRepository{}
			router := newTestRouter(NewService(connectedGuard(), repoFactory(repo), nil))

			rec := doRequest(t, router, http.MethodPost, tt.path, tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			resp := decodeAPIResponse(t, rec)
			assert.Equal(t, tt.wantCode, resp.Code)
			assert.Contains(t, resp.Message, tt.wantMsg)
			assert.Empty(t, repo.emailCalls)
			assert.Empty(t, repo.loginCalls)
		})
	}
}

func TestHandler_Login_EmptyPasswordIsInvalidCredentials(t *testing.T) {
	router := newTestRouter(NewService(connectedGuard(), newMemoryRepository().factory(), nil))

	rec := doRequest(t, router, http.MethodPost, "/register",
		`{"name":"Ana","taxId":"111.111.111-11","address":"Rua A","email":"ana@x.com","password":"p1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	emptyPassword := doRequest(t, router, http.MethodPost, "/login", `{"email":"ana@x.com","password":""}`)
	wrongPassword := doRequest(t, router, http.MethodPost, "/login", `{"email":"ana@x.com","password":"nope"}`)

	assert.Equal(t, http.StatusUnauthorized, emptyPassword.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", decodeAPIResponse(t, emptyPassword).Code)
	assert.Equal(t, wrongPassword.Body.String(), emptyPassword.Body.String())
}

func TestHandler_Register_EmptyStringsReachTheStore(t *testing.T) {
	repo := newMemoryRepository()
	router := newTestRouter(NewService(connectedGuard(), repo.factory(), nil))

	rec := doRequest(t, router, http.MethodPost, "/register",
		`{"name":"","taxId":"111.111.111-11","address":"","email":"ana@x.com","password":""}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// The empty password is the stored credential.
	rec = doRequest(t, router, http.MethodPost, "/login", `{"email":"ana@x.com","password":""}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"success":true,"message":"login ok","customer":{"id":1,"name":""}}`, rec.Body.String())

	// Empty values still go through the duplicate checks.
	rec = doRequest(t, router, http.MethodPost, "/register",
		`{"name":"","taxId":"111.111.111-11","address":"","email":"","password":""}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "TAX_ID_TAKEN", decodeAPIResponse(t, rec).Code)
}

func TestHandler_DatabaseUnavailable(t *testing.T) {
	factory := func(models.DBTX) Repository {
		t.Fatal("store must not be touched while disconnected")
		return nil
	}
	router := newTestRouter(NewService(db.NewDisconnectedGuard[models.DBTX]("DATABASE_URL not set"), factory, nil))

	requests := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodPost, "/register", `{"name":"Ana","taxId":"111.111.111-11","address":"Rua A","email":"ana@x.com","password":"p1"}`},
		{http.MethodPost, "/login", `{"email":"ana@x.com","password":"p1"}`},
		{http.MethodGet, "/clientes", ""},
	}

	for _, req := range requests {
		rec := doRequest(t, router, req.method, req.path, req.body)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, req.path)
		resp := decodeAPIResponse(t, rec)
		assert.False(t, resp.Success)
		assert.Equal(t, "DATABASE_UNAVAILABLE", resp.Code)
		assert.Equal(t, "database unavailable", resp.Message)
	}
}

func TestHandler_StoreErrorDoesNotLeakDetail(t *testing.T) {
	raw := errors.New(`pq: password authentication failed for user "admin"`)

	requests := []struct {
		name   string
		repo   *mockRepository
		method string
		path   string
		body   string
	}{
		{"register", &mockRepository{emailExistsErr: raw}, http.MethodPost, "/register", `{"name":"Ana","taxId":"1","address":"Rua A","email":"ana@x.com","password":"p1"}`},
		{"login", &mockRepository{loginErr: raw}, http.MethodPost, "/login", `{"email":"ana@x.com","password":"p1"}`},
		{"list", &mockRepository{listErr: raw}, http.MethodGet, "/clientes", ""},
	}

	for _, tt := range requests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(NewService(connectedGuard(), repoFactory(tt.repo), nil))

			rec := doRequest(t, router, tt.method, tt.path, tt.body)

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.Equal(t, "INTERNAL_ERROR", decodeAPIResponse(t, rec).Code)
			assert.NotContains(t, rec.Body.String(), "authentication")
			assert.NotContains(t, rec.Body.String(), "admin")
		})
	}
}
