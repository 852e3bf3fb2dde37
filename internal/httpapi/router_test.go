package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mesh-intelligence/pmstore/internal/auth"
	"github.com/mesh-intelligence/pmstore/internal/config"
	"github.com/mesh-intelligence/pmstore/internal/logging"
	"github.com/mesh-intelligence/pmstore/internal/sqlite"
	"github.com/mesh-intelligence/pmstore/pkg/types"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

var openCORS = config.CORSConfig{
	Origins:          []string{"*"},
	AllowMethods:     []string{"*"},
	AllowHeaders:     []string{"*"},
	AllowCredentials: true,
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	return newTestRouterWith(t, config.ServerConfig{CORS: openCORS})
}

func newTestRouterWith(t *testing.T, cfg config.ServerConfig) *gin.Engine {
	t.Helper()
	b := sqlite.NewBackend(
		sqlite.WithHasher(auth.NewBcryptHasher(bcrypt.MinCost)),
		sqlite.WithLogger(logging.Discard()),
	)
	require.NoError(t, b.Open(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))
	t.Cleanup(func() { b.Close() })
	return NewRouter(b, logging.Discard(), cfg)
}

func do(t *testing.T, r http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func createdID(t *testing.T, env envelope) int64 {
	t.Helper()
	var row struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &row))
	require.NotZero(t, row.ID)
	return row.ID
}

const userBody = `{"username":"alice","email":"alice@example.com","password":"wonderland","role":"admin"}`

func TestRouter_Banner(t *testing.T) {
	r := newTestRouter(t)
	w, _ := do(t, r, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pmstore")
}

func TestRouter_CreateUser(t *testing.T) {
	r := newTestRouter(t)

	w, env := do(t, r, http.MethodPost, "/api/users", userBody)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, http.StatusCreated, env.Code)

	var user map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &user))
	assert.Equal(t, "alice", user["username"])
	assert.Equal(t, true, user["is_active"], "is_active defaults to true")
	assert.NotContains(t, user, "password")
	assert.NotContains(t, user, "hashed_password")
	assert.NotContains(t, user, "PasswordHash")

	w, _ = do(t, r, http.MethodPost, "/api/users", userBody)
	assert.Equal(t, http.StatusBadRequest, w.Code, "duplicate username")
}

func TestRouter_RequestID(t *testing.T) {
	r := newTestRouter(t)

	w, _ := do(t, r, http.MethodGet, "/api/users", "")
	id, err := uuid.Parse(w.Header().Get(HeaderRequestID))
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.Header.Set(HeaderRequestID, "caller-supplied")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "caller-supplied", rec.Header().Get(HeaderRequestID))
}

func TestRouter_ErrorMapping(t *testing.T) {
	r := newTestRouter(t)
	_, env := do(t, r, http.MethodPost, "/api/users", userBody)
	admin := createdID(t, env)

	require.Equal(t, int64(1), admin)
	_, env = do(t, r, http.MethodPost, "/api/projects",
		`{"name":"Survey","start_date":"2024-03-01","status":"active","created_by":1}`)
	createdID(t, env)
	_, env = do(t, r, http.MethodPost, "/api/tasks",
		`{"project_id":1,"title":"Check","status":"pending","priority":"low","created_by":1}`)
	createdID(t, env)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"unknown table", http.MethodGet, "/api/widgets", "", http.StatusNotFound},
		{"missing row", http.MethodGet, "/api/users/99", "", http.StatusNotFound},
		{"bad id", http.MethodGet, "/api/users/abc", "", http.StatusBadRequest},
		{"bad skip", http.MethodGet, "/api/users?skip=-1", "", http.StatusBadRequest},
		{"bad limit", http.MethodGet, "/api/users?limit=many", "", http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/api/users", `{"username":"bob","nickname":"b"}`, http.StatusBadRequest},
		{"malformed json", http.MethodPost, "/api/users", `{"username":`, http.StatusBadRequest},
		{"invalid status", http.MethodPatch, "/api/projects/1", `{"status":"archived"}`, http.StatusBadRequest},
		{"immutable field", http.MethodPatch, "/api/projects/1", `{"created_by":2}`, http.StatusBadRequest},
		{"dangling project", http.MethodPost, "/api/tasks",
			`{"project_id":42,"title":"Lost","status":"pending","priority":"low","created_by":1}`, http.StatusUnprocessableEntity},
		{"comment with two targets", http.MethodPost, "/api/comments",
			`{"content":"hi","task_id":1,"document_id":1,"created_by":1}`, http.StatusUnprocessableEntity},
		{"referenced project", http.MethodDelete, "/api/projects/1", "", http.StatusConflict},
		{"delete missing", http.MethodDelete, "/api/documents/5", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := do(t, r, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
			assert.Equal(t, tt.want, env.Code)
			assert.NotEmpty(t, env.Message)
		})
	}
}

func TestRouter_ListAndUpdate(t *testing.T) {
	r := newTestRouter(t)
	do(t, r, http.MethodPost, "/api/users", userBody)
	for _, name := range []string{"Alpha", "Beta", "Gamma"} {
		w, _ := do(t, r, http.MethodPost, "/api/projects",
			`{"name":"`+name+`","start_date":"2024-03-01","status":"planning","created_by":1}`)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	_, env := do(t, r, http.MethodGet, "/api/projects?skip=1&limit=1", "")
	var page []types.Project
	require.NoError(t, json.Unmarshal(env.Data, &page))
	require.Len(t, page, 1)
	assert.Equal(t, "Beta", page[0].Name)

	_, env = do(t, r, http.MethodGet, "/api/projects", "")
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Len(t, page, 3)

	w, env := do(t, r, http.MethodPatch, "/api/projects/2", `{"status":"active","end_date":"2024-12-31"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var p types.Project
	require.NoError(t, json.Unmarshal(env.Data, &p))
	assert.Equal(t, "Beta", p.Name)
	assert.Equal(t, types.ProjectStatusActive, p.Status)
	require.NotNil(t, p.EndDate)
	assert.Equal(t, "2024-12-31", p.EndDate.String())

	w, _ = do(t, r, http.MethodPut, "/api/projects/2", `{"end_date":null}`)
	require.Equal(t, http.StatusOK, w.Code)
	_, env = do(t, r, http.MethodGet, "/api/projects/2", "")
	require.NoError(t, json.Unmarshal(env.Data, &p))
	assert.Nil(t, p.EndDate)

	w, _ = do(t, r, http.MethodDelete, "/api/projects/3", "")
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = do(t, r, http.MethodGet, "/api/projects/3", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
	assert.Equal(t, http.StatusBadRequest, statusFor(types.ErrUnknownField))
}

func TestRouter_CORS(t *testing.T) {
	r := newTestRouter(t)

	t.Run("echoes the origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("answers preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/tasks/1", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
		req.Header.Set("Access-Control-Request-Headers", "content-type")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPatch)
		assert.Equal(t, "content-type", w.Header().Get("Access-Control-Allow-Headers"))
		assert.Zero(t, w.Body.Len())
	})

	t.Run("no origin header", func(t *testing.T) {
		w, _ := do(t, r, http.MethodGet, "/api/users", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestRouter_CORSOriginList(t *testing.T) {
	r := newTestRouterWith(t, config.ServerConfig{CORS: config.CORSConfig{
		Origins:      []string{"https://app.example.com"},
		AllowMethods: []string{http.MethodGet},
		AllowHeaders: []string{"Content-Type"},
	}})

	allowed := httptest.NewRequest(http.MethodOptions, "/api/users", nil)
	allowed.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, allowed)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, http.MethodGet, w.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type", w.Header().Get("Access-Control-Allow-Headers"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))

	other := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	other.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, other)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
