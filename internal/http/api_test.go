package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-registry/internal/auth"
	"task-registry/internal/repository/memory"
	"task-registry/internal/service"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := memory.NewUserRepository()
	userService := service.NewUserService(users)
	taskService := service.NewTaskService(memory.NewTaskRepository(), users)
	tokens := auth.NewTokenManager("test-secret", time.Hour)

	router := gin.New()
	NewHandler(taskService, userService, tokens).RegisterRoutes(router)
	return router
}

func doRequest(router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func registerAndLogin(t *testing.T, router *gin.Engine, username, password, name string) string {
	t.Helper()

	w := doRequest(router, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": username, "password": password, "name": name,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doRequest(router, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": username, "password": password,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestRegisterDuplicate(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(router, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "alice", "password": "secret", "name": "Alice",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(router, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "alice", "password": "other", "name": "Impostor",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegisterDefaultsDisplayName(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(router, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "alice", "password": "secret",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "New User", resp.Name)
}

func TestRegisterValidation(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(router, http.MethodPost, "/api/auth/register", "", gin.H{"username": "alice"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginFailures(t *testing.T) {
	router := newTestRouter(t)
	registerAndLogin(t, router, "alice", "secret", "Alice")

	w := doRequest(router, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": "alice", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(router, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": "nobody", "password": "secret",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTasksRequireSession(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(router, http.MethodGet, "/api/tasks", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(router, http.MethodGet, "/api/tasks", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutRevokesToken(t *testing.T) {
	router := newTestRouter(t)
	token := registerAndLogin(t, router, "alice", "secret", "Alice")

	w := doRequest(router, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodPost, "/api/auth/logout", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	// the token still verifies, but the session behind it is gone
	w = doRequest(router, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateAndGetTask(t *testing.T) {
	router := newTestRouter(t)
	token := registerAndLogin(t, router, "alice", "secret", "Alice Smith")

	w := doRequest(router, http.MethodPost, "/api/tasks", token, gin.H{
		"title":       "Ship release",
		"description": "cut the tag",
		"due_date":    "2024-05-01",
		"assignee":    "alice",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created TaskResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "Ship release", created.Title)
	assert.False(t, created.Completed)
	require.NotNil(t, created.DueDate)
	assert.Equal(t, "2024-05-01", *created.DueDate)
	require.NotNil(t, created.Assignee)
	assert.Equal(t, "alice", created.Assignee.Username)
	assert.Equal(t, "Alice Smith", created.Assignee.Name)

	w = doRequest(router, http.MethodGet, "/api/tasks/Ship%20release", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodGet, "/api/tasks/missing", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateTaskRejectsBadDate(t *testing.T) {
	router := newTestRouter(t)
	token := registerAndLogin(t, router, "alice", "secret", "Alice")

	w := doRequest(router, http.MethodPost, "/api/tasks", token, gin.H{
		"title":    "t",
		"due_date": "05/01/2024",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "YYYY-MM-DD")
}

func TestCreateTaskRejectsUnknownAssignee(t *testing.T) {
	router := newTestRouter(t)
	token := registerAndLogin(t, router, "alice", "secret", "Alice")

	w := doRequest(router, http.MethodPost, "/api/tasks", token, gin.H{
		"title":    "t",
		"assignee": "ghost",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "ghost")
}

func TestUpdateTaskRenameDivergence(t *testing.T) {
	router := newTestRouter(t)
	token := registerAndLogin(t, router, "alice", "secret", "Alice")

	w := doRequest(router, http.MethodPost, "/api/tasks", token, gin.H{"title": "T1", "description": "d1"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(router, http.MethodPatch, "/api/tasks/T1", token, gin.H{"title": "T2"})
	require.Equal(t, http.StatusOK, w.Code)

	var updated TaskResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "T2", updated.Title)

	// the store key is still the original title
	w = doRequest(router, http.MethodDelete, "/api/tasks/T2", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(router, http.MethodDelete, "/api/tasks/T1", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpdateTaskMissing(t *testing.T) {
	router := newTestRouter(t)
	token := registerAndLogin(t, router, "alice", "secret", "Alice")

	w := doRequest(router, http.MethodPatch, "/api/tasks/missing", token, gin.H{"description": "d"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFilterTasksQuery(t *testing.T) {
	router := newTestRouter(t)
	token := registerAndLogin(t, router, "alice", "secret", "Alice")

	for _, task := range []gin.H{
		{"title": "a", "due_date": "2024-05-01"},
		{"title": "b", "due_date": "2024-05-01"},
		{"title": "c", "due_date": "2024-06-01"},
	} {
		w := doRequest(router, http.MethodPost, "/api/tasks", token, task)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doRequest(router, http.MethodPatch, "/api/tasks/b", token, gin.H{"completed": true})
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodGet, "/api/tasks?completed=true&due_date=2024-05-01", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var tasks []TaskResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tasks))
	require.Len(t, tasks, 1)
	assert.Equal(t, "b", tasks[0].Title)

	// no predicates returns the full set
	w = doRequest(router, http.MethodGet, "/api/tasks", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tasks))
	assert.Len(t, tasks, 3)

	w = doRequest(router, http.MethodGet, "/api/tasks?completed=maybe", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, http.MethodGet, "/api/tasks?due_date=garbage", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchTasksQuery(t *testing.T) {
	router := newTestRouter(t)
	token := registerAndLogin(t, router, "bob", "hunter2", "Bob")

	w := doRequest(router, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "alice", "password": "secret", "name": "Alice Smith",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	for _, task := range []gin.H{
		{"title": "Write report", "description": "quarterly numbers"},
		{"title": "Ship release", "description": "cut the tag", "assignee": "alice"},
	} {
		w := doRequest(router, http.MethodPost, "/api/tasks", token, task)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w = doRequest(router, http.MethodGet, "/api/tasks/search?q=ALICE", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var tasks []TaskResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tasks))
	require.Len(t, tasks, 1)
	assert.Equal(t, "Ship release", tasks[0].Title)

	w = doRequest(router, http.MethodGet, "/api/tasks/search", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(router, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusAccepted, w.Code)
}
