package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	domain "github.com/example/taskboard/domain/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "mock.jwt.token.12345"

// fakeServer answers the subset of the API the tests exercise.
func fakeServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["password"] != "admin123" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"token": testToken,
			"user":  map[string]any{"id": 1, "email": body["email"], "name": "Admin User"},
		})
	})
	mux.HandleFunc("GET /api/tasks", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r) {
			return
		}
		q := r.URL.Query()
		assert.Equal(t, "high", q.Get("priority"))
		assert.Equal(t, "2", q.Get("page"))
		assert.False(t, q.Has("status"), "zero fields must not be sent")
		writeJSON(w, http.StatusOK, domain.Page{
			Data: []domain.Task{{ID: 4, Title: "Task 4", Priority: domain.PriorityHigh}},
			Meta: domain.PageMeta{Total: 11, Page: 2, Limit: 10, TotalPages: 2},
		})
	})
	mux.HandleFunc("PUT /api/tasks/{id}", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r) {
			return
		}
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]any{"status": "completed"}, body)
		writeJSON(w, http.StatusOK, domain.Task{ID: 7, Title: "Task 7", Status: domain.StatusCompleted})
	})
	mux.HandleFunc("DELETE /api/tasks/{id}", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r) {
			return
		}
		if r.PathValue("id") != "3" {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Task not found"})
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func authorized(w http.ResponseWriter, r *http.Request) bool {
	if r.Header.Get("Authorization") != "Bearer "+testToken {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid token"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClient_LoginPersistsSession(t *testing.T) {
	srv := fakeServer(t)
	path := filepath.Join(t.TempDir(), "taskctl", "session.yaml")

	session, err := LoadSession(path)
	require.NoError(t, err)
	c := New(session, WithBaseURL(srv.URL+"/api/"))

	user, err := c.Login(context.Background(), "admin@example.com", "admin123")
	require.NoError(t, err)
	assert.Equal(t, "Admin User", user.Name)

	reloaded, err := LoadSession(path)
	require.NoError(t, err)
	assert.Equal(t, testToken, reloaded.Token())
	require.NotNil(t, reloaded.User())
	assert.Equal(t, int64(1), reloaded.User().ID)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestClient_LoginRejected(t *testing.T) {
	srv := fakeServer(t)
	c := New(nil, WithBaseURL(srv.URL+"/api"))

	_, err := c.Login(context.Background(), "admin@example.com", "wrong")
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
	assert.Contains(t, err.Error(), "Invalid credentials")
	assert.Empty(t, c.Session().Token())
}

func TestClient_TaskCalls(t *testing.T) {
	srv := fakeServer(t)
	session := &Session{}
	require.NoError(t, session.Save(testToken, &SessionUser{ID: 1}))
	c := New(session, WithBaseURL(srv.URL+"/api"), WithTimeout(2*time.Second))
	ctx := context.Background()

	page, err := c.ListTasks(ctx, Query{Priority: "high", Page: 2})
	require.NoError(t, err)
	assert.Equal(t, 11, page.Meta.Total)
	require.Len(t, page.Data, 1)
	assert.Equal(t, int64(4), page.Data[0].ID)

	status := "completed"
	updated, err := c.UpdateTask(ctx, 7, TaskInput{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, updated.Status)

	require.NoError(t, c.DeleteTask(ctx, 3))

	err = c.DeleteTask(ctx, 9)
	assert.True(t, IsStatus(err, http.StatusNotFound))
	assert.Equal(t, testToken, session.Token(), "non-401 errors keep the session")
}

func TestClient_UnauthorizedClearsSession(t *testing.T) {
	srv := fakeServer(t)
	path := filepath.Join(t.TempDir(), "session.yaml")
	session, err := LoadSession(path)
	require.NoError(t, err)
	require.NoError(t, session.Save("stale-token", &SessionUser{ID: 2}))

	c := New(session, WithBaseURL(srv.URL+"/api"))
	_, err = c.ListTasks(context.Background(), Query{})
	assert.True(t, IsStatus(err, http.StatusUnauthorized))

	assert.Empty(t, session.Token())
	assert.Nil(t, session.User())
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "session file should be removed")
}

func TestLoadSession_Missing(t *testing.T) {
	session, err := LoadSession(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Empty(t, session.Token())
	assert.NoError(t, session.Clear())
}

func TestLoadSession_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	require.NoError(t, os.WriteFile(path, []byte("token: [unterminated"), 0o600))

	_, err := LoadSession(path)
	assert.Error(t, err)
}
