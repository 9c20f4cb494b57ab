package userControllers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/auth"
	"github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/middleware"
	"github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/models"
	"github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/store"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func init() {
	gin.SetMode(gin.TestMode)
}

type failingUsers struct {
	store.UserStore
}

func (failingUsers) UpdateUserProfile(ctx context.Context, id string, update store.ProfileUpdate) (models.User, error) {
	return models.User{}, errors.New("database error")
}

// router signs every request in as userID.
func router(users store.UserStore, userID string) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(middleware.UserIDKey, userID) })
	r.GET("/profile", GetProfileHandler(users, quiet))
	r.PUT("/profile", UpdateProfileHandler(users, quiet))
	r.GET("/user-auth", AuthCheckHandler)
	return r
}

func newUsers(t *testing.T) *store.Memory {
	t.Helper()
	hash, err := auth.HashPassword("oldpass")
	require.NoError(t, err)
	s := store.NewMemory()
	_, err = s.CreateUser(context.Background(), models.User{
		ID: "u1", Name: "John", Email: "john@test.com", Password: hash, Phone: "123", Address: "addr",
	})
	require.NoError(t, err)
	return s
}

func put(r http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPut, "/profile", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthCheck(t *testing.T) {
	w := httptest.NewRecorder()
	router(store.NewMemory(), "u1").ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/user-auth", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())
}

func TestGetProfile(t *testing.T) {
	users := newUsers(t)

	w := httptest.NewRecorder()
	router(users, "u1").ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/profile", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"user":{"_id":"u1","name":"John","email":"john@test.com","phone":"123","address":"addr","role":0}}`, w.Body.String())

	w = httptest.NewRecorder()
	router(users, "ghost").ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/profile", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateProfileKeepsUnsetFields(t *testing.T) {
	users := newUsers(t)

	w := put(router(users, "u1"), `{"phone":"9999999"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"success": true,
		"message": "Profile Updated Successfully",
		"updatedUser": {"_id":"u1","name":"John","email":"john@test.com","phone":"9999999","address":"addr","role":0}
	}`, w.Body.String())

	stored, err := users.GetUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, auth.ComparePassword("oldpass", stored.Password))
}

func TestUpdateProfilePassword(t *testing.T) {
	cases := []struct {
		password string
		status   int
	}{
		{"five1", http.StatusBadRequest},
		{"six123", http.StatusOK},
		{"seven12", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.password, func(t *testing.T) {
			users := newUsers(t)
			w := put(router(users, "u1"), `{"password":"`+tc.password+`"}`)
			assert.Equal(t, tc.status, w.Code)

			stored, err := users.GetUser(context.Background(), "u1")
			require.NoError(t, err)
			assert.Equal(t, tc.status == http.StatusOK, auth.ComparePassword(tc.password, stored.Password))
		})
	}
}

func TestUpdateProfileErrors(t *testing.T) {
	users := newUsers(t)

	w := put(router(users, "u1"), `{"name":"  "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = put(router(users, "u1"), `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = put(router(users, "ghost"), `{"name":"x"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = put(router(failingUsers{}, "u1"), `{"name":"x"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Error While Updating Profile")
}
