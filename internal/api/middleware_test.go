package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mzalewski-wsm/studium/internal/database"
)

func TestErrorHandler_PanicRecovery(t *testing.T) {
	app := newTestApp(t, &database.MockStudiumRepository{})

	handler := app.errorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "close", rr.Header().Get("Connection"))
}

func Test_errorHandler_NoPanic(t *testing.T) {
	app := newTestApp(t, &database.MockStudiumRepository{})

	handler := app.errorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTeapot, rr.Code)
}

func Test_authMiddleware(t *testing.T) {
	dbUser := database.User{
		Id:    primitive.NewObjectID(),
		Roles: map[string]int{"User": database.RoleUser, "Teacher": database.RoleTeacher},
	}

	t.Run("valid token", func(t *testing.T) {
		app := newTestApp(t, &database.MockStudiumRepository{})

		token, err := app.createJwtForSession(dbUser, accessTokenExpiration)
		require.NoError(t, err)

		var gotUserId string
		var gotRoles map[string]int
		handler := app.authMiddleware(func(w http.ResponseWriter, r *http.Request) {
			gotUserId, _ = UserId(r.Context())
			gotRoles, _ = Roles(r.Context())
			w.WriteHeader(http.StatusOK)
		})

		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		handler(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, dbUser.Id.Hex(), gotUserId)
		assert.Equal(t, dbUser.Roles, gotRoles)
		assert.Contains(t, rr.Header().Get("Cache-Control"), "no-store")
	})

	t.Run("missing header", func(t *testing.T) {
		app := newTestApp(t, &database.MockStudiumRepository{})

		handler := app.authMiddleware(func(w http.ResponseWriter, r *http.Request) {
			t.Error("expected the handler not to be called")
		})

		rr := httptest.NewRecorder()
		handler(rr, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		app := newTestApp(t, &database.MockStudiumRepository{})

		handler := app.authMiddleware(func(w http.ResponseWriter, r *http.Request) {
			t.Error("expected the handler not to be called")
		})

		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer not.a.jwt")
		handler(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("token signed with another key", func(t *testing.T) {
		app := newTestApp(t, &database.MockStudiumRepository{})
		other := newTestApp(t, &database.MockStudiumRepository{})
		other.signingKey = []byte("another-key")

		token, err := other.createJwtForSession(dbUser, accessTokenExpiration)
		require.NoError(t, err)

		handler := app.authMiddleware(func(w http.ResponseWriter, r *http.Request) {
			t.Error("expected the handler not to be called")
		})

		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		handler(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func Test_verifyRoles(t *testing.T) {
	tcases := []struct {
		name         string
		roles        map[string]int
		required     []int
		expectedCode int
	}{
		{
			name:         "role granted",
			roles:        map[string]int{"Teacher": database.RoleTeacher},
			required:     []int{database.RoleTeacher, database.RoleAdmin},
			expectedCode: http.StatusOK,
		},
		{
			name:         "role missing",
			roles:        map[string]int{"User": database.RoleUser},
			required:     []int{database.RoleAdmin},
			expectedCode: http.StatusForbidden,
		},
		{
			name:         "no session",
			roles:        nil,
			required:     []int{database.RoleAdmin},
			expectedCode: http.StatusUnauthorized,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp(t, &database.MockStudiumRepository{})

			handler := app.verifyRoles(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}, tc.required...)

			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.roles != nil {
				req = withSession(req, "some-user", tc.roles)
			}
			handler(rr, req)

			assert.Equal(t, tc.expectedCode, rr.Code)
		})
	}
}
