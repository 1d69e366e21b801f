package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mzalewski-wsm/studium/internal/config"
	"github.com/mzalewski-wsm/studium/internal/database"
	"github.com/mzalewski-wsm/studium/internal/mailer"
	"github.com/mzalewski-wsm/studium/internal/server"
	"github.com/mzalewski-wsm/studium/internal/stats"
	"github.com/mzalewski-wsm/studium/internal/testutil"
)

func newWsTestApp(t *testing.T, repo database.StudiumRepository, allowedOrigins []string) *StudiumApp {
	t.Helper()

	su := &stats.MockStatsUpdater{}
	su.On("RegisterMetric", mock.Anything).Times(4)
	su.On("Incr", mock.Anything).Maybe()
	su.On("Decr", mock.Anything).Maybe()

	rtc, err := server.NewRtcServer(testutil.TestLogger(t), repo, su)
	require.NoError(t, err)

	return NewStudiumApp(http.NewServeMux(), testutil.TestLogger(t), rtc, repo, mailer.NewDummyMailer(testutil.TestLogger(t)), &config.Config{
		SigningKey:     []byte("test-signing-key"),
		StoragePath:    t.TempDir(),
		AllowedOrigins: allowedOrigins,
	})
}

func Test_serveWs(t *testing.T) {
	t.Run("upgrades and registers the connection", func(t *testing.T) {
		mockRepo := &database.MockStudiumRepository{}
		// disconnect reconciliation runs when the dialer closes the socket
		mockRepo.On("GetUserBySocket", mock.Anything, mock.Anything).Return(database.User{}, database.ErrNotFound).Maybe()

		app := newWsTestApp(t, mockRepo, nil)

		srv := httptest.NewServer(http.HandlerFunc(app.serveWs))
		defer srv.Close()

		wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
		conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
		require.NoError(t, err)
		defer conn.Close()

		assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	})

	t.Run("rejects a disallowed origin", func(t *testing.T) {
		app := newWsTestApp(t, &database.MockStudiumRepository{}, []string{"https://studium.example"})

		srv := httptest.NewServer(http.HandlerFunc(app.serveWs))
		defer srv.Close()

		wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
		header := http.Header{}
		header.Set("Origin", "https://evil.example")

		conn, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
		if conn != nil {
			conn.Close()
		}
		require.Error(t, err)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("accepts an allowed origin", func(t *testing.T) {
		mockRepo := &database.MockStudiumRepository{}
		mockRepo.On("GetUserBySocket", mock.Anything, mock.Anything).Return(database.User{}, database.ErrNotFound).Maybe()

		app := newWsTestApp(t, mockRepo, []string{"https://studium.example"})

		srv := httptest.NewServer(http.HandlerFunc(app.serveWs))
		defer srv.Close()

		wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
		header := http.Header{}
		header.Set("Origin", "https://studium.example")

		conn, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
		require.NoError(t, err)
		defer conn.Close()

		assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	})
}
