package server

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mzalewski-wsm/studium/internal/database"
	"github.com/mzalewski-wsm/studium/internal/stats"
	"github.com/mzalewski-wsm/studium/internal/testutil"
)

// newTestRtcServer creates an RtcServer instance for testing purposes
func newTestRtcServer(t *testing.T, db database.StudiumRepository, su *stats.MockStatsUpdater) *RtcServer {
	su.On("RegisterMetric", mock.Anything).Return(nil).Times(4)

	logger := testutil.TestLogger(t)
	rtc, err := NewRtcServer(logger, db, su)
	if err != nil {
		t.Fatalf("failed to create test RtcServer: %v", err)
	}
	return rtc
}

func newTestClient(t *testing.T, rtc *RtcServer) *Client {
	return NewClient(nil, rtc, testutil.TestLogger(t))
}

func TestNewRtcServer(t *testing.T) {
	db := &database.MockStudiumRepository{}
	defer db.AssertExpectations(t)

	su := &stats.MockStatsUpdater{}
	defer su.AssertExpectations(t)
	su.On("RegisterMetric", mock.Anything).Return(nil).Times(4)

	logger := testutil.TestLogger(t)
	rtc, err := NewRtcServer(logger, db, su)
	assert.NoError(t, err, "expected no error creating RtcServer")
	assert.NotNil(t, rtc, "expected RtcServer to be non-nil")
	assert.Equal(t, logger, rtc.log, "expected logger to be set")
	assert.Equal(t, db, rtc.db, "expected database repository to be set")
	assert.NotNil(t, rtc.clients, "expected clients map to be initialized")
	assert.NotNil(t, rtc.registry, "expected registry to be initialized")
	assert.NotNil(t, rtc.rooms, "expected rooms map to be initialized")
}

func TestJoinLeaveRoom(t *testing.T) {
	t.Run("join is idempotent", func(t *testing.T) {
		su := &stats.MockStatsUpdater{}
		su.On("Incr", "NumActiveRooms").Once()
		defer su.AssertExpectations(t)

		rtc := newTestRtcServer(t, &database.MockStudiumRepository{}, su)
		c := newTestClient(t, rtc)

		rtc.JoinRoom(c, "course-1")
		rtc.JoinRoom(c, "course-1")

		assert.Equal(t, 1, rtc.roomSize("course-1"), "expected a single membership after repeated joins")
	})

	t.Run("leaving the last member drops the room", func(t *testing.T) {
		su := &stats.MockStatsUpdater{}
		su.On("Incr", "NumActiveRooms").Once()
		su.On("Decr", "NumActiveRooms").Once()
		defer su.AssertExpectations(t)

		rtc := newTestRtcServer(t, &database.MockStudiumRepository{}, su)
		c := newTestClient(t, rtc)

		rtc.JoinRoom(c, "course-1")
		rtc.LeaveRoom(c, "course-1")

		assert.Equal(t, 0, rtc.roomSize("course-1"), "expected the room to be empty")
		rtc.mu.RLock()
		_, exists := rtc.rooms["course-1"]
		rtc.mu.RUnlock()
		assert.False(t, exists, "expected an empty room to be removed")
	})

	t.Run("leaving a room never joined is a no-op", func(t *testing.T) {
		su := &stats.MockStatsUpdater{}
		defer su.AssertExpectations(t)

		rtc := newTestRtcServer(t, &database.MockStudiumRepository{}, su)
		c := newTestClient(t, rtc)

		rtc.LeaveRoom(c, "nonexistent")
	})
}

func TestRegisterDeregisterClient(t *testing.T) {
	db := &database.MockStudiumRepository{}
	defer db.AssertExpectations(t)

	su := &stats.MockStatsUpdater{}
	su.On("Incr", "NumActiveConnections").Once()
	su.On("Incr", "NumActiveRooms").Once()
	su.On("Decr", "NumActiveRooms").Once()
	su.On("Decr", "NumActiveConnections").Once()
	defer su.AssertExpectations(t)

	rtc := newTestRtcServer(t, db, su)
	c := newTestClient(t, rtc)

	rtc.RegisterClient(c)
	rtc.mu.RLock()
	_, registered := rtc.clients[c]
	rtc.mu.RUnlock()
	assert.True(t, registered, "expected client to be registered")

	rtc.JoinRoom(c, "course-1")

	// anonymous connection leaves no durable trace
	db.On("GetUserBySocket", mock.Anything, c.id).Return(database.User{}, database.ErrNotFound).Once()

	rtc.DeregisterClient(c)

	rtc.mu.RLock()
	_, registered = rtc.clients[c]
	rtc.mu.RUnlock()
	assert.False(t, registered, "expected client to be deregistered")
	assert.Equal(t, 0, rtc.roomSize("course-1"), "expected room memberships to be dropped")

	select {
	case <-c.stop:
	default:
		t.Error("expected client stop channel to be closed")
	}

	// deregistering twice must not double-count
	db.On("GetUserBySocket", mock.Anything, c.id).Return(database.User{}, database.ErrNotFound).Once()
	rtc.DeregisterClient(c)
}

func TestDispatch(t *testing.T) {
	userId := "64f1a0b1c2d3e4f5a6b7c8d9"
	eventId := "64f1a0b1c2d3e4f5a6b7c8da"
	courseId := "64f1a0b1c2d3e4f5a6b7c8db"

	t.Run("unknown signal is ignored", func(t *testing.T) {
		db := &database.MockStudiumRepository{}
		defer db.AssertExpectations(t)

		rtc := newTestRtcServer(t, db, &stats.MockStatsUpdater{})
		c := newTestClient(t, rtc)

		rtc.Dispatch(c, &ClientSignal{Signal: "no-such-signal", Data: json.RawMessage(`{}`)})

		select {
		case sig := <-c.send:
			t.Errorf("expected no response for unknown signal, got %+v", sig)
		default:
		}
	})

	t.Run("malformed payload gets invalid signal response", func(t *testing.T) {
		db := &database.MockStudiumRepository{}
		defer db.AssertExpectations(t)

		rtc := newTestRtcServer(t, db, &stats.MockStatsUpdater{})
		c := newTestClient(t, rtc)

		rtc.Dispatch(c, &ClientSignal{Id: 5, Signal: SignalJoinCall, Data: json.RawMessage(`"not an object"`)})

		select {
		case sig := <-c.send:
			require.NotNil(t, sig.Response, "expected an error response")
			assert.Equal(t, 5, sig.Id, "expected response to echo the signal id")
			assert.Equal(t, 400, sig.Response.ResponseCode)
		default:
			t.Error("expected an error response to be queued")
		}
	})

	t.Run("join-call adds the user to the roster", func(t *testing.T) {
		db := &database.MockStudiumRepository{}
		defer db.AssertExpectations(t)

		course := database.Course{Id: mustObjectId(t, courseId)}
		db.On("GetCourseByEventId", mock.Anything, eventId).Return(course, nil).Once()
		db.On("AddEventParticipant", mock.Anything, courseId, eventId, userId).Return(nil).Once()

		rtc := newTestRtcServer(t, db, &stats.MockStatsUpdater{})
		c := newTestClient(t, rtc)

		payload, _ := json.Marshal(CallPayload{EventId: eventId, UserId: userId})
		rtc.Dispatch(c, &ClientSignal{Signal: SignalJoinCall, Data: payload})

		select {
		case sig := <-c.send:
			t.Errorf("expected no response on success, got %+v", sig)
		default:
		}
	})

	t.Run("join-call for unknown event reports not found to the caller", func(t *testing.T) {
		db := &database.MockStudiumRepository{}
		defer db.AssertExpectations(t)

		db.On("GetCourseByEventId", mock.Anything, eventId).Return(database.Course{}, database.ErrNotFound).Once()

		rtc := newTestRtcServer(t, db, &stats.MockStatsUpdater{})
		c := newTestClient(t, rtc)

		payload, _ := json.Marshal(CallPayload{EventId: eventId, UserId: userId})
		rtc.Dispatch(c, &ClientSignal{Id: 9, Signal: SignalJoinCall, Data: payload})

		select {
		case sig := <-c.send:
			require.NotNil(t, sig.Response, "expected an error response")
			assert.Equal(t, 9, sig.Id)
			assert.Equal(t, 404, sig.Response.ResponseCode)
		default:
			t.Error("expected an error response to be queued")
		}
	})

	t.Run("user-connected binds the connection", func(t *testing.T) {
		db := &database.MockStudiumRepository{}
		defer db.AssertExpectations(t)

		rtc := newTestRtcServer(t, db, &stats.MockStatsUpdater{})
		c := newTestClient(t, rtc)

		db.On("SetUserSocket", mock.Anything, userId, c.id).Return(nil).Once()

		payload, _ := json.Marshal(userId)
		rtc.Dispatch(c, &ClientSignal{Signal: SignalUserConnected, Data: payload})

		assert.Equal(t, userId, c.getUserId(), "expected connection to carry the user id")
		rtc.mu.RLock()
		assert.Same(t, c, rtc.registry[userId], "expected registry to point at the connection")
		rtc.mu.RUnlock()
	})

	t.Run("join-course and leave-course manage room membership", func(t *testing.T) {
		su := &stats.MockStatsUpdater{}
		su.On("Incr", "NumActiveRooms").Once()
		su.On("Decr", "NumActiveRooms").Once()
		defer su.AssertExpectations(t)

		rtc := newTestRtcServer(t, &database.MockStudiumRepository{}, su)
		c := newTestClient(t, rtc)

		payload, _ := json.Marshal(courseId)
		rtc.Dispatch(c, &ClientSignal{Signal: SignalJoinCourse, Data: payload})
		assert.Equal(t, 1, rtc.roomSize(courseId), "expected membership after join-course")

		rtc.Dispatch(c, &ClientSignal{Signal: SignalLeaveCourse, Data: payload})
		assert.Equal(t, 0, rtc.roomSize(courseId), "expected no membership after leave-course")
	})
}

func mustObjectId(t *testing.T, hex string) primitive.ObjectID {
	t.Helper()
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		t.Fatalf("bad object id %q: %v", hex, err)
	}
	return id
}
