package server

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mzalewski-wsm/studium/internal/database"
	"github.com/mzalewski-wsm/studium/internal/stats"
)

func TestBroadcastEvent(t *testing.T) {
	courseId := "64f1a0b1c2d3e4f5a6b7c8db"

	su := &stats.MockStatsUpdater{}
	su.On("Incr", "NumActiveRooms").Once()
	su.On("Incr", "EventsRelayed").Once()
	defer su.AssertExpectations(t)

	rtc := newTestRtcServer(t, &database.MockStudiumRepository{}, su)
	subscriber := newTestClient(t, rtc)
	outsider := newTestClient(t, rtc)

	rtc.JoinRoom(subscriber, courseId)

	payload := json.RawMessage(`{"course":"` + courseId + `","title":"Exam moved","whatever":[1,2,3]}`)
	rtc.BroadcastEvent(courseId, payload)

	select {
	case sig := <-subscriber.send:
		assert.Equal(t, SignalEvent, sig.Signal)
		assert.Equal(t, payload, sig.Data, "expected payload to be relayed verbatim")
	default:
		t.Error("expected the subscriber to receive the event")
	}

	select {
	case sig := <-outsider.send:
		t.Errorf("expected no event outside the course room, got %+v", sig)
	default:
	}
}
