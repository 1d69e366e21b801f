package server

import "encoding/json"

// BroadcastEvent relays a course announcement to every connection
// subscribed to the course room. The payload is passed through untouched;
// only the routing key is inspected.
func (rtc *RtcServer) BroadcastEvent(courseId string, payload json.RawMessage) {
	rtc.broadcastToRoom(courseId, rawSignal(SignalEvent, payload))
	rtc.stats.Incr("EventsRelayed")
}
