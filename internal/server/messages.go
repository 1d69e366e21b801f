package server

import (
	"encoding/json"
	"net/http"
	"time"
)

// Signal names accepted from clients. Anything else is ignored.
const (
	SignalJoinCall          = "join-call"
	SignalLeaveCall         = "leave-call"
	SignalLeaveAll          = "leave-all"
	SignalUserConnected     = "user-connected"
	SignalJoinConversation  = "join-conversation"
	SignalLeaveConversation = "leave-conversation"
	SignalSendMessage       = "send-message"
	SignalNewEvent          = "new-event"
	SignalJoinCourse        = "join-course"
	SignalLeaveCourse       = "leave-course"
)

// Signal names emitted to clients.
const (
	SignalConversationMessages = "conversation-messages"
	SignalMessage              = "message"
	SignalEvent                = "event"
)

// ClientSignal is the envelope for every inbound frame. Data is decoded
// per signal name so a missing or malformed payload fails closed instead
// of panicking inside a handler.
type ClientSignal struct {
	Id     int             `json:"id,omitempty"`
	Signal string          `json:"signal"`
	Data   json.RawMessage `json:"data,omitempty"`
}

type CallPayload struct {
	EventId string `json:"event_id"`
	UserId  string `json:"user_id"`
}

type LeaveAllPayload struct {
	UserId string `json:"user_id"`
}

type LeaveConversationPayload struct {
	Conversation string `json:"conversation"`
}

type SendMessagePayload struct {
	Conversation string `json:"conversation"`
	Sender       string `json:"sender"`
	Text         string `json:"text"`
}

// NewEventPayload carries only the routing key; the payload is relayed
// verbatim, shape unchecked.
type NewEventPayload struct {
	Course string `json:"course"`
}

type ServerSignal struct {
	Id        int             `json:"id,omitempty"`
	Signal    string          `json:"signal,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
	Response  *Response       `json:"response,omitempty"`
}

type Response struct {
	ResponseCode int    `json:"response_code"`
	Error        string `json:"error,omitempty"`
}

func newSignal(name string, data any) (*ServerSignal, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &ServerSignal{
		Signal:    name,
		Timestamp: Now(),
		Data:      raw,
	}, nil
}

func rawSignal(name string, data json.RawMessage) *ServerSignal {
	return &ServerSignal{
		Signal:    name,
		Timestamp: Now(),
		Data:      data,
	}
}

func ErrNotFoundSignal(id int) *ServerSignal {
	return &ServerSignal{
		Id:        id,
		Timestamp: Now(),
		Response: &Response{
			ResponseCode: http.StatusNotFound,
			Error:        "not found",
		},
	}
}

func ErrInvalidSignal(id int) *ServerSignal {
	return &ServerSignal{
		Id:        id,
		Timestamp: Now(),
		Response: &Response{
			ResponseCode: http.StatusBadRequest,
			Error:        "invalid signal format",
		},
	}
}

func ErrInternalError(id int) *ServerSignal {
	return &ServerSignal{
		Id:        id,
		Timestamp: Now(),
		Response: &Response{
			ResponseCode: http.StatusInternalServerError,
			Error:        "internal server error",
		},
	}
}

func Now() time.Time {
	return time.Now().UTC().Round(time.Millisecond)
}
