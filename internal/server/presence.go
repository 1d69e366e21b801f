package server

import (
	"context"
	"errors"

	"github.com/mzalewski-wsm/studium/internal/database"
)

// RegisterConnection binds a connection to a user: the connection id is
// stored as the user's socket handle so a later disconnect can be traced
// back to the user even when the in-memory registry is gone.
func (rtc *RtcServer) RegisterConnection(c *Client, userId string) {
	if err := rtc.db.SetUserSocket(context.Background(), userId, c.id); err != nil {
		rtc.log.Printf("failed to bind connection %q to user %q: %v", c.id, userId, err)
		return
	}

	c.setUserId(userId)

	rtc.mu.Lock()
	rtc.registry[userId] = c
	rtc.mu.Unlock()
}

// ReconcileDisconnect clears the durable traces of a connection: the user
// holding this socket handle is pulled from every call roster and unbound.
// A connection that never identified itself leaves no trace to clear.
func (rtc *RtcServer) ReconcileDisconnect(c *Client) {
	user, err := rtc.db.GetUserBySocket(context.Background(), c.id)
	if err != nil {
		if !errors.Is(err, database.ErrNotFound) {
			rtc.log.Printf("failed to resolve connection %q on disconnect: %v", c.id, err)
		}
		return
	}

	if err := rtc.db.RemoveParticipantFromAllEvents(context.Background(), user.Id.Hex()); err != nil {
		rtc.log.Printf("failed to clear call rosters for user %q: %v", user.Id.Hex(), err)
	}

	if err := rtc.db.ClearUserSocket(context.Background(), user.Id.Hex()); err != nil {
		rtc.log.Printf("failed to unbind user %q: %v", user.Id.Hex(), err)
	}

	rtc.mu.Lock()
	if rtc.registry[user.Id.Hex()] == c {
		delete(rtc.registry, user.Id.Hex())
	}
	rtc.mu.Unlock()
}

// JoinCall adds the user to the call roster of an event. The event must
// belong to an existing course.
func (rtc *RtcServer) JoinCall(eventId, userId string) error {
	course, err := rtc.db.GetCourseByEventId(context.Background(), eventId)
	if err != nil {
		return err
	}
	return rtc.db.AddEventParticipant(context.Background(), course.Id.Hex(), eventId, userId)
}

func (rtc *RtcServer) LeaveCall(eventId, userId string) error {
	course, err := rtc.db.GetCourseByEventId(context.Background(), eventId)
	if err != nil {
		return err
	}
	return rtc.db.RemoveEventParticipant(context.Background(), course.Id.Hex(), eventId, userId)
}

// LeaveAll pulls the user from every call roster in a single pass, used
// by clients recovering from an unclean exit.
func (rtc *RtcServer) LeaveAll(userId string) error {
	return rtc.db.RemoveParticipantFromAllEvents(context.Background(), userId)
}
