package server

import (
	"context"

	"github.com/mzalewski-wsm/studium/internal/database"
	"github.com/mzalewski-wsm/studium/internal/types"
)

// JoinConversation subscribes the connection to a conversation and replays
// the stored history to the joiner only, in append order.
func (rtc *RtcServer) JoinConversation(c *Client, conversationId string) error {
	conv, err := rtc.db.GetConversationById(context.Background(), conversationId)
	if err != nil {
		return err
	}

	rtc.JoinRoom(c, conversationId)

	history := make([]types.Message, 0, len(conv.Messages))
	for _, m := range conv.Messages {
		history = append(history, messageToWire(conversationId, m))
	}

	sig, err := newSignal(SignalConversationMessages, history)
	if err != nil {
		return err
	}
	c.queueSignal(sig)

	return nil
}

// SendMessage persists a chat message and fans it out to every member of
// the conversation room, the sender included.
func (rtc *RtcServer) SendMessage(conversationId, senderId, text string) error {
	msg, err := rtc.db.AppendMessage(context.Background(), conversationId, senderId, text, Now())
	if err != nil {
		return err
	}

	sig, err := newSignal(SignalMessage, messageToWire(conversationId, msg))
	if err != nil {
		return err
	}
	rtc.broadcastToRoom(conversationId, sig)
	rtc.stats.Incr("MessagesSent")

	return nil
}

func messageToWire(conversationId string, m database.Message) types.Message {
	return types.Message{
		Id:             m.Id.Hex(),
		ConversationId: conversationId,
		Sender:         m.Sender.Hex(),
		Text:           m.Text,
		CreatedAt:      m.CreatedAt,
	}
}
