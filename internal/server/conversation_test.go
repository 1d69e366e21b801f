package server

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mzalewski-wsm/studium/internal/database"
	"github.com/mzalewski-wsm/studium/internal/stats"
	"github.com/mzalewski-wsm/studium/internal/types"
)

func TestJoinConversation(t *testing.T) {
	conversationId := "64f1a0b1c2d3e4f5a6b7c8dc"
	senderId := "64f1a0b1c2d3e4f5a6b7c8d9"

	t.Run("replays history to the joiner only", func(t *testing.T) {
		db := &database.MockStudiumRepository{}
		defer db.AssertExpectations(t)

		su := &stats.MockStatsUpdater{}
		su.On("Incr", "NumActiveRooms").Once()
		defer su.AssertExpectations(t)

		first := database.Message{
			Id:        primitive.NewObjectID(),
			Sender:    mustObjectId(t, senderId),
			Text:      "hello",
			CreatedAt: Now().Add(-time.Minute),
		}
		second := database.Message{
			Id:        primitive.NewObjectID(),
			Sender:    mustObjectId(t, senderId),
			Text:      "still there?",
			CreatedAt: Now(),
		}
		conv := database.Conversation{
			Id:       mustObjectId(t, conversationId),
			Messages: []database.Message{first, second},
		}
		db.On("GetConversationById", mock.Anything, conversationId).Return(conv, nil).Once()

		rtc := newTestRtcServer(t, db, su)
		joiner := newTestClient(t, rtc)
		bystander := newTestClient(t, rtc)

		require.NoError(t, rtc.JoinConversation(joiner, conversationId))
		assert.Equal(t, 1, rtc.roomSize(conversationId), "expected the joiner to be subscribed")

		select {
		case sig := <-joiner.send:
			assert.Equal(t, SignalConversationMessages, sig.Signal)

			var history []types.Message
			require.NoError(t, json.Unmarshal(sig.Data, &history))
			require.Len(t, history, 2, "expected the full history")
			assert.Equal(t, "hello", history[0].Text, "expected history in append order")
			assert.Equal(t, "still there?", history[1].Text)
			assert.Equal(t, conversationId, history[0].ConversationId)
			assert.Equal(t, senderId, history[0].Sender)
		default:
			t.Error("expected history to be queued for the joiner")
		}

		select {
		case sig := <-bystander.send:
			t.Errorf("expected no signal for a client outside the room, got %+v", sig)
		default:
		}
	})

	t.Run("single message history", func(t *testing.T) {
		db := &database.MockStudiumRepository{}
		defer db.AssertExpectations(t)

		su := &stats.MockStatsUpdater{}
		su.On("Incr", "NumActiveRooms").Once()
		defer su.AssertExpectations(t)

		conv := database.Conversation{
			Id: mustObjectId(t, conversationId),
			Messages: []database.Message{{
				Id:        primitive.NewObjectID(),
				Sender:    mustObjectId(t, senderId),
				Text:      "only one",
				CreatedAt: Now(),
			}},
		}
		db.On("GetConversationById", mock.Anything, conversationId).Return(conv, nil).Once()

		rtc := newTestRtcServer(t, db, su)
		joiner := newTestClient(t, rtc)

		require.NoError(t, rtc.JoinConversation(joiner, conversationId))

		sig := <-joiner.send
		var history []types.Message
		require.NoError(t, json.Unmarshal(sig.Data, &history))
		require.Len(t, history, 1)
		assert.Equal(t, "only one", history[0].Text)
	})

	t.Run("missing conversation leaves no room behind", func(t *testing.T) {
		db := &database.MockStudiumRepository{}
		defer db.AssertExpectations(t)

		db.On("GetConversationById", mock.Anything, conversationId).Return(database.Conversation{}, database.ErrNotFound).Once()

		rtc := newTestRtcServer(t, db, &stats.MockStatsUpdater{})
		joiner := newTestClient(t, rtc)

		assert.ErrorIs(t, rtc.JoinConversation(joiner, conversationId), database.ErrNotFound)
		assert.Equal(t, 0, rtc.roomSize(conversationId), "expected no room for a missing conversation")
	})
}

func TestSendMessage(t *testing.T) {
	conversationId := "64f1a0b1c2d3e4f5a6b7c8dc"
	senderId := "64f1a0b1c2d3e4f5a6b7c8d9"

	t.Run("persists then fans out to every member including the sender", func(t *testing.T) {
		db := &database.MockStudiumRepository{}
		defer db.AssertExpectations(t)

		su := &stats.MockStatsUpdater{}
		su.On("Incr", "NumActiveRooms").Once()
		su.On("Incr", "MessagesSent").Once()
		defer su.AssertExpectations(t)

		stored := database.Message{
			Id:        primitive.NewObjectID(),
			Sender:    mustObjectId(t, senderId),
			Text:      "hi all",
			CreatedAt: Now(),
		}
		db.On("AppendMessage", mock.Anything, conversationId, senderId, "hi all", mock.Anything).Return(stored, nil).Once()

		rtc := newTestRtcServer(t, db, su)
		sender := newTestClient(t, rtc)
		member := newTestClient(t, rtc)

		rtc.JoinRoom(sender, conversationId)
		rtc.JoinRoom(member, conversationId)

		require.NoError(t, rtc.SendMessage(conversationId, senderId, "hi all"))

		for _, c := range []*Client{sender, member} {
			select {
			case sig := <-c.send:
				assert.Equal(t, SignalMessage, sig.Signal)

				var msg types.Message
				require.NoError(t, json.Unmarshal(sig.Data, &msg))
				assert.Equal(t, "hi all", msg.Text)
				assert.Equal(t, senderId, msg.Sender)
				assert.Equal(t, conversationId, msg.ConversationId)
				assert.Equal(t, stored.Id.Hex(), msg.Id)
			default:
				t.Errorf("expected connection %q to receive the message", c.id)
			}
		}
	})

	t.Run("a failed append sends nothing", func(t *testing.T) {
		db := &database.MockStudiumRepository{}
		defer db.AssertExpectations(t)

		su := &stats.MockStatsUpdater{}
		su.On("Incr", "NumActiveRooms").Once()
		defer su.AssertExpectations(t)

		db.On("AppendMessage", mock.Anything, conversationId, senderId, "hi all", mock.Anything).
			Return(database.Message{}, database.ErrNotFound).Once()

		rtc := newTestRtcServer(t, db, su)
		member := newTestClient(t, rtc)
		rtc.JoinRoom(member, conversationId)

		assert.ErrorIs(t, rtc.SendMessage(conversationId, senderId, "hi all"), database.ErrNotFound)

		select {
		case sig := <-member.send:
			t.Errorf("expected no fan-out on failure, got %+v", sig)
		default:
		}
	})
}
