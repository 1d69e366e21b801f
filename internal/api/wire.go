package api

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mzalewski-wsm/studium/internal/database"
	"github.com/mzalewski-wsm/studium/internal/types"
)

func userToWire(u database.User) types.User {
	return types.User{
		Id:            u.Id.Hex(),
		Name:          u.Name,
		Surname:       u.Surname,
		StudentNumber: u.StudentNumber,
		Email:         u.Email,
		Roles:         u.Roles,
		Picture:       u.Picture,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

func courseToWire(c database.Course) types.Course {
	events := make([]types.Event, 0, len(c.Events))
	for _, e := range c.Events {
		events = append(events, eventToWire(e))
	}

	return types.Course{
		Id:          c.Id.Hex(),
		Name:        c.Name,
		Description: c.Description,
		TeacherId:   c.TeacherId.Hex(),
		Members:     hexIds(c.Members),
		Pic:         c.Pic,
		Events:      events,
		Files:       hexIds(c.Files),
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func eventToWire(e database.Event) types.Event {
	return types.Event{
		Id:          e.Id.Hex(),
		Title:       e.Title,
		Description: e.Description,
		Start:       e.Start,
		End:         e.End,
		Url:         e.Url,
		ClassName:   e.ClassName,
		InCall:      hexIds(e.InCall),
	}
}

func conversationToWire(c database.Conversation) types.Conversation {
	messages := make([]types.Message, 0, len(c.Messages))
	for _, m := range c.Messages {
		messages = append(messages, types.Message{
			Id:             m.Id.Hex(),
			ConversationId: c.Id.Hex(),
			Sender:         m.Sender.Hex(),
			Text:           m.Text,
			CreatedAt:      m.CreatedAt,
		})
	}

	return types.Conversation{
		Id:        c.Id.Hex(),
		Name:      c.Name,
		Members:   hexIds(c.Members),
		Messages:  messages,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func examToWire(e database.Exam) types.Exam {
	results := make([]types.ExamResult, 0, len(e.Results))
	for _, r := range e.Results {
		results = append(results, types.ExamResult{
			UserId:    r.UserId.Hex(),
			Json:      r.Json,
			CreatedAt: r.CreatedAt,
		})
	}

	return types.Exam{
		Id:        e.Id.Hex(),
		Title:     e.Title,
		Json:      e.Json,
		EventId:   e.EventId.Hex(),
		Results:   results,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func fileToWire(f database.FileInfo) types.FileInfo {
	return types.FileInfo{
		Id:         f.Id,
		Name:       f.OriginalName,
		Size:       f.Size,
		UploadedAt: f.UploadedAt,
	}
}

func hexIds(ids []primitive.ObjectID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.Hex())
	}
	return out
}
