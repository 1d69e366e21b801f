package api

import (
	"encoding/json"
	"net/http"
	"slices"

	"github.com/mzalewski-wsm/studium/internal/database"
	"github.com/mzalewski-wsm/studium/internal/types"
)

type CreateConversationRequest struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

func (s *StudiumApp) createConversation(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var req CreateConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if req.Name == "" || len(req.Members) == 0 {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	members := req.Members
	if !slices.Contains(members, userId) {
		members = append(members, userId)
	}

	conv, err := s.db.CreateConversation(r.Context(), database.CreateConversationParams{
		Name:    req.Name,
		Members: members,
	})
	if err != nil {
		errResp := dbError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusCreated, conversationToWire(conv))
}

func (s *StudiumApp) listConversations(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var (
		convs []database.Conversation
		err   error
	)

	if r.URL.Query().Get("scope") == "all" {
		if !s.callerHasRole(r, database.RoleAdmin) {
			errResp := NewForbiddenError()
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}
		convs, err = s.db.ListConversations(r.Context())
	} else {
		convs, err = s.db.ListConversationsForMember(r.Context(), userId)
	}
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	out := make([]types.Conversation, 0, len(convs))
	for _, c := range convs {
		out = append(out, conversationToWire(c))
	}

	s.writeJson(w, http.StatusOK, out)
}

func (s *StudiumApp) getConversation(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	conv, err := s.db.GetConversationById(r.Context(), r.PathValue("id"))
	if err != nil {
		errResp := dbError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if !slices.Contains(hexIds(conv.Members), userId) && !s.callerHasRole(r, database.RoleAdmin) {
		errResp := NewForbiddenError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, conversationToWire(conv))
}
