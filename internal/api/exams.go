package api

import (
	"encoding/json"
	"net/http"

	"github.com/mzalewski-wsm/studium/internal/database"
	"github.com/mzalewski-wsm/studium/internal/types"
)

type CreateExamRequest struct {
	Title   string         `json:"title"`
	Json    map[string]any `json:"json"`
	EventId string         `json:"event_id"`
}

type UpdateExamRequest struct {
	Title string         `json:"title"`
	Json  map[string]any `json:"json"`
}

type ExamResultRequest struct {
	Json map[string]any `json:"json"`
}

func (s *StudiumApp) createExam(w http.ResponseWriter, r *http.Request) {
	var req CreateExamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if req.Title == "" || req.EventId == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	exam, err := s.db.CreateExam(r.Context(), database.CreateExamParams{
		Title:   req.Title,
		Json:    req.Json,
		EventId: req.EventId,
	})
	if err != nil {
		errResp := dbError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusCreated, examToWire(exam))
}

func (s *StudiumApp) getExamByEvent(w http.ResponseWriter, r *http.Request) {
	eventId := r.URL.Query().Get("event_id")
	if eventId == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	exam, err := s.db.GetExamByEventId(r.Context(), eventId)
	if err != nil {
		errResp := dbError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	// students only see the questions, never other participants' results
	if !s.callerHasRole(r, database.RoleTeacher, database.RoleAdmin) {
		exam.Results = nil
	}

	s.writeJson(w, http.StatusOK, examToWire(exam))
}

func (s *StudiumApp) updateExam(w http.ResponseWriter, r *http.Request) {
	var req UpdateExamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	exam, err := s.db.UpdateExam(r.Context(), r.PathValue("id"), req.Title, req.Json)
	if err != nil {
		errResp := dbError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, examToWire(exam))
}

func (s *StudiumApp) saveExamResult(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var req ExamResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Json == nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	exam, err := s.db.SaveExamResult(r.Context(), r.PathValue("id"), userId, req.Json)
	if err != nil {
		errResp := dbError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, examToWire(exam))
}

func (s *StudiumApp) listExamResults(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	exams, err := s.db.ListExamsForParticipant(r.Context(), userId)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	out := make([]types.Exam, 0, len(exams))
	for _, e := range exams {
		// keep only the caller's result
		var own []database.ExamResult
		for _, res := range e.Results {
			if res.UserId.Hex() == userId {
				own = append(own, res)
			}
		}
		e.Results = own
		out = append(out, examToWire(e))
	}

	s.writeJson(w, http.StatusOK, out)
}
