package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/mzalewski-wsm/studium/internal/database"
	"github.com/mzalewski-wsm/studium/internal/types"
)

type CreateEventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	ClassName   string    `json:"class_name"`
	WithCall    bool      `json:"with_call"`
}

func (s *StudiumApp) createEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if req.Title == "" || req.Start.IsZero() || req.End.IsZero() || req.End.Before(req.Start) {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	params := database.CreateEventParams{
		CourseId:    r.PathValue("id"),
		Title:       req.Title,
		Description: req.Description,
		Start:       req.Start,
		End:         req.End,
		ClassName:   req.ClassName,
	}

	if req.WithCall {
		sid, err := s.generateShortId()
		if err != nil {
			s.log.Print("generateShortId:", err)
			errResp := NewInternalServerError(err)
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}
		params.Url = "/meeting/" + sid
	}

	event, err := s.db.AppendEvent(r.Context(), params)
	if err != nil {
		errResp := dbError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusCreated, eventToWire(event))
}

func (s *StudiumApp) listCourseEvents(w http.ResponseWriter, r *http.Request) {
	course, err := s.db.GetCourseById(r.Context(), r.PathValue("id"))
	if err != nil {
		errResp := dbError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	events := make([]types.Event, 0, len(course.Events))
	for _, e := range course.Events {
		events = append(events, eventToWire(e))
	}

	s.writeJson(w, http.StatusOK, events)
}

type SetEventUrlRequest struct {
	Url string `json:"url"`
}

// UserEvent is a calendar entry: a course event annotated with the course it
// belongs to.
type UserEvent struct {
	CourseId   string `json:"course_id"`
	CourseName string `json:"course_name"`
	types.Event
}

// listUserEvents flattens the events of every course the caller is a member
// of into a single calendar feed.
func (s *StudiumApp) listUserEvents(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	courses, err := s.db.ListCoursesForMember(r.Context(), userId)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	out := make([]UserEvent, 0)
	for _, c := range courses {
		for _, e := range c.Events {
			out = append(out, UserEvent{
				CourseId:   c.Id.Hex(),
				CourseName: c.Name,
				Event:      eventToWire(e),
			})
		}
	}

	s.writeJson(w, http.StatusOK, out)
}

func (s *StudiumApp) setEventUrl(w http.ResponseWriter, r *http.Request) {
	var req SetEventUrlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Url == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.db.SetEventUrl(r.Context(), r.PathValue("id"), r.PathValue("eventId"), req.Url); err != nil {
		errResp := dbError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusNoContent, nil)
}

// getCourseForEvent resolves the course that contains an event, used by the
// meeting page to show course context for a call.
func (s *StudiumApp) getCourseForEvent(w http.ResponseWriter, r *http.Request) {
	course, err := s.db.GetCourseByEventId(r.Context(), r.PathValue("id"))
	if err != nil {
		errResp := dbError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, courseToWire(course))
}
