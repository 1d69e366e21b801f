package api

import (
	"encoding/json"
	"net/http"

	"github.com/mzalewski-wsm/studium/internal/database"
	"github.com/mzalewski-wsm/studium/internal/types"
)

type CreateCourseRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	TeacherId   string `json:"teacher_id"`
	Pic         string `json:"pic"`
}

type UpdateCourseRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	TeacherId   string `json:"teacher_id"`
	Pic         string `json:"pic"`
}

type CourseMemberRequest struct {
	UserId string `json:"user_id"`
}

func (s *StudiumApp) createCourse(w http.ResponseWriter, r *http.Request) {
	var req CreateCourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if req.Name == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	teacherId := req.TeacherId
	if teacherId == "" {
		// a teacher creating a course owns it
		userId, ok := UserId(r.Context())
		if !ok {
			errResp := NewUnauthorizedError()
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}
		teacherId = userId
	}

	params := database.CreateCourseParams{
		Name:        req.Name,
		Description: req.Description,
		TeacherId:   teacherId,
		Pic:         req.Pic,
	}

	newCourse, err := s.db.CreateCourse(r.Context(), params)
	if err != nil {
		errResp := dbError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusCreated, courseToWire(newCourse))
}

func (s *StudiumApp) getCourse(w http.ResponseWriter, r *http.Request) {
	course, err := s.db.GetCourseById(r.Context(), r.PathValue("id"))
	if err != nil {
		errResp := dbError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, courseToWire(course))
}

// listCourses serves the caller's view of the catalog: member courses by
// default, taught courses for ?scope=teaching, everything else for
// ?scope=available, the full catalog for ?scope=all.
func (s *StudiumApp) listCourses(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var (
		courses []database.Course
		err     error
	)

	switch r.URL.Query().Get("scope") {
	case "", "member":
		courses, err = s.db.ListCoursesForMember(r.Context(), userId)
	case "teaching":
		courses, err = s.db.ListCoursesForTeacher(r.Context(), userId)
	case "available":
		courses, err = s.db.ListCoursesExcludingMember(r.Context(), userId)
	case "all":
		if !s.callerHasRole(r, database.RoleTeacher, database.RoleAdmin) {
			errResp := NewForbiddenError()
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}
		courses, err = s.db.ListCourses(r.Context())
	default:
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	out := make([]types.Course, 0, len(courses))
	for _, c := range courses {
		out = append(out, courseToWire(c))
	}

	s.writeJson(w, http.StatusOK, out)
}

func (s *StudiumApp) updateCourse(w http.ResponseWriter, r *http.Request) {
	var req UpdateCourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	params := database.UpdateCourseParams{
		CourseId:    r.PathValue("id"),
		Name:        req.Name,
		Description: req.Description,
		TeacherId:   req.TeacherId,
		Pic:         req.Pic,
	}

	course, err := s.db.UpdateCourse(r.Context(), params)
	if err != nil {
		errResp := dbError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, courseToWire(course))
}

func (s *StudiumApp) deleteCourse(w http.ResponseWriter, r *http.Request) {
	if err := s.db.DeleteCourse(r.Context(), r.PathValue("id")); err != nil {
		errResp := dbError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusNoContent, nil)
}

func (s *StudiumApp) addCourseMember(w http.ResponseWriter, r *http.Request) {
	var req CourseMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserId == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.db.AddCourseMember(r.Context(), r.PathValue("id"), req.UserId); err != nil {
		errResp := dbError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusNoContent, nil)
}

func (s *StudiumApp) removeCourseMember(w http.ResponseWriter, r *http.Request) {
	if err := s.db.RemoveCourseMember(r.Context(), r.PathValue("id"), r.PathValue("userId")); err != nil {
		errResp := dbError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusNoContent, nil)
}
