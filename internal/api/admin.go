package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gocarina/gocsv"

	"github.com/mzalewski-wsm/studium/internal/database"
	"github.com/mzalewski-wsm/studium/internal/types"
)

// csvUser is one row of the admin user import/export format.
type csvUser struct {
	Name          string `csv:"name"`
	Surname       string `csv:"surname"`
	StudentNumber string `csv:"student_number"`
	Email         string `csv:"email"`
	Password      string `csv:"password,omitempty"`
}

type ImportReport struct {
	Created int           `json:"created"`
	Errors  []ImportError `json:"errors,omitempty"`
}

type ImportError struct {
	Line  int    `json:"line"`
	Error string `json:"error"`
}

type SetRolesRequest struct {
	Roles map[string]int `json:"roles"`
}

// readCsvUpload decodes the "file" part of a multipart upload into rows.
func readCsvUpload(r *http.Request, rows any) error {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return err
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		return err
	}
	defer file.Close()

	return gocsv.Unmarshal(file, rows)
}

// importUsers bulk-creates student accounts from a CSV upload. Rows are
// processed independently; a bad row is reported, not fatal.
func (s *StudiumApp) importUsers(w http.ResponseWriter, r *http.Request) {
	var rows []*csvUser
	if err := readCsvUpload(r, &rows); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var report ImportReport
	for i, row := range rows {
		line := i + 2 // header is line 1

		if row.Name == "" || row.Email == "" || row.StudentNumber == "" {
			report.Errors = append(report.Errors, ImportError{Line: line, Error: "name, email and student_number are required"})
			continue
		}

		password := row.Password
		if password == "" {
			// students log in with their student number until they reset
			password = row.StudentNumber
		}

		pwdHash, err := hashPassword(password)
		if err != nil {
			report.Errors = append(report.Errors, ImportError{Line: line, Error: err.Error()})
			continue
		}

		_, err = s.db.CreateUser(r.Context(), database.CreateUserParams{
			Name:          row.Name,
			Surname:       row.Surname,
			StudentNumber: row.StudentNumber,
			Email:         row.Email,
			Roles:         map[string]int{"User": database.RoleUser, "Student": database.RoleStudent},
			PasswordHash:  pwdHash,
		})
		if err != nil {
			report.Errors = append(report.Errors, ImportError{Line: line, Error: err.Error()})
			continue
		}

		report.Created++
	}

	s.writeJson(w, http.StatusOK, report)
}

func (s *StudiumApp) exportUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.db.ListAllUsers(r.Context())
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	rows := make([]*csvUser, 0, len(users))
	for _, u := range users {
		rows = append(rows, &csvUser{
			Name:          u.Name,
			Surname:       u.Surname,
			StudentNumber: u.StudentNumber,
			Email:         u.Email,
		})
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="users.csv"`)
	if err := gocsv.Marshal(rows, w); err != nil {
		s.log.Printf("export users: %v", err)
	}
}

func (s *StudiumApp) setUserRoles(w http.ResponseWriter, r *http.Request) {
	var req SetRolesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Roles) == 0 {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	for name, code := range req.Roles {
		if !validRole(name, code) {
			errResp := NewBadRequestError()
			errResp.Message = fmt.Sprintf("unknown role %q", name)
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}
	}

	if err := s.db.SetUserRoles(r.Context(), r.PathValue("id"), req.Roles); err != nil {
		errResp := dbError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusNoContent, nil)
}

func (s *StudiumApp) listLoginCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := s.db.ListLoginCounts(r.Context())
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	out := make([]types.LoginCount, 0, len(counts))
	for _, c := range counts {
		out = append(out, types.LoginCount{Date: c.Date, Count: c.Count})
	}

	s.writeJson(w, http.StatusOK, out)
}

func validRole(name string, code int) bool {
	switch name {
	case "User":
		return code == database.RoleUser
	case "Student":
		return code == database.RoleStudent
	case "Teacher":
		return code == database.RoleTeacher
	case "Admin":
		return code == database.RoleAdmin
	case "Blocked":
		return code == database.RoleBlocked
	default:
		return false
	}
}

// csvCourse is one row of the course import format. The teacher is looked up
// by email.
type csvCourse struct {
	Name         string `csv:"name"`
	Description  string `csv:"description,omitempty"`
	TeacherEmail string `csv:"teacher_email"`
}

// csvCourseMember enrolls one student, identified by student number, into a
// course.
type csvCourseMember struct {
	CourseId      string `csv:"course_id"`
	StudentNumber string `csv:"student_number"`
}

type CourseIdsRequest struct {
	CourseIds []string `json:"course_ids"`
}

func (s *StudiumApp) importCourses(w http.ResponseWriter, r *http.Request) {
	var rows []*csvCourse
	if err := readCsvUpload(r, &rows); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var report ImportReport
	for i, row := range rows {
		line := i + 2

		if row.Name == "" || row.TeacherEmail == "" {
			report.Errors = append(report.Errors, ImportError{Line: line, Error: "name and teacher_email are required"})
			continue
		}

		teacher, err := s.db.GetUserByEmail(r.Context(), row.TeacherEmail)
		if err != nil {
			report.Errors = append(report.Errors, ImportError{Line: line, Error: fmt.Sprintf("teacher %s: %v", row.TeacherEmail, err)})
			continue
		}

		_, err = s.db.CreateCourse(r.Context(), database.CreateCourseParams{
			Name:        row.Name,
			Description: row.Description,
			TeacherId:   teacher.Id.Hex(),
		})
		if err != nil {
			report.Errors = append(report.Errors, ImportError{Line: line, Error: err.Error()})
			continue
		}

		report.Created++
	}

	s.writeJson(w, http.StatusOK, report)
}

func (s *StudiumApp) importCourseMembers(w http.ResponseWriter, r *http.Request) {
	var rows []*csvCourseMember
	if err := readCsvUpload(r, &rows); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var report ImportReport
	for i, row := range rows {
		line := i + 2

		if row.CourseId == "" || row.StudentNumber == "" {
			report.Errors = append(report.Errors, ImportError{Line: line, Error: "course_id and student_number are required"})
			continue
		}

		student, err := s.db.GetUserByStudentNumber(r.Context(), row.StudentNumber)
		if err != nil {
			report.Errors = append(report.Errors, ImportError{Line: line, Error: fmt.Sprintf("student %s: %v", row.StudentNumber, err)})
			continue
		}

		if err := s.db.AddCourseMember(r.Context(), row.CourseId, student.Id.Hex()); err != nil {
			report.Errors = append(report.Errors, ImportError{Line: line, Error: err.Error()})
			continue
		}

		report.Created++
	}

	s.writeJson(w, http.StatusOK, report)
}

// downloadCsvSchema serves a header-only CSV for one of the import formats,
// so admins can fill in a correct template.
func (s *StudiumApp) downloadCsvSchema(w http.ResponseWriter, r *http.Request) {
	shape := r.PathValue("shape")

	var rows any
	switch shape {
	case "users":
		rows = []*csvUser{}
	case "courses":
		rows = []*csvCourse{}
	case "course-members":
		rows = []*csvCourseMember{}
	default:
		errResp := NewNotFoundError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", shape+".csv"))
	if err := gocsv.Marshal(rows, w); err != nil {
		s.log.Printf("csv schema %s: %v", shape, err)
	}
}

// blockUser adds the blocked role, which rejects the user at login. Tokens
// already issued stay valid until they expire.
func (s *StudiumApp) blockUser(w http.ResponseWriter, r *http.Request) {
	s.setBlockedRole(w, r, true)
}

func (s *StudiumApp) unblockUser(w http.ResponseWriter, r *http.Request) {
	s.setBlockedRole(w, r, false)
}

func (s *StudiumApp) setBlockedRole(w http.ResponseWriter, r *http.Request, blocked bool) {
	userId := r.PathValue("id")

	user, err := s.db.GetUserById(r.Context(), userId)
	if err != nil {
		errResp := dbError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	roles := make(map[string]int, len(user.Roles)+1)
	for name, code := range user.Roles {
		roles[name] = code
	}
	if blocked {
		roles["Blocked"] = database.RoleBlocked
	} else {
		delete(roles, "Blocked")
	}

	if err := s.db.SetUserRoles(r.Context(), userId, roles); err != nil {
		errResp := dbError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusNoContent, nil)
}

func (s *StudiumApp) addUserCourses(w http.ResponseWriter, r *http.Request) {
	var req CourseIdsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.CourseIds) == 0 {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.db.AddUserToCourses(r.Context(), r.PathValue("id"), req.CourseIds); err != nil {
		errResp := dbError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusNoContent, nil)
}

func (s *StudiumApp) removeUserCourses(w http.ResponseWriter, r *http.Request) {
	var req CourseIdsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.CourseIds) == 0 {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.db.RemoveUserFromCourses(r.Context(), r.PathValue("id"), req.CourseIds); err != nil {
		errResp := dbError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusNoContent, nil)
}
