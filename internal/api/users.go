package api

import (
	"encoding/json"
	"net/http"

	"github.com/mzalewski-wsm/studium/internal/database"
	"github.com/mzalewski-wsm/studium/internal/types"
)

type UpdateUserRequest struct {
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *StudiumApp) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.db.GetUserById(r.Context(), r.PathValue("id"))
	if err != nil {
		errResp := dbError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, userToWire(user))
}

func (s *StudiumApp) listUsers(w http.ResponseWriter, r *http.Request) {
	var (
		users []database.User
		err   error
	)

	if role := r.URL.Query().Get("role"); role != "" {
		users, err = s.db.ListUsersWithRole(r.Context(), role)
	} else {
		users, err = s.db.ListUsers(r.Context())
	}
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	out := make([]types.User, 0, len(users))
	for _, u := range users {
		out = append(out, userToWire(u))
	}

	s.writeJson(w, http.StatusOK, out)
}

func (s *StudiumApp) updateUser(w http.ResponseWriter, r *http.Request) {
	targetId := r.PathValue("id")

	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	// users may edit themselves, admins anyone
	if targetId != userId && !s.callerHasRole(r, database.RoleAdmin) {
		errResp := NewForbiddenError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	params := database.UpdateUserParams{
		UserId:  targetId,
		Name:    req.Name,
		Surname: req.Surname,
		Email:   req.Email,
	}

	if req.Password != "" {
		pwdHash, err := hashPassword(req.Password)
		if err != nil {
			errResp := NewInternalServerError(err)
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}
		params.PasswordHash = pwdHash
	}

	dbUser, err := s.db.UpdateUser(r.Context(), params)
	if err != nil {
		errResp := dbError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, userToWire(dbUser))
}

func (s *StudiumApp) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := s.db.DeleteUser(r.Context(), r.PathValue("id")); err != nil {
		errResp := dbError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusNoContent, nil)
}

func (s *StudiumApp) callerHasRole(r *http.Request, codes ...int) bool {
	roles, ok := Roles(r.Context())
	if !ok {
		return false
	}

	for _, granted := range roles {
		for _, code := range codes {
			if granted == code {
				return true
			}
		}
	}
	return false
}
