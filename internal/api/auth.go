package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/mail"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mzalewski-wsm/studium/internal/database"
)

var (
	accessTokenExpiration  = time.Minute * 10
	refreshTokenExpiration = time.Hour * 24
	resetTokenExpiration   = time.Hour

	refreshCookieKey = "refresh_token"
)

const minPasswordLength = 6

const (
	userIdClaim = "user-id"
	rolesClaim  = "roles"
	expClaim    = "exp"
)

type contextKey string

const (
	userIdKey contextKey = "user-id"
	rolesKey  contextKey = "roles"
)

func UserId(ctx context.Context) (string, bool) {
	userId, ok := ctx.Value(userIdKey).(string)
	return userId, ok
}

func Roles(ctx context.Context) (map[string]int, bool) {
	roles, ok := ctx.Value(rolesKey).(map[string]int)
	return roles, ok
}

type RegisterRequest struct {
	Name          string `json:"name"`
	Surname       string `json:"surname"`
	StudentNumber string `json:"student_number"`
	Email         string `json:"email"`
	Password      string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string         `json:"access_token"`
	Roles       map[string]int `json:"roles"`
	UserId      string         `json:"user_id"`
}

type PasswordResetRequest struct {
	Email string `json:"email"`
}

type PasswordResetConfirmRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (s *StudiumApp) register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if req.Name == "" || req.Email == "" || req.Password == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if _, err := mail.ParseAddress(req.Email); err != nil {
		errResp := NewBadRequestError()
		errResp.Message = "invalid email address"
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if len(req.Password) < minPasswordLength {
		errResp := NewBadRequestError()
		errResp.Message = fmt.Sprintf("password must be at least %d characters", minPasswordLength)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	pwdHash, err := hashPassword(req.Password)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	roles := map[string]int{"User": database.RoleUser}
	if req.StudentNumber != "" {
		roles["Student"] = database.RoleStudent
	}

	params := database.CreateUserParams{
		Name:          req.Name,
		Surname:       req.Surname,
		StudentNumber: req.StudentNumber,
		Email:         req.Email,
		Roles:         roles,
		PasswordHash:  pwdHash,
	}

	newUser, err := s.db.CreateUser(r.Context(), params)
	if err != nil {
		errResp := dbError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusCreated, userToWire(newUser))
}

func (s *StudiumApp) login(w http.ResponseWriter, r *http.Request) {
	var lr LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&lr); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if lr.Email == "" || lr.Password == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	dbUser, err := s.db.GetUserByEmail(r.Context(), lr.Email)
	if err != nil {
		errResp := dbError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if !verifyPassword(dbUser.PasswordHash, lr.Password) {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if _, blocked := dbUser.Roles["Blocked"]; blocked {
		errResp := NewForbiddenError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	accessToken, err := s.createJwtForSession(dbUser, accessTokenExpiration)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	refreshToken := uuid.NewString()
	if err := s.db.SetUserRefreshToken(r.Context(), dbUser.Id.Hex(), refreshToken); err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.db.IncrementLoginCount(r.Context(), midnight(time.Now().UTC())); err != nil {
		s.log.Printf("increment login count: %v", err)
	}

	http.SetCookie(w, createRefreshCookie(refreshToken, refreshTokenExpiration))

	s.writeJson(w, http.StatusOK, LoginResponse{
		AccessToken: accessToken,
		Roles:       dbUser.Roles,
		UserId:      dbUser.Id.Hex(),
	})
}

// refresh trades a valid refresh cookie for a fresh access token.
func (s *StudiumApp) refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshCookieKey)
	if err != nil || cookie.Value == "" {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	dbUser, err := s.db.GetUserByRefreshToken(r.Context(), cookie.Value)
	if err != nil {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	accessToken, err := s.createJwtForSession(dbUser, accessTokenExpiration)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, LoginResponse{
		AccessToken: accessToken,
		Roles:       dbUser.Roles,
		UserId:      dbUser.Id.Hex(),
	})
}

func (s *StudiumApp) logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(refreshCookieKey); err == nil && cookie.Value != "" {
		if dbUser, err := s.db.GetUserByRefreshToken(r.Context(), cookie.Value); err == nil {
			if err := s.db.SetUserRefreshToken(r.Context(), dbUser.Id.Hex(), ""); err != nil {
				s.log.Printf("clear refresh token: %v", err)
			}
		}
	}

	// instruct browser to delete cookie by overwriting it with an expired one
	http.SetCookie(w, createRefreshCookie("", time.Duration(time.Unix(0, 0).Unix())))
	w.WriteHeader(http.StatusNoContent)
}

func (s *StudiumApp) requestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req PasswordResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	dbUser, err := s.db.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		// a missing account gets the same response as a matched one
		w.WriteHeader(http.StatusNoContent)
		return
	}

	token := uuid.NewString()
	if err := s.db.SetUserResetToken(r.Context(), dbUser.Id.Hex(), token, time.Now().Add(resetTokenExpiration)); err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	body := fmt.Sprintf("Hello %s,\n\nUse the following token to reset your password: %s\n\nThe token expires in one hour.", dbUser.Name, token)
	if err := s.mailer.Send(dbUser.Email, "Password reset", body); err != nil {
		s.log.Printf("send reset mail: %v", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *StudiumApp) confirmPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req PasswordResetConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" || req.Password == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	dbUser, err := s.db.GetUserByResetToken(r.Context(), req.Token)
	if err != nil {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if dbUser.ResetTokenExpiresAt == nil || time.Now().After(*dbUser.ResetTokenExpiresAt) {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	pwdHash, err := hashPassword(req.Password)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.db.SetUserPassword(r.Context(), dbUser.Id.Hex(), pwdHash); err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.db.SetUserResetToken(r.Context(), dbUser.Id.Hex(), "", time.Time{}); err != nil {
		s.log.Printf("clear reset token: %v", err)
	}

	w.WriteHeader(http.StatusNoContent)
}

func createRefreshCookie(token string, exp time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     refreshCookieKey,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(exp),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
}

func hashPassword(passwd string) (string, error) {
	passwdHash, err := bcrypt.GenerateFromPassword([]byte(passwd), bcrypt.DefaultCost)
	return string(passwdHash), err
}

func verifyPassword(passwdHash, passwd string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(passwdHash), []byte(passwd))
	return err == nil
}

func (s *StudiumApp) createJwtForSession(user database.User, exp time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		userIdClaim: user.Id.Hex(),
		rolesClaim:  user.Roles,
		expClaim:    time.Now().Add(exp).Unix(),
	})

	return token.SignedString(s.signingKey)
}

func (s *StudiumApp) verifyToken(tokenString string) (*jwt.Token, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.signingKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return token, nil
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
