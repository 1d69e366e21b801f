package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt"
)

func (s *StudiumApp) errorHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				var panicError error
				switch e := err.(type) {
				case error:
					panicError = e
				default:
					panicError = fmt.Errorf("%v", e)
				}
				s.log.Printf("panic: %v", panicError)
				errResp := NewInternalServerError(panicError)
				w.Header().Set("Connection", "close")
				s.writeJson(w, errResp.StatusCode, errResp)
				return
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// authMiddleware authenticates the request from a bearer access token
// and stores the caller's id and role grants on the request context.
func (s *StudiumApp) authMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenString, ok := bearerToken(r)
		if !ok {
			errResp := NewUnauthorizedError()
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}

		userId, roles, err := s.extractSessionFromToken(tokenString)
		if err != nil {
			s.log.Printf("failed to extract session from token: %v", err)
			errResp := NewUnauthorizedError()
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}

		ctx := context.WithValue(r.Context(), userIdKey, userId)
		ctx = context.WithValue(ctx, rolesKey, roles)
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, private")

		next(w, r.WithContext(ctx))
	}
}

// verifyRoles admits the request when any of the caller's role grants
// matches one of the required codes.
func (s *StudiumApp) verifyRoles(next http.HandlerFunc, codes ...int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roles, ok := Roles(r.Context())
		if !ok {
			errResp := NewUnauthorizedError()
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}

		for _, granted := range roles {
			for _, code := range codes {
				if granted == code {
					next(w, r)
					return
				}
			}
		}

		errResp := NewForbiddenError()
		s.writeJson(w, errResp.StatusCode, errResp)
	}
}

func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(auth, "Bearer ")
	if !found || token == "" {
		return "", false
	}
	return token, true
}

func (s *StudiumApp) extractSessionFromToken(tokenString string) (string, map[string]int, error) {
	token, err := s.verifyToken(tokenString)
	if err != nil {
		return "", nil, fmt.Errorf("verify token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", nil, fmt.Errorf("invalid token claims")
	}

	userId, ok := claims[userIdClaim].(string)
	if !ok {
		return "", nil, fmt.Errorf("invalid user id claim")
	}

	roles := make(map[string]int)
	if rawRoles, ok := claims[rolesClaim].(map[string]interface{}); ok {
		for name, code := range rawRoles {
			if c, ok := code.(float64); ok {
				roles[name] = int(c)
			}
		}
	}

	return userId, roles, nil
}
