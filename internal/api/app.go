package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/teris-io/shortid"

	"github.com/mzalewski-wsm/studium/internal/config"
	"github.com/mzalewski-wsm/studium/internal/database"
	"github.com/mzalewski-wsm/studium/internal/mailer"
	"github.com/mzalewski-wsm/studium/internal/server"
)

type StudiumApp struct {
	log            *log.Logger
	db             database.StudiumRepository
	mux            *http.Server
	rtc            *server.RtcServer
	mailer         mailer.Mailer
	signingKey     []byte
	allowedOrigins []string
	storagePath    string

	// overridable in tests
	generateShortId func() (string, error)
}

func NewStudiumApp(mux *http.ServeMux, logger *log.Logger, rtc *server.RtcServer, db database.StudiumRepository, m mailer.Mailer, cfg *config.Config) *StudiumApp {
	s := &StudiumApp{
		log:            logger,
		db:             db,
		rtc:            rtc,
		mailer:         m,
		signingKey:     cfg.SigningKey,
		allowedOrigins: cfg.AllowedOrigins,
		storagePath:    cfg.StoragePath,

		generateShortId: shortid.Generate,
	}

	mux.HandleFunc("GET /healthz", s.healthCheck)

	mux.HandleFunc("POST /api/auth/register", s.register)
	mux.HandleFunc("POST /api/auth/login", s.login)
	mux.HandleFunc("GET /api/auth/refresh", s.refresh)
	mux.HandleFunc("GET /api/auth/logout", s.logout)
	mux.HandleFunc("POST /api/auth/reset-password", s.requestPasswordReset)
	mux.HandleFunc("POST /api/auth/reset-password/confirm", s.confirmPasswordReset)

	mux.Handle("GET /api/users", s.authMiddleware(s.verifyRoles(s.listUsers, database.RoleTeacher, database.RoleAdmin)))
	mux.Handle("GET /api/users/{id}", s.authMiddleware(s.getUser))
	mux.Handle("PUT /api/users/{id}", s.authMiddleware(s.updateUser))
	mux.Handle("DELETE /api/users/{id}", s.authMiddleware(s.verifyRoles(s.deleteUser, database.RoleAdmin)))
	mux.Handle("POST /api/users/{id}/picture", s.authMiddleware(s.uploadProfilePicture))

	mux.Handle("POST /api/courses", s.authMiddleware(s.verifyRoles(s.createCourse, database.RoleTeacher, database.RoleAdmin)))
	mux.Handle("GET /api/courses", s.authMiddleware(s.listCourses))
	mux.Handle("GET /api/courses/{id}", s.authMiddleware(s.getCourse))
	mux.Handle("PUT /api/courses/{id}", s.authMiddleware(s.verifyRoles(s.updateCourse, database.RoleTeacher, database.RoleAdmin)))
	mux.Handle("DELETE /api/courses/{id}", s.authMiddleware(s.verifyRoles(s.deleteCourse, database.RoleAdmin)))
	mux.Handle("POST /api/courses/{id}/members", s.authMiddleware(s.verifyRoles(s.addCourseMember, database.RoleTeacher, database.RoleAdmin)))
	mux.Handle("DELETE /api/courses/{id}/members/{userId}", s.authMiddleware(s.verifyRoles(s.removeCourseMember, database.RoleTeacher, database.RoleAdmin)))

	mux.Handle("POST /api/courses/{id}/events", s.authMiddleware(s.verifyRoles(s.createEvent, database.RoleTeacher, database.RoleAdmin)))
	mux.Handle("GET /api/courses/{id}/events", s.authMiddleware(s.listCourseEvents))
	mux.Handle("PUT /api/courses/{id}/events/{eventId}/url", s.authMiddleware(s.verifyRoles(s.setEventUrl, database.RoleTeacher, database.RoleAdmin)))
	mux.Handle("GET /api/events", s.authMiddleware(s.listUserEvents))
	mux.Handle("GET /api/events/{id}/course", s.authMiddleware(s.getCourseForEvent))

	mux.Handle("POST /api/courses/{id}/files", s.authMiddleware(s.verifyRoles(s.uploadCourseFile, database.RoleTeacher, database.RoleAdmin)))
	mux.Handle("GET /api/courses/{id}/files", s.authMiddleware(s.listCourseFiles))
	mux.Handle("GET /api/files/{id}", s.authMiddleware(s.downloadFile))
	mux.Handle("DELETE /api/files/{id}", s.authMiddleware(s.verifyRoles(s.deleteFile, database.RoleTeacher, database.RoleAdmin)))

	mux.Handle("POST /api/exams", s.authMiddleware(s.verifyRoles(s.createExam, database.RoleTeacher, database.RoleAdmin)))
	mux.Handle("GET /api/exams", s.authMiddleware(s.getExamByEvent))
	mux.Handle("PUT /api/exams/{id}", s.authMiddleware(s.verifyRoles(s.updateExam, database.RoleTeacher, database.RoleAdmin)))
	mux.Handle("POST /api/exams/{id}/results", s.authMiddleware(s.saveExamResult))
	mux.Handle("GET /api/exams/results", s.authMiddleware(s.listExamResults))

	mux.Handle("POST /api/conversations", s.authMiddleware(s.createConversation))
	mux.Handle("GET /api/conversations", s.authMiddleware(s.listConversations))
	mux.Handle("GET /api/conversations/{id}", s.authMiddleware(s.getConversation))

	mux.Handle("POST /api/admin/users/import", s.authMiddleware(s.verifyRoles(s.importUsers, database.RoleAdmin)))
	mux.Handle("GET /api/admin/users/export", s.authMiddleware(s.verifyRoles(s.exportUsers, database.RoleAdmin)))
	mux.Handle("POST /api/admin/courses/import", s.authMiddleware(s.verifyRoles(s.importCourses, database.RoleAdmin)))
	mux.Handle("POST /api/admin/course-members/import", s.authMiddleware(s.verifyRoles(s.importCourseMembers, database.RoleAdmin)))
	mux.Handle("GET /api/admin/csv/{shape}", s.authMiddleware(s.verifyRoles(s.downloadCsvSchema, database.RoleAdmin)))
	mux.Handle("PUT /api/admin/users/{id}/roles", s.authMiddleware(s.verifyRoles(s.setUserRoles, database.RoleAdmin)))
	mux.Handle("POST /api/admin/users/{id}/block", s.authMiddleware(s.verifyRoles(s.blockUser, database.RoleAdmin)))
	mux.Handle("DELETE /api/admin/users/{id}/block", s.authMiddleware(s.verifyRoles(s.unblockUser, database.RoleAdmin)))
	mux.Handle("POST /api/admin/users/{id}/courses", s.authMiddleware(s.verifyRoles(s.addUserCourses, database.RoleAdmin)))
	mux.Handle("DELETE /api/admin/users/{id}/courses", s.authMiddleware(s.verifyRoles(s.removeUserCourses, database.RoleAdmin)))
	mux.Handle("GET /api/admin/login-counts", s.authMiddleware(s.verifyRoles(s.listLoginCounts, database.RoleAdmin)))

	mux.HandleFunc("GET /ws", s.serveWs)

	h := handlers.CORS(
		handlers.MaxAge(3600),
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Origin", "Content-Type", "Accept", "Authorization"}),
		handlers.AllowCredentials(),
	)(mux)

	h = s.errorHandler(h)

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: h,
	}

	s.mux = srv
	return s
}

func (s *StudiumApp) Start() error {
	s.log.Printf("starting server on %s\n", s.mux.Addr)
	return s.mux.ListenAndServe()
}

func (s *StudiumApp) Shutdown(ctx context.Context) error {
	s.log.Println("shutting down HTTP server...")
	if err := s.mux.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}

func (s *StudiumApp) healthCheck(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(r.Context()); err != nil {
		s.log.Printf("health check: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *StudiumApp) writeJson(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if v == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Printf("json encode: %v", err)
	}
}
