package database

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	// ErrNotFound is returned when no document matches the query.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique index rejects a write.
	ErrDuplicate = errors.New("duplicate key")
)

type StudiumRepository interface {
	Ping(ctx context.Context) error

	// users
	CreateUser(ctx context.Context, params CreateUserParams) (User, error)
	UpdateUser(ctx context.Context, params UpdateUserParams) (User, error)
	GetUserById(ctx context.Context, userId string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	GetUserBySocket(ctx context.Context, socketId string) (User, error)
	GetUserByStudentNumber(ctx context.Context, studentNumber string) (User, error)
	GetUserByResetToken(ctx context.Context, token string) (User, error)
	GetUserByRefreshToken(ctx context.Context, token string) (User, error)
	SetUserSocket(ctx context.Context, userId, socketId string) error
	ClearUserSocket(ctx context.Context, userId string) error
	SetUserRefreshToken(ctx context.Context, userId, token string) error
	SetUserResetToken(ctx context.Context, userId, token string, expiresAt time.Time) error
	SetUserPassword(ctx context.Context, userId, passwordHash string) error
	SetUserPicture(ctx context.Context, userId, picture string) error
	SetUserRoles(ctx context.Context, userId string, roles map[string]int) error
	DeleteUser(ctx context.Context, userId string) error
	ListUsers(ctx context.Context) ([]User, error)
	ListAllUsers(ctx context.Context) ([]User, error)
	ListUsersWithRole(ctx context.Context, role string) ([]User, error)

	// courses
	CreateCourse(ctx context.Context, params CreateCourseParams) (Course, error)
	UpdateCourse(ctx context.Context, params UpdateCourseParams) (Course, error)
	GetCourseById(ctx context.Context, courseId string) (Course, error)
	GetCourseByEventId(ctx context.Context, eventId string) (Course, error)
	DeleteCourse(ctx context.Context, courseId string) error
	ListCourses(ctx context.Context) ([]Course, error)
	ListCoursesForMember(ctx context.Context, userId string) ([]Course, error)
	ListCoursesForTeacher(ctx context.Context, userId string) ([]Course, error)
	ListCoursesExcludingMember(ctx context.Context, userId string) ([]Course, error)
	AddCourseMember(ctx context.Context, courseId, userId string) error
	RemoveCourseMember(ctx context.Context, courseId, userId string) error
	AddUserToCourses(ctx context.Context, userId string, courseIds []string) error
	RemoveUserFromCourses(ctx context.Context, userId string, courseIds []string) error
	AttachCourseFile(ctx context.Context, courseId, fileId string) error

	// events
	AppendEvent(ctx context.Context, params CreateEventParams) (Event, error)
	SetEventUrl(ctx context.Context, courseId, eventId, url string) error
	AddEventParticipant(ctx context.Context, courseId, eventId, userId string) error
	RemoveEventParticipant(ctx context.Context, courseId, eventId, userId string) error
	RemoveParticipantFromAllEvents(ctx context.Context, userId string) error

	// conversations
	CreateConversation(ctx context.Context, params CreateConversationParams) (Conversation, error)
	GetConversationById(ctx context.Context, conversationId string) (Conversation, error)
	ListConversations(ctx context.Context) ([]Conversation, error)
	ListConversationsForMember(ctx context.Context, userId string) ([]Conversation, error)
	AppendMessage(ctx context.Context, conversationId, senderId, text string, at time.Time) (Message, error)

	// exams
	CreateExam(ctx context.Context, params CreateExamParams) (Exam, error)
	GetExamByEventId(ctx context.Context, eventId string) (Exam, error)
	UpdateExam(ctx context.Context, examId, title string, examJson map[string]any) (Exam, error)
	SaveExamResult(ctx context.Context, examId, userId string, resultJson map[string]any) (Exam, error)
	ListExamsForParticipant(ctx context.Context, userId string) ([]Exam, error)

	// login counts
	IncrementLoginCount(ctx context.Context, date time.Time) error
	ListLoginCounts(ctx context.Context) ([]LoginCount, error)

	// course files (GridFS)
	UploadFile(ctx context.Context, filename, originalName string, r io.Reader) (string, error)
	DownloadFile(ctx context.Context, fileId string, w io.Writer) (FileInfo, error)
	DeleteFile(ctx context.Context, fileId string) error
	ListCourseFiles(ctx context.Context, fileIds []string) ([]FileInfo, error)
}

type FileInfo struct {
	Id           string
	Name         string
	OriginalName string
	Size         int64
	UploadedAt   time.Time
}
