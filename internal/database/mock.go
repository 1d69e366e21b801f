package database

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"
)

type MockStudiumRepository struct {
	mock.Mock
}

func (m *MockStudiumRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
func (m *MockStudiumRepository) CreateUser(ctx context.Context, params CreateUserParams) (User, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockStudiumRepository) UpdateUser(ctx context.Context, params UpdateUserParams) (User, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockStudiumRepository) GetUserById(ctx context.Context, userId string) (User, error) {
	args := m.Called(ctx, userId)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockStudiumRepository) GetUserByEmail(ctx context.Context, email string) (User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockStudiumRepository) GetUserBySocket(ctx context.Context, socketId string) (User, error) {
	args := m.Called(ctx, socketId)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockStudiumRepository) GetUserByStudentNumber(ctx context.Context, studentNumber string) (User, error) {
	args := m.Called(ctx, studentNumber)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockStudiumRepository) GetUserByResetToken(ctx context.Context, token string) (User, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockStudiumRepository) GetUserByRefreshToken(ctx context.Context, token string) (User, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockStudiumRepository) SetUserSocket(ctx context.Context, userId, socketId string) error {
	args := m.Called(ctx, userId, socketId)
	return args.Error(0)
}
func (m *MockStudiumRepository) ClearUserSocket(ctx context.Context, userId string) error {
	args := m.Called(ctx, userId)
	return args.Error(0)
}
func (m *MockStudiumRepository) SetUserRefreshToken(ctx context.Context, userId, token string) error {
	args := m.Called(ctx, userId, token)
	return args.Error(0)
}
func (m *MockStudiumRepository) SetUserResetToken(ctx context.Context, userId, token string, expiresAt time.Time) error {
	args := m.Called(ctx, userId, token, expiresAt)
	return args.Error(0)
}
func (m *MockStudiumRepository) SetUserPassword(ctx context.Context, userId, passwordHash string) error {
	args := m.Called(ctx, userId, passwordHash)
	return args.Error(0)
}
func (m *MockStudiumRepository) SetUserPicture(ctx context.Context, userId, picture string) error {
	args := m.Called(ctx, userId, picture)
	return args.Error(0)
}
func (m *MockStudiumRepository) SetUserRoles(ctx context.Context, userId string, roles map[string]int) error {
	args := m.Called(ctx, userId, roles)
	return args.Error(0)
}
func (m *MockStudiumRepository) DeleteUser(ctx context.Context, userId string) error {
	args := m.Called(ctx, userId)
	return args.Error(0)
}
func (m *MockStudiumRepository) ListUsers(ctx context.Context) ([]User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]User), args.Error(1)
}
func (m *MockStudiumRepository) ListAllUsers(ctx context.Context) ([]User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]User), args.Error(1)
}
func (m *MockStudiumRepository) ListUsersWithRole(ctx context.Context, role string) ([]User, error) {
	args := m.Called(ctx, role)
	return args.Get(0).([]User), args.Error(1)
}
func (m *MockStudiumRepository) CreateCourse(ctx context.Context, params CreateCourseParams) (Course, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(Course), args.Error(1)
}
func (m *MockStudiumRepository) UpdateCourse(ctx context.Context, params UpdateCourseParams) (Course, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(Course), args.Error(1)
}
func (m *MockStudiumRepository) GetCourseById(ctx context.Context, courseId string) (Course, error) {
	args := m.Called(ctx, courseId)
	return args.Get(0).(Course), args.Error(1)
}
func (m *MockStudiumRepository) GetCourseByEventId(ctx context.Context, eventId string) (Course, error) {
	args := m.Called(ctx, eventId)
	return args.Get(0).(Course), args.Error(1)
}
func (m *MockStudiumRepository) DeleteCourse(ctx context.Context, courseId string) error {
	args := m.Called(ctx, courseId)
	return args.Error(0)
}
func (m *MockStudiumRepository) ListCourses(ctx context.Context) ([]Course, error) {
	args := m.Called(ctx)
	return args.Get(0).([]Course), args.Error(1)
}
func (m *MockStudiumRepository) ListCoursesForMember(ctx context.Context, userId string) ([]Course, error) {
	args := m.Called(ctx, userId)
	return args.Get(0).([]Course), args.Error(1)
}
func (m *MockStudiumRepository) ListCoursesForTeacher(ctx context.Context, userId string) ([]Course, error) {
	args := m.Called(ctx, userId)
	return args.Get(0).([]Course), args.Error(1)
}
func (m *MockStudiumRepository) ListCoursesExcludingMember(ctx context.Context, userId string) ([]Course, error) {
	args := m.Called(ctx, userId)
	return args.Get(0).([]Course), args.Error(1)
}
func (m *MockStudiumRepository) AddCourseMember(ctx context.Context, courseId, userId string) error {
	args := m.Called(ctx, courseId, userId)
	return args.Error(0)
}
func (m *MockStudiumRepository) RemoveCourseMember(ctx context.Context, courseId, userId string) error {
	args := m.Called(ctx, courseId, userId)
	return args.Error(0)
}
func (m *MockStudiumRepository) AddUserToCourses(ctx context.Context, userId string, courseIds []string) error {
	args := m.Called(ctx, userId, courseIds)
	return args.Error(0)
}
func (m *MockStudiumRepository) RemoveUserFromCourses(ctx context.Context, userId string, courseIds []string) error {
	args := m.Called(ctx, userId, courseIds)
	return args.Error(0)
}
func (m *MockStudiumRepository) AttachCourseFile(ctx context.Context, courseId, fileId string) error {
	args := m.Called(ctx, courseId, fileId)
	return args.Error(0)
}
func (m *MockStudiumRepository) AppendEvent(ctx context.Context, params CreateEventParams) (Event, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(Event), args.Error(1)
}
func (m *MockStudiumRepository) SetEventUrl(ctx context.Context, courseId, eventId, url string) error {
	args := m.Called(ctx, courseId, eventId, url)
	return args.Error(0)
}
func (m *MockStudiumRepository) AddEventParticipant(ctx context.Context, courseId, eventId, userId string) error {
	args := m.Called(ctx, courseId, eventId, userId)
	return args.Error(0)
}
func (m *MockStudiumRepository) RemoveEventParticipant(ctx context.Context, courseId, eventId, userId string) error {
	args := m.Called(ctx, courseId, eventId, userId)
	return args.Error(0)
}
func (m *MockStudiumRepository) RemoveParticipantFromAllEvents(ctx context.Context, userId string) error {
	args := m.Called(ctx, userId)
	return args.Error(0)
}
func (m *MockStudiumRepository) CreateConversation(ctx context.Context, params CreateConversationParams) (Conversation, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(Conversation), args.Error(1)
}
func (m *MockStudiumRepository) GetConversationById(ctx context.Context, conversationId string) (Conversation, error) {
	args := m.Called(ctx, conversationId)
	return args.Get(0).(Conversation), args.Error(1)
}
func (m *MockStudiumRepository) ListConversations(ctx context.Context) ([]Conversation, error) {
	args := m.Called(ctx)
	return args.Get(0).([]Conversation), args.Error(1)
}
func (m *MockStudiumRepository) ListConversationsForMember(ctx context.Context, userId string) ([]Conversation, error) {
	args := m.Called(ctx, userId)
	return args.Get(0).([]Conversation), args.Error(1)
}
func (m *MockStudiumRepository) AppendMessage(ctx context.Context, conversationId, senderId, text string, at time.Time) (Message, error) {
	args := m.Called(ctx, conversationId, senderId, text, at)
	return args.Get(0).(Message), args.Error(1)
}
func (m *MockStudiumRepository) CreateExam(ctx context.Context, params CreateExamParams) (Exam, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(Exam), args.Error(1)
}
func (m *MockStudiumRepository) GetExamByEventId(ctx context.Context, eventId string) (Exam, error) {
	args := m.Called(ctx, eventId)
	return args.Get(0).(Exam), args.Error(1)
}
func (m *MockStudiumRepository) UpdateExam(ctx context.Context, examId, title string, examJson map[string]any) (Exam, error) {
	args := m.Called(ctx, examId, title, examJson)
	return args.Get(0).(Exam), args.Error(1)
}
func (m *MockStudiumRepository) SaveExamResult(ctx context.Context, examId, userId string, resultJson map[string]any) (Exam, error) {
	args := m.Called(ctx, examId, userId, resultJson)
	return args.Get(0).(Exam), args.Error(1)
}
func (m *MockStudiumRepository) ListExamsForParticipant(ctx context.Context, userId string) ([]Exam, error) {
	args := m.Called(ctx, userId)
	return args.Get(0).([]Exam), args.Error(1)
}
func (m *MockStudiumRepository) IncrementLoginCount(ctx context.Context, date time.Time) error {
	args := m.Called(ctx, date)
	return args.Error(0)
}
func (m *MockStudiumRepository) ListLoginCounts(ctx context.Context) ([]LoginCount, error) {
	args := m.Called(ctx)
	return args.Get(0).([]LoginCount), args.Error(1)
}
func (m *MockStudiumRepository) UploadFile(ctx context.Context, filename, originalName string, r io.Reader) (string, error) {
	args := m.Called(ctx, filename, originalName, r)
	return args.String(0), args.Error(1)
}
func (m *MockStudiumRepository) DownloadFile(ctx context.Context, fileId string, w io.Writer) (FileInfo, error) {
	args := m.Called(ctx, fileId, w)
	return args.Get(0).(FileInfo), args.Error(1)
}
func (m *MockStudiumRepository) DeleteFile(ctx context.Context, fileId string) error {
	args := m.Called(ctx, fileId)
	return args.Error(0)
}
func (m *MockStudiumRepository) ListCourseFiles(ctx context.Context, fileIds []string) ([]FileInfo, error) {
	args := m.Called(ctx, fileIds)
	return args.Get(0).([]FileInfo), args.Error(1)
}
