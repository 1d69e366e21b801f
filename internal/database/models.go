package database

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role codes carried in User.Roles. A role is granted when its code is
// present under the role name key.
const (
	RoleUser    = 2001
	RoleStudent = 1984
	RoleTeacher = 5150
	RoleAdmin   = 1001
	RoleBlocked = 4004
)

type User struct {
	Id            primitive.ObjectID `bson:"_id,omitempty"`
	Name          string             `bson:"name"`
	Surname       string             `bson:"surname,omitempty"`
	StudentNumber string             `bson:"studentNumber,omitempty"`
	Email         string             `bson:"email"`
	Roles         map[string]int     `bson:"roles"`
	PasswordHash  string             `bson:"password"`
	// Socket is the id of the user's live realtime connection, nil when offline.
	Socket              *string    `bson:"socket,omitempty"`
	Picture             string     `bson:"picture,omitempty"`
	ResetToken          string     `bson:"resetToken,omitempty"`
	ResetTokenExpiresAt *time.Time `bson:"resetTokenExpiresAt,omitempty"`
	RefreshToken        string     `bson:"refreshToken,omitempty"`
	CreatedAt           time.Time  `bson:"createdAt"`
	UpdatedAt           time.Time  `bson:"updatedAt"`
}

type Course struct {
	Id          primitive.ObjectID   `bson:"_id,omitempty"`
	Name        string               `bson:"name"`
	Description string               `bson:"description,omitempty"`
	TeacherId   primitive.ObjectID   `bson:"teacherId"`
	Members     []primitive.ObjectID `bson:"members"`
	Pic         string               `bson:"pic,omitempty"`
	Events      []Event              `bson:"events"`
	Files       []primitive.ObjectID `bson:"files"`
	CreatedAt   time.Time            `bson:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt"`
}

type Event struct {
	Id          primitive.ObjectID   `bson:"_id,omitempty"`
	Title       string               `bson:"title"`
	Description string               `bson:"description,omitempty"`
	Start       time.Time            `bson:"start"`
	End         time.Time            `bson:"end"`
	Url         string               `bson:"url,omitempty"`
	ClassName   string               `bson:"className,omitempty"`
	InCall      []primitive.ObjectID `bson:"inCall"`
}

type Conversation struct {
	Id        primitive.ObjectID   `bson:"_id,omitempty"`
	Name      string               `bson:"name"`
	Members   []primitive.ObjectID `bson:"members"`
	Messages  []Message            `bson:"messages"`
	CreatedAt time.Time            `bson:"createdAt"`
	UpdatedAt time.Time            `bson:"updatedAt"`
}

type Message struct {
	Id        primitive.ObjectID `bson:"_id,omitempty"`
	Sender    primitive.ObjectID `bson:"sender"`
	Text      string             `bson:"text"`
	CreatedAt time.Time          `bson:"createdAt"`
}

type Exam struct {
	Id        primitive.ObjectID `bson:"_id,omitempty"`
	Title     string             `bson:"title"`
	Json      map[string]any     `bson:"json,omitempty"`
	EventId   primitive.ObjectID `bson:"eventId"`
	Results   []ExamResult       `bson:"results"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

type ExamResult struct {
	UserId    primitive.ObjectID `bson:"userId"`
	Json      map[string]any     `bson:"json,omitempty"`
	CreatedAt time.Time          `bson:"createdAt"`
}

type LoginCount struct {
	Id    primitive.ObjectID `bson:"_id,omitempty"`
	Date  time.Time          `bson:"date"`
	Count int                `bson:"count"`
}

type CreateUserParams struct {
	Name          string
	Surname       string
	StudentNumber string
	Email         string
	Roles         map[string]int
	PasswordHash  string
}

type UpdateUserParams struct {
	UserId       string
	Name         string
	Surname      string
	Email        string
	PasswordHash string
	Roles        map[string]int
	Picture      string
}

type CreateCourseParams struct {
	Name        string
	Description string
	TeacherId   string
	Pic         string
}

type UpdateCourseParams struct {
	CourseId    string
	Name        string
	Description string
	TeacherId   string
	Pic         string
}

type CreateEventParams struct {
	CourseId    string
	Title       string
	Description string
	Start       time.Time
	End         time.Time
	Url         string
	ClassName   string
}

type CreateConversationParams struct {
	Name    string
	Members []string
}

type CreateExamParams struct {
	Title   string
	Json    map[string]any
	EventId string
}
