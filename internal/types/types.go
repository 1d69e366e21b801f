package types

import (
	"time"
)

type User struct {
	Id            string         `json:"id"`
	Name          string         `json:"name"`
	Surname       string         `json:"surname"`
	StudentNumber string         `json:"student_number,omitempty"`
	Email         string         `json:"email,omitempty"`
	Roles         map[string]int `json:"roles,omitempty"`
	Picture       string         `json:"picture,omitempty"`
	Password      string         `json:"-"`
	CreatedAt     time.Time      `json:"created_at,omitempty"`
	UpdatedAt     time.Time      `json:"updated_at,omitempty"`
}

type Course struct {
	Id          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	TeacherId   string    `json:"teacher_id"`
	Members     []string  `json:"members,omitempty"`
	Pic         string    `json:"pic,omitempty"`
	Events      []Event   `json:"events,omitempty"`
	Files       []string  `json:"files,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

type Event struct {
	Id          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Url         string    `json:"url,omitempty"`
	ClassName   string    `json:"class_name,omitempty"`
	InCall      []string  `json:"in_call"`
}

type Conversation struct {
	Id        string    `json:"id"`
	Name      string    `json:"name"`
	Members   []string  `json:"members"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

type Message struct {
	Id             string    `json:"id"`
	ConversationId string    `json:"conversation_id,omitempty"`
	Sender         string    `json:"sender"`
	Text           string    `json:"text"`
	CreatedAt      time.Time `json:"created_at"`
}

type Exam struct {
	Id        string         `json:"id"`
	Title     string         `json:"title"`
	Json      map[string]any `json:"json,omitempty"`
	EventId   string         `json:"event_id"`
	Results   []ExamResult   `json:"results,omitempty"`
	CreatedAt time.Time      `json:"created_at,omitempty"`
	UpdatedAt time.Time      `json:"updated_at,omitempty"`
}

type ExamResult struct {
	UserId    string         `json:"user_id"`
	Json      map[string]any `json:"json,omitempty"`
	CreatedAt time.Time      `json:"created_at,omitempty"`
}

type LoginCount struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
}

type FileInfo struct {
	Id         string    `json:"id"`
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploaded_at"`
}
