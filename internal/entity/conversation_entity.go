package entity

import (
	"time"

	"github.com/google/uuid"
)

type Conversation struct {
	Id               uuid.UUID
	UserId           uuid.UUID
	Title            string
	SelectedLevel    string
	SelectedCourseId string
	CreatedAt        time.Time
	UpdatedAt        *time.Time
	DeletedAt        *time.Time
	IsDeleted        bool
}

// ConversationPreview is a conversation row joined with its latest message.
type ConversationPreview struct {
	Conversation
	LastMessage string
}
