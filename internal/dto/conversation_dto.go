package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type CreateConversationRequest struct {
	Title            string `json:"title" validate:"required,max=255"`
	SelectedLevel    string `json:"selectedLevel,omitempty" validate:"omitempty,oneof=L1 L2 L3 CRFPA"`
	SelectedCourseId string `json:"selectedCourseId,omitempty" validate:"omitempty,max=100"`
}

type UpdateConversationTitleRequest struct {
	Title string `json:"title" validate:"required,max=255"`
}

type UpdateConversationSelectionRequest struct {
	SelectedLevel    string `json:"selectedLevel,omitempty" validate:"omitempty,oneof=L1 L2 L3 CRFPA"`
	SelectedCourseId string `json:"selectedCourseId,omitempty" validate:"omitempty,max=100"`
}

type SaveMessageRequest struct {
	Role      string          `json:"role" validate:"required,oneof=user assistant system"`
	Content   string          `json:"content"`
	ToolCalls json.RawMessage `json:"toolCalls,omitempty"`
}

type ConversationResponse struct {
	Id               uuid.UUID  `json:"id"`
	UserId           uuid.UUID  `json:"user_id"`
	Title            string     `json:"title"`
	SelectedLevel    *string    `json:"selected_level"`
	SelectedCourseId *string    `json:"selected_course_id"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        *time.Time `json:"updated_at"`
}

type ConversationPreviewResponse struct {
	Id               uuid.UUID  `json:"id"`
	Title            string     `json:"title"`
	SelectedLevel    *string    `json:"selected_level"`
	SelectedCourseId *string    `json:"selected_course_id"`
	UpdatedAt        *time.Time `json:"updated_at"`
	LastMessage      string     `json:"last_message"`
}

type ConversationListResponse struct {
	Data     []ConversationPreviewResponse `json:"data"`
	NextPage *int                          `json:"nextPage,omitempty"`
	HasMore  bool                          `json:"hasMore"`
}

type MessageResponse struct {
	Id             uuid.UUID       `json:"id"`
	ConversationId uuid.UUID       `json:"conversation_id"`
	Role           string          `json:"role"`
	Content        string          `json:"content"`
	ToolCalls      json.RawMessage `json:"tool_calls,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

type ConversationWithMessagesResponse struct {
	ConversationResponse
	Messages []MessageResponse `json:"messages"`
}
