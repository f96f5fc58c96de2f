package dto

import (
	"encoding/json"

	"github.com/google/uuid"
)

type ChatMessage struct {
	Role    string `json:"role" validate:"required,oneof=user assistant system"`
	Content string `json:"content"`
}

// ChatRequest is the body the chat UI posts on every turn.
type ChatRequest struct {
	Messages         []ChatMessage `json:"messages" validate:"required,min=1,dive"`
	SelectedLevel    string        `json:"selectedLevel,omitempty" validate:"omitempty,oneof=L1 L2 L3 CRFPA"`
	SelectedCourseId string        `json:"selectedCourseId,omitempty" validate:"omitempty,max=100"`
	ConversationId   *uuid.UUID    `json:"conversationId,omitempty"`
}

// TurnCompletedMessage is the in-process message handed from the chat
// stream to the persistence consumer.
type TurnCompletedMessage struct {
	ConversationId   uuid.UUID       `json:"conversation_id"`
	UserId           uuid.UUID       `json:"user_id"`
	UserContent      string          `json:"user_content"`
	AssistantContent string          `json:"assistant_content"`
	ToolCalls        json.RawMessage `json:"tool_calls,omitempty"`
	SelectedLevel    string          `json:"selected_level,omitempty"`
	SelectedCourseId string          `json:"selected_course_id,omitempty"`
	SelectionChanged bool            `json:"selection_changed"`
	FinishReason     string          `json:"finish_reason"`
	Steps            int             `json:"steps"`
	Violations       []string        `json:"violations,omitempty"`
}
