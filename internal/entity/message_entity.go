package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Message struct {
	Id             uuid.UUID
	ConversationId uuid.UUID
	Role           string
	Content        string
	// ToolCalls holds the raw JSON of the tool invocations of an assistant turn.
	ToolCalls json.RawMessage
	CreatedAt time.Time
	DeletedAt *time.Time
	IsDeleted bool
}
