package constant

const (
	MessageRoleUser      = "user"
	MessageRoleAssistant = "assistant"
	MessageRoleSystem    = "system"
)

// In-process topic carrying finished turns to the persistence consumer.
const TurnCompletedTopic = "tutor.turn.completed"

// Event types published to NATS under events.<TYPE>.
const (
	EventTutorTurnCompleted     = "TUTOR_TURN_COMPLETED"
	EventCourseSelectionChanged = "COURSE_SELECTION_CHANGED"
	EventConversationDeleted    = "CONVERSATION_DELETED"
)

const (
	DefaultConversationPageSize = 20
	MaxConversationPageSize     = 100
)

// LiveEventTypes are forwarded to the owner's websocket connections.
var LiveEventTypes = []string{
	EventTutorTurnCompleted,
	EventCourseSelectionChanged,
	EventConversationDeleted,
}
