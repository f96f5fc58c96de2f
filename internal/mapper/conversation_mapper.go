package mapper

import (
	"encoding/json"
	"time"

	"jurisperform-be/internal/entity"
	"jurisperform-be/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ConversationMapper struct{}

func NewConversationMapper() *ConversationMapper {
	return &ConversationMapper{}
}

// Conversation Mappers

func (m *ConversationMapper) ConversationToEntity(c *model.Conversation) *entity.Conversation {
	if c == nil {
		return nil
	}

	var deletedAt *time.Time
	if c.DeletedAt.Valid {
		t := c.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		updatedAt = &t
	}

	return &entity.Conversation{
		Id:               c.Id,
		UserId:           c.UserId,
		Title:            c.Title,
		SelectedLevel:    deref(c.SelectedLevel),
		SelectedCourseId: deref(c.SelectedCourseId),
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        updatedAt,
		DeletedAt:        deletedAt,
		IsDeleted:        c.DeletedAt.Valid,
	}
}

func (m *ConversationMapper) ConversationToModel(c *entity.Conversation) *model.Conversation {
	if c == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if c.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *c.DeletedAt, Valid: true}
	} else if c.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if c.UpdatedAt != nil {
		updatedAt = *c.UpdatedAt
	}

	return &model.Conversation{
		Id:               c.Id,
		UserId:           c.UserId,
		Title:            c.Title,
		SelectedLevel:    ref(c.SelectedLevel),
		SelectedCourseId: ref(c.SelectedCourseId),
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        updatedAt,
		DeletedAt:        deletedAt,
	}
}

func (m *ConversationMapper) PreviewToEntity(p *model.ConversationPreview) *entity.ConversationPreview {
	if p == nil {
		return nil
	}
	return &entity.ConversationPreview{
		Conversation: *m.ConversationToEntity(&p.Conversation),
		LastMessage:  deref(p.LastMessage),
	}
}

// Message Mappers

func (m *ConversationMapper) MessageToEntity(msg *model.Message) *entity.Message {
	if msg == nil {
		return nil
	}

	var deletedAt *time.Time
	if msg.DeletedAt.Valid {
		t := msg.DeletedAt.Time
		deletedAt = &t
	}

	var toolCalls json.RawMessage
	if len(msg.ToolCalls) > 0 {
		toolCalls = json.RawMessage(msg.ToolCalls)
	}

	return &entity.Message{
		Id:             msg.Id,
		ConversationId: msg.ConversationId,
		Role:           msg.Role,
		Content:        msg.Content,
		ToolCalls:      toolCalls,
		CreatedAt:      msg.CreatedAt,
		DeletedAt:      deletedAt,
		IsDeleted:      msg.DeletedAt.Valid,
	}
}

func (m *ConversationMapper) MessageToModel(msg *entity.Message) *model.Message {
	if msg == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if msg.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *msg.DeletedAt, Valid: true}
	} else if msg.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var toolCalls datatypes.JSON
	if len(msg.ToolCalls) > 0 {
		toolCalls = datatypes.JSON(msg.ToolCalls)
	}

	return &model.Message{
		Id:             msg.Id,
		ConversationId: msg.ConversationId,
		Role:           msg.Role,
		Content:        msg.Content,
		ToolCalls:      toolCalls,
		CreatedAt:      msg.CreatedAt,
		DeletedAt:      deletedAt,
	}
}

func (m *ConversationMapper) MessagesToEntities(models []*model.Message) []*entity.Message {
	entities := make([]*entity.Message, len(models))
	for i, msg := range models {
		entities[i] = m.MessageToEntity(msg)
	}
	return entities
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ref maps "" to NULL.
func ref(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
