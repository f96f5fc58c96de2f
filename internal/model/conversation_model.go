package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Conversation struct {
	Id               uuid.UUID      `gorm:"type:uuid;primaryKey"`
	UserId           uuid.UUID      `gorm:"type:uuid;not null;index"` // User ownership for data isolation
	Title            string         `gorm:"type:text;not null"`
	SelectedLevel    *string        `gorm:"type:varchar(10)"`
	SelectedCourseId *string        `gorm:"type:varchar(100)"`
	CreatedAt        time.Time      `gorm:"autoCreateTime"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime;index"`
	DeletedAt        gorm.DeletedAt `gorm:"index"`
	Messages         []Message      `gorm:"foreignKey:ConversationId;constraint:OnDelete:CASCADE"`
}

func (Conversation) TableName() string {
	return "conversations"
}

func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.Id == uuid.Nil {
		c.Id = uuid.New()
	}
	return nil
}

// ConversationPreview is the row shape of the paginated conversation list.
type ConversationPreview struct {
	Conversation
	LastMessage *string
}
