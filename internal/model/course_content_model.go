package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CourseContent struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CourseId  string    `gorm:"type:varchar(100);not null;uniqueIndex"`
	Content   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (CourseContent) TableName() string {
	return "course_contents"
}

func (c *CourseContent) BeforeCreate(tx *gorm.DB) error {
	if c.Id == uuid.Nil {
		c.Id = uuid.New()
	}
	return nil
}

type ContentSummary struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	FileName  string    `gorm:"type:text;not null"`
	Summary   string    `gorm:"type:text;not null"`
	Category  string    `gorm:"type:text"`
	Level     string    `gorm:"type:varchar(10);not null;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (ContentSummary) TableName() string {
	return "content_summaries"
}

func (s *ContentSummary) BeforeCreate(tx *gorm.DB) error {
	if s.Id == uuid.Nil {
		s.Id = uuid.New()
	}
	return nil
}
