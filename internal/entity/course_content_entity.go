package entity

import (
	"time"

	"github.com/google/uuid"
)

// CourseContent is the full extracted text of one course.
type CourseContent struct {
	Id        uuid.UUID
	CourseId  string
	Content   string
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// ContentSummary is the summary of one ingested document.
type ContentSummary struct {
	Id        uuid.UUID
	FileName  string
	Summary   string
	Category  string
	Level     string
	CreatedAt time.Time
}
