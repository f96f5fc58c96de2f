package specification

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserOwnedBy scopes a query to rows owned by a user.
type UserOwnedBy struct {
	UserID uuid.UUID
}

func (s UserOwnedBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}

type ByConversationID struct {
	ConversationID uuid.UUID
}

func (s ByConversationID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("conversation_id = ?", s.ConversationID)
}

type ByCourseID struct {
	CourseID string
}

func (s ByCourseID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("course_id = ?", s.CourseID)
}

type ByLevel struct {
	Level string
}

func (s ByLevel) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("level = ?", s.Level)
}

// SummaryMatch keeps summaries whose category contains CategoryLike or whose
// file name contains FileNameLike, ignoring case.
type SummaryMatch struct {
	CategoryLike string
	FileNameLike string
}

func (s SummaryMatch) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("(LOWER(category) LIKE ? OR LOWER(file_name) LIKE ?)",
		containsPattern(s.CategoryLike),
		containsPattern(s.FileNameLike),
	)
}

func containsPattern(s string) string {
	return "%" + strings.ToLower(s) + "%"
}
