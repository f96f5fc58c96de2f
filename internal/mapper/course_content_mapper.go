package mapper

import (
	"time"

	"jurisperform-be/internal/entity"
	"jurisperform-be/internal/model"
	"jurisperform-be/pkg/course"
)

type CourseContentMapper struct{}

func NewCourseContentMapper() *CourseContentMapper {
	return &CourseContentMapper{}
}

func (m *CourseContentMapper) CourseContentToEntity(c *model.CourseContent) *entity.CourseContent {
	if c == nil {
		return nil
	}

	var updatedAt *time.Time
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		updatedAt = &t
	}

	return &entity.CourseContent{
		Id:        c.Id,
		CourseId:  c.CourseId,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

func (m *CourseContentMapper) CourseContentToModel(c *entity.CourseContent) *model.CourseContent {
	if c == nil {
		return nil
	}

	var updatedAt time.Time
	if c.UpdatedAt != nil {
		updatedAt = *c.UpdatedAt
	}

	return &model.CourseContent{
		Id:        c.Id,
		CourseId:  c.CourseId,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

func (m *CourseContentMapper) SummaryToEntity(s *model.ContentSummary) *entity.ContentSummary {
	if s == nil {
		return nil
	}
	return &entity.ContentSummary{
		Id:        s.Id,
		FileName:  s.FileName,
		Summary:   s.Summary,
		Category:  s.Category,
		Level:     s.Level,
		CreatedAt: s.CreatedAt,
	}
}

func (m *CourseContentMapper) SummaryToModel(s *entity.ContentSummary) *model.ContentSummary {
	if s == nil {
		return nil
	}
	return &model.ContentSummary{
		Id:        s.Id,
		FileName:  s.FileName,
		Summary:   s.Summary,
		Category:  s.Category,
		Level:     s.Level,
		CreatedAt: s.CreatedAt,
	}
}

// SummariesToCourse converts summaries into the loader's view of them.
func (m *CourseContentMapper) SummariesToCourse(rows []*entity.ContentSummary) []course.Summary {
	out := make([]course.Summary, 0, len(rows))
	for _, r := range rows {
		out = append(out, course.Summary{
			FileName: r.FileName,
			Summary:  r.Summary,
			Category: r.Category,
			Level:    course.Level(r.Level),
		})
	}
	return out
}
