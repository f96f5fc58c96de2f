package contract

import (
	"context"

	"jurisperform-be/internal/entity"
	"jurisperform-be/internal/repository/specification"
)

type CourseContentRepository interface {
	// Upsert inserts or replaces the content of a course, keyed by course id.
	Upsert(ctx context.Context, content *entity.CourseContent) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.CourseContent, error)
}

type ContentSummaryRepository interface {
	Create(ctx context.Context, summary *entity.ContentSummary) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ContentSummary, error)
}
