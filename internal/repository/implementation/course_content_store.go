package implementation

import (
	"context"

	"jurisperform-be/internal/mapper"
	"jurisperform-be/internal/repository/contract"
	"jurisperform-be/internal/repository/specification"
	"jurisperform-be/pkg/course"

	"gorm.io/gorm"
)

// CourseContentStore serves the content loader from the course_contents and
// content_summaries tables.
type CourseContentStore struct {
	contents  contract.CourseContentRepository
	summaries contract.ContentSummaryRepository
	mapper    *mapper.CourseContentMapper
}

func NewCourseContentStore(db *gorm.DB) course.ContentStore {
	return newCourseContentStore(NewCourseContentRepository(db), NewContentSummaryRepository(db))
}

func newCourseContentStore(contents contract.CourseContentRepository, summaries contract.ContentSummaryRepository) *CourseContentStore {
	return &CourseContentStore{
		contents:  contents,
		summaries: summaries,
		mapper:    mapper.NewCourseContentMapper(),
	}
}

func (s *CourseContentStore) FindFullContent(ctx context.Context, courseId string) (string, bool, error) {
	content, err := s.contents.FindOne(ctx, specification.ByCourseID{CourseID: courseId})
	if err != nil {
		return "", false, err
	}
	if content == nil {
		return "", false, nil
	}
	return content.Content, true, nil
}

func (s *CourseContentStore) FindSummaries(ctx context.Context, query course.SummaryQuery) ([]course.Summary, error) {
	return s.findSummaries(ctx,
		specification.ByLevel{Level: string(query.Level)},
		specification.SummaryMatch{CategoryLike: query.CategoryLike, FileNameLike: query.FileNameLike},
	)
}

func (s *CourseContentStore) FindSummariesByLevel(ctx context.Context, level course.Level) ([]course.Summary, error) {
	return s.findSummaries(ctx, specification.ByLevel{Level: string(level)})
}

func (s *CourseContentStore) findSummaries(ctx context.Context, specs ...specification.Specification) ([]course.Summary, error) {
	specs = append(specs, specification.OrderBy{Field: "file_name"})
	rows, err := s.summaries.FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}
	return s.mapper.SummariesToCourse(rows), nil
}
