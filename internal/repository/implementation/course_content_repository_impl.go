package implementation

import (
	"context"
	"errors"

	"jurisperform-be/internal/entity"
	"jurisperform-be/internal/mapper"
	"jurisperform-be/internal/model"
	"jurisperform-be/internal/repository/contract"
	"jurisperform-be/internal/repository/specification"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CourseContentRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CourseContentMapper
}

func NewCourseContentRepository(db *gorm.DB) contract.CourseContentRepository {
	return &CourseContentRepositoryImpl{
		db:     db,
		mapper: mapper.NewCourseContentMapper(),
	}
}

func (r *CourseContentRepositoryImpl) Upsert(ctx context.Context, content *entity.CourseContent) error {
	m := r.mapper.CourseContentToModel(content)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "course_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"content", "updated_at"}),
	}).Create(m).Error
	if err != nil {
		return err
	}
	*content = *r.mapper.CourseContentToEntity(m)
	return nil
}

func (r *CourseContentRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.CourseContent, error) {
	var m model.CourseContent
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.CourseContentToEntity(&m), nil
}

type ContentSummaryRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CourseContentMapper
}

func NewContentSummaryRepository(db *gorm.DB) contract.ContentSummaryRepository {
	return &ContentSummaryRepositoryImpl{
		db:     db,
		mapper: mapper.NewCourseContentMapper(),
	}
}

func (r *ContentSummaryRepositoryImpl) Create(ctx context.Context, summary *entity.ContentSummary) error {
	m := r.mapper.SummaryToModel(summary)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*summary = *r.mapper.SummaryToEntity(m)
	return nil
}

func (r *ContentSummaryRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ContentSummary, error) {
	var models []*model.ContentSummary
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.ContentSummary, len(models))
	for i, m := range models {
		entities[i] = r.mapper.SummaryToEntity(m)
	}
	return entities, nil
}
