package service

import (
	"context"

	"jurisperform-be/internal/dto"
	"jurisperform-be/pkg/course"
)

type ICourseService interface {
	List(ctx context.Context, level string) ([]dto.CourseResponse, error)
	Show(ctx context.Context, id string) (*dto.CourseResponse, error)
	Resolve(ctx context.Context, req *dto.ResolveCourseRequest) (*dto.ResolveCourseResponse, error)
}

type courseService struct {
	catalog  *course.Catalog
	resolver *course.Resolver
}

func NewCourseService(catalog *course.Catalog, resolver *course.Resolver) ICourseService {
	return &courseService{
		catalog:  catalog,
		resolver: resolver,
	}
}

func toCourseResponse(c course.Course) dto.CourseResponse {
	return dto.CourseResponse{Id: c.Id, Name: c.Name, Level: string(c.Level)}
}

func (s *courseService) List(ctx context.Context, level string) ([]dto.CourseResponse, error) {
	courses := s.catalog.All()
	if level != "" {
		lvl, err := course.ParseLevel(level)
		if err != nil {
			return nil, ErrInvalidLevel
		}
		courses = s.catalog.ByLevel(lvl)
	}

	res := make([]dto.CourseResponse, 0, len(courses))
	for _, c := range courses {
		res = append(res, toCourseResponse(c))
	}
	return res, nil
}

func (s *courseService) Show(ctx context.Context, id string) (*dto.CourseResponse, error) {
	c, ok := s.catalog.FindById(id)
	if !ok {
		return nil, ErrCourseNotFound
	}
	res := toCourseResponse(c)
	return &res, nil
}

func (s *courseService) Resolve(ctx context.Context, req *dto.ResolveCourseRequest) (*dto.ResolveCourseResponse, error) {
	var level *course.Level
	if req.Level != "" {
		lvl, err := course.ParseLevel(req.Level)
		if err != nil {
			return nil, ErrInvalidLevel
		}
		level = &lvl
	}

	result := s.resolver.Resolve(req.Query, level)
	res := &dto.ResolveCourseResponse{
		Confidence: string(result.Confidence),
		Score:      result.Score,
	}
	if result.Course != nil {
		c := toCourseResponse(*result.Course)
		res.Course = &c
	}
	return res, nil
}
