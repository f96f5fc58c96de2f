package service

import (
	"context"
	"testing"

	"jurisperform-be/internal/dto"
	"jurisperform-be/pkg/course"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCourseService() ICourseService {
	catalog := course.DefaultCatalog()
	return NewCourseService(catalog, course.NewResolver(catalog, course.DefaultScoringConfig()))
}

func TestCourseService_List(t *testing.T) {
	svc := newTestCourseService()
	ctx := context.Background()

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, len(course.DefaultCatalog().All()))

	l2, err := svc.List(ctx, "l2")
	require.NoError(t, err)
	require.NotEmpty(t, l2)
	for _, c := range l2 {
		assert.Equal(t, "L2", c.Level)
	}

	_, err = svc.List(ctx, "M1")
	assert.ErrorIs(t, err, ErrInvalidLevel)
}

func TestCourseService_Show(t *testing.T) {
	svc := newTestCourseService()

	c, err := svc.Show(context.Background(), "l2-droit-penal")
	require.NoError(t, err)
	assert.Equal(t, "Droit pénal et procédure pénale", c.Name)

	_, err = svc.Show(context.Background(), "unknown")
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestCourseService_Resolve(t *testing.T) {
	svc := newTestCourseService()

	res, err := svc.Resolve(context.Background(), &dto.ResolveCourseRequest{Query: "une question de droit des obligations", Level: "L2"})
	require.NoError(t, err)
	require.NotNil(t, res.Course)
	assert.Equal(t, "l2-droit-obligations", res.Course.Id)
	assert.Equal(t, "high", res.Confidence)

	_, err = svc.Resolve(context.Background(), &dto.ResolveCourseRequest{Query: "x", Level: "M2"})
	assert.ErrorIs(t, err, ErrInvalidLevel)
}
