package unitofwork

import (
	"context"

	"jurisperform-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ConversationRepository() contract.ConversationRepository
	MessageRepository() contract.MessageRepository
	CourseContentRepository() contract.CourseContentRepository
	ContentSummaryRepository() contract.ContentSummaryRepository
}
