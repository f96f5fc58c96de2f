package contract

import (
	"context"

	"jurisperform-be/internal/entity"
	"jurisperform-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ConversationRepository interface {
	Create(ctx context.Context, conversation *entity.Conversation) error
	Update(ctx context.Context, conversation *entity.Conversation) error
	Delete(ctx context.Context, id uuid.UUID) error
	// Touch bumps updated_at so the conversation moves to the top of the list.
	Touch(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Conversation, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Conversation, error)
	FindPreviews(ctx context.Context, userId uuid.UUID, limit, offset int) ([]*entity.ConversationPreview, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
