package service

import (
	"jurisperform-be/pkg/tutor"

	"github.com/google/uuid"
)

// SelectionStore caches the reconciled selection of each conversation.
type SelectionStore interface {
	Save(conversationId uuid.UUID, selection tutor.Selection)
	Get(conversationId uuid.UUID) (tutor.Selection, bool)
	Delete(conversationId uuid.UUID)
}
