package memory

import (
	"time"

	"jurisperform-be/pkg/tutor"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// SelectionRepository holds the last reconciled level/course per
// conversation so a turn can start without reading the conversation row.
type SelectionRepository struct {
	cache *cache.Cache
}

func NewSelectionRepository(ttl time.Duration) *SelectionRepository {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &SelectionRepository{
		cache: cache.New(ttl, 10*time.Minute),
	}
}

func (r *SelectionRepository) Save(conversationId uuid.UUID, selection tutor.Selection) {
	r.cache.Set(conversationId.String(), selection, cache.DefaultExpiration)
}

func (r *SelectionRepository) Get(conversationId uuid.UUID) (tutor.Selection, bool) {
	if x, found := r.cache.Get(conversationId.String()); found {
		return x.(tutor.Selection), true
	}
	return tutor.Selection{}, false
}

func (r *SelectionRepository) Delete(conversationId uuid.UUID) {
	r.cache.Delete(conversationId.String())
}
