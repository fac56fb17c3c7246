package directory

import (
	"context"
	"time"

	"ai-voicedesk-be/internal/entity"
	"ai-voicedesk-be/internal/repository/contract"
	"ai-voicedesk-be/internal/repository/specification"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

// CachedAssistantDirectory resolves provider assistant ids to local
// assistants with a short in-memory cache in front of the repository.
// Webhooks for the same assistant arrive in bursts; one lookup per burst
// is enough. Misses are not cached so a freshly created assistant
// resolves on its first event.
type CachedAssistantDirectory struct {
	repo  contract.AssistantRepository
	cache *gocache.Cache
}

func NewCachedAssistantDirectory(repo contract.AssistantRepository) *CachedAssistantDirectory {
	return &CachedAssistantDirectory{
		repo:  repo,
		cache: gocache.New(5*time.Minute, 10*time.Minute),
	}
}

func (d *CachedAssistantDirectory) ResolveByVapiID(ctx context.Context, vapiAssistantID string) (*entity.Assistant, error) {
	if vapiAssistantID == "" {
		return nil, nil
	}
	if cached, ok := d.cache.Get(vapiAssistantID); ok {
		return cached.(*entity.Assistant), nil
	}

	assistant, err := d.repo.FindOne(ctx, specification.ByVapiAssistantId{VapiAssistantId: vapiAssistantID})
	if err != nil {
		return nil, err
	}
	if assistant != nil {
		d.cache.Set(vapiAssistantID, assistant, gocache.DefaultExpiration)
	}
	return assistant, nil
}

// Invalidate drops a cached mapping. Called when an assistant is updated
// or deleted.
func (d *CachedAssistantDirectory) Invalidate(vapiAssistantID string) {
	d.cache.Delete(vapiAssistantID)
}

// ListAssistants scopes a sync run. Nil ids mean "all".
func (d *CachedAssistantDirectory) ListAssistants(ctx context.Context, assistantID, userID *uuid.UUID) ([]*entity.Assistant, error) {
	var specs []specification.Specification
	if assistantID != nil {
		specs = append(specs, specification.ByID{ID: *assistantID})
	}
	if userID != nil {
		specs = append(specs, specification.UserOwnedBy{UserID: *userID})
	}
	return d.repo.FindAll(ctx, specs...)
}
