package gamification

import (
	"context"
	"errors"

	"github.com/lernwerk/trainer/internal/domain"
)

// profileStore is the subset of the storage layer the accessor needs.
type profileStore interface {
	GetProfile(ctx context.Context) (*domain.UserProfile, error)
	SaveProfile(ctx context.Context, p *domain.UserProfile) error
}

// StoreAccessor adapts a storage backend to the ProfileAccessor interface.
// A missing profile is reported as (nil, nil) so the orchestrator can treat
// guest play as a zero-effect completion.
type StoreAccessor struct {
	store profileStore
}

// NewStoreAccessor wraps a storage backend.
func NewStoreAccessor(store profileStore) *StoreAccessor {
	return &StoreAccessor{store: store}
}

func (a *StoreAccessor) Profile(ctx context.Context) (*domain.UserProfile, error) {
	p, err := a.store.GetProfile(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

func (a *StoreAccessor) Save(ctx context.Context, p *domain.UserProfile) error {
	return a.store.SaveProfile(ctx, p)
}
