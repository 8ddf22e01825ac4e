package users

import (
	"context"
	"fmt"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

type Registry struct {
	repo  Repository
	known *ttlcache.Cache[int64, User]
}

// NewRegistry returns a registry backed by repo. Users seen within ttl are
// served from memory; ttl <= 0 disables the cache.
func NewRegistry(repo Repository, ttl time.Duration) *Registry {
	r := &Registry{repo: repo}
	if ttl > 0 {
		r.known = ttlcache.New[int64, User](
			ttlcache.WithTTL[int64, User](ttl),
			ttlcache.WithDisableTouchOnHit[int64, User](),
		)
		go r.known.Start()
	}
	return r
}

// RegisterIfAbsent finds or creates the user with profile.ID. Profile
// fields are only used on creation.
func (r *Registry) RegisterIfAbsent(ctx context.Context, profile User) (User, error) {
	if r.known != nil {
		if item := r.known.Get(profile.ID); item != nil {
			return item.Value(), nil
		}
	}

	u, err := r.repo.RegisterIfAbsent(ctx, profile)
	if err != nil {
		return User{}, fmt.Errorf("%w: register %d: %w", ErrRegistryUnavailable, profile.ID, err)
	}

	if r.known != nil {
		r.known.Set(u.ID, u, ttlcache.DefaultTTL)
	}
	return u, nil
}

func (r *Registry) Close() {
	if r.known != nil {
		r.known.Stop()
	}
}
