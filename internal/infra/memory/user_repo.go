package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/kdacanay/wrc-leads/internal/entity"
)

// UserRepo holds profiles and sign-in identities in process. It implements
// both entity.UserRepositoryInterface and entity.IdentityProvider.
type UserRepo struct {
	mu         sync.RWMutex
	users      map[string]entity.User
	identities map[string]struct{}
}

func NewUserRepo(users ...entity.User) *UserRepo {
	r := &UserRepo{
		users:      make(map[string]entity.User),
		identities: make(map[string]struct{}),
	}
	for _, u := range users {
		r.Put(u)
	}
	return r
}

// Put stores a profile and its identity.
func (r *UserRepo) Put(u entity.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = u
	r.identities[u.ID] = struct{}{}
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, entity.ErrUserNotFound
	}
	return &u, nil
}

func (r *UserRepo) ListAgents(ctx context.Context) ([]*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.User, 0, len(r.users))
	for _, u := range r.users {
		if u.Role == entity.RoleAgent {
			u := u
			out = append(out, &u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DisplayName() < out[j].DisplayName() })
	return out, nil
}

func (r *UserRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return entity.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *UserRepo) DeleteIdentity(ctx context.Context, uid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.identities[uid]; !ok {
		return entity.ErrUserNotFound
	}
	delete(r.identities, uid)
	return nil
}

// HasIdentity reports whether uid can still sign in.
func (r *UserRepo) HasIdentity(uid string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.identities[uid]
	return ok
}
