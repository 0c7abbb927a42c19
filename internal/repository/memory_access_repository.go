package repository

import (
	"context"
	"sync"

	"github.com/Svg70/crypto-booking/internal/domain"
)

type roleKey struct {
	role domain.Role
	addr domain.Address
}

// MemoryAccessRepository is an in-memory AccessRepository for local
// development and tests.
type MemoryAccessRepository struct {
	mu       sync.RWMutex
	meta     *domain.EngineMeta
	roles    map[roleKey]struct{}
	creators map[domain.CreatorID]domain.Address
	users    map[domain.UserID]domain.Address
}

// NewMemoryAccessRepository creates an empty in-memory access store.
func NewMemoryAccessRepository() *MemoryAccessRepository {
	return &MemoryAccessRepository{
		roles:    make(map[roleKey]struct{}),
		creators: make(map[domain.CreatorID]domain.Address),
		users:    make(map[domain.UserID]domain.Address),
	}
}

func (r *MemoryAccessRepository) GetMeta(ctx context.Context) (*domain.EngineMeta, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.meta == nil {
		return nil, domain.ErrNotInitialized
	}
	meta := *r.meta
	return &meta, nil
}

func (r *MemoryAccessRepository) Initialize(ctx context.Context, meta *domain.EngineMeta) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.meta != nil {
		return domain.ErrAlreadyInitialized
	}
	stored := *meta
	r.meta = &stored
	r.roles[roleKey{domain.RoleAdmin, meta.Admin}] = struct{}{}
	return nil
}

func (r *MemoryAccessRepository) HasRole(ctx context.Context, role domain.Role, addr domain.Address) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.roles[roleKey{role, addr}]
	return ok, nil
}

func (r *MemoryAccessRepository) GrantRole(ctx context.Context, role domain.Role, addr domain.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.roles[roleKey{role, addr}] = struct{}{}
	return nil
}

func (r *MemoryAccessRepository) RevokeRole(ctx context.Context, role domain.Role, addr domain.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.roles, roleKey{role, addr})
	return nil
}

func (r *MemoryAccessRepository) CreatorAddress(ctx context.Context, id domain.CreatorID) (domain.Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.creators[id], nil
}

func (r *MemoryAccessRepository) PutCreator(ctx context.Context, id domain.CreatorID, addr domain.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.creators[id] = addr
	return nil
}

func (r *MemoryAccessRepository) RemoveCreator(ctx context.Context, id domain.CreatorID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.creators[id] = domain.ZeroAddress
	return nil
}

func (r *MemoryAccessRepository) UserAddress(ctx context.Context, id domain.UserID) (domain.Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.users[id], nil
}

func (r *MemoryAccessRepository) PutUser(ctx context.Context, id domain.UserID, addr domain.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.users[id] = addr
	return nil
}

// Ensure MemoryAccessRepository implements AccessRepository
var _ AccessRepository = (*MemoryAccessRepository)(nil)
