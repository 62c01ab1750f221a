package perms

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Store is the persistence surface; *Repository implements it.
type Store interface {
	Add(ctx context.Context, guildID, roleID, addedBy int64) error
	Remove(ctx context.Context, guildID, roleID int64) error
	List(ctx context.Context, guildID int64) ([]int64, error)
}

// Service answers host-eligibility checks. The table is tiny and read on
// every drawing creation, so reads come from a per-guild cache filled on
// first miss and refreshed on every write.
type Service struct {
	store Store

	mu    sync.RWMutex
	cache map[int64]map[int64]struct{} // guild -> role set
}

// NewService creates the host-roles service.
func NewService(store Store) *Service {
	return &Service{store: store, cache: make(map[int64]map[int64]struct{})}
}

// AddHostRole marks a role as drawing-host eligible.
func (s *Service) AddHostRole(ctx context.Context, guildID, roleID, addedBy int64) error {
	if err := s.store.Add(ctx, guildID, roleID, addedBy); err != nil {
		return err
	}
	s.invalidate(guildID)
	log.WithFields(log.Fields{"guild": guildID, "role": roleID}).Info("host role added")
	return nil
}

// RemoveHostRole revokes a role's host eligibility.
func (s *Service) RemoveHostRole(ctx context.Context, guildID, roleID int64) error {
	if err := s.store.Remove(ctx, guildID, roleID); err != nil {
		return err
	}
	s.invalidate(guildID)
	log.WithFields(log.Fields{"guild": guildID, "role": roleID}).Info("host role removed")
	return nil
}

// HostRoles returns the guild's host-eligible role IDs.
func (s *Service) HostRoles(ctx context.Context, guildID int64) ([]int64, error) {
	set, err := s.roleSet(ctx, guildID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	return ids, nil
}

// CanHost reports whether a member holding the given roles may host a
// drawing. With no roles configured for the guild, nobody may host until an
// administrator adds one.
func (s *Service) CanHost(ctx context.Context, guildID int64, memberRoleIDs []int64) (bool, error) {
	set, err := s.roleSet(ctx, guildID)
	if err != nil {
		return false, err
	}
	for _, id := range memberRoleIDs {
		if _, ok := set[id]; ok {
			return true, nil
		}
	}
	return false, nil
}

func (s *Service) roleSet(ctx context.Context, guildID int64) (map[int64]struct{}, error) {
	s.mu.RLock()
	set, ok := s.cache[guildID]
	s.mu.RUnlock()
	if ok {
		return set, nil
	}

	ids, err := s.store.List(ctx, guildID)
	if err != nil {
		return nil, err
	}
	set = make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}

	s.mu.Lock()
	s.cache[guildID] = set
	s.mu.Unlock()
	return set, nil
}

func (s *Service) invalidate(guildID int64) {
	s.mu.Lock()
	delete(s.cache, guildID)
	s.mu.Unlock()
}
