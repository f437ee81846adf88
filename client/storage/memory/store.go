package memory

import (
	"errors"
	"sort"
	"sync"

	"github.com/adwski/sora-connect/client/config"
)

var (
	ErrProfileNotFound = errors.New("profile is not found")
	ErrProfileNoName   = errors.New("profile has no name")
)

type MemStore struct {
	mx *sync.RWMutex
	db map[string]config.Profile
}

func NewMemStore() *MemStore {
	return &MemStore{
		mx: &sync.RWMutex{},
		db: make(map[string]config.Profile),
	}
}

// NewMemStoreFromFile fills the store with every profile of a config file.
func NewMemStoreFromFile(f *config.File) *MemStore {
	ms := NewMemStore()
	for name, p := range f.Profiles {
		cp := *p
		cp.Name = name
		ms.db[name] = cp
	}
	return ms
}

func (ms *MemStore) PutProfile(p *config.Profile) error {
	if p.Name == "" {
		return ErrProfileNoName
	}
	ms.mx.Lock()
	defer ms.mx.Unlock()

	ms.db[p.Name] = *p
	return nil
}

// GetProfile returns a copy, so callers may apply overrides freely.
func (ms *MemStore) GetProfile(name string) (*config.Profile, error) {
	ms.mx.RLock()
	defer ms.mx.RUnlock()

	p, ok := ms.db[name]
	if !ok {
		return nil, ErrProfileNotFound
	}
	return &p, nil
}

func (ms *MemStore) ListProfiles() []string {
	ms.mx.RLock()
	defer ms.mx.RUnlock()

	names := make([]string, 0, len(ms.db))
	for name := range ms.db {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
