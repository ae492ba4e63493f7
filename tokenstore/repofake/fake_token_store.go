package repofake

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-ticket-client/tokenstore"
)

var _ tokenstore.Repo = (*FakeTokenStore)(nil)

// FakeTokenStore keeps slots in memory. It also backs the "memory" store
// backend, where the session lasts for the life of the process.
type FakeTokenStore struct {
	values map[tokenstore.Slot]string
	lock   sync.RWMutex
}

func NewFakeTokenStore() *FakeTokenStore {
	return &FakeTokenStore{
		values: make(map[tokenstore.Slot]string),
	}
}

func (s *FakeTokenStore) Get(_ context.Context, slot tokenstore.Slot) (string, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.values[slot], nil
}

func (s *FakeTokenStore) Set(_ context.Context, slot tokenstore.Slot, value string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.values[slot] = value
	return nil
}

func (s *FakeTokenStore) Clear(_ context.Context, slots ...tokenstore.Slot) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	for _, slot := range tokenstore.Targets(slots) {
		delete(s.values, slot)
	}
	return nil
}

// Len reports how many slots currently hold a value.
func (s *FakeTokenStore) Len() int {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return len(s.values)
}
