package store

import (
	"context"
	"sort"
	"sync"

	"github.com/rotisserie/eris"

	"github.com/parkhaus/parking-cli/internal/model"
)

// MemoryStore is an in-memory Store for tests and the explicit "memory"
// driver.
type MemoryStore struct {
	mu      sync.RWMutex
	tickets map[string]model.Ticket
}

// NewMemory creates an empty MemoryStore.
func NewMemory() *MemoryStore {
	return &MemoryStore{tickets: make(map[string]model.Ticket)}
}

func (s *MemoryStore) SaveTicket(_ context.Context, t model.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tickets[t.ID]; exists {
		return eris.Errorf("memory: duplicate ticket id %s", t.ID)
	}
	s.tickets[t.ID] = t
	return nil
}

func (s *MemoryStore) UpdateTicket(_ context.Context, t model.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tickets[t.ID]; !exists {
		return ErrTicketNotFound
	}
	s.tickets[t.ID] = t
	return nil
}

func (s *MemoryStore) GetTicket(_ context.Context, id string) (*model.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tickets[id]
	if !ok {
		return nil, ErrTicketNotFound
	}
	return &t, nil
}

func (s *MemoryStore) ActiveTickets(_ context.Context) ([]model.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Ticket
	for _, t := range s.tickets {
		if t.Status == model.TicketStatusActive {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) TicketsByPlate(_ context.Context, plate string) ([]model.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Ticket
	for _, t := range s.tickets {
		if t.Plate == plate {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) Migrate(_ context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }
