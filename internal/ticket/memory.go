package ticket

import (
	"fmt"
	"sync"
	"time"

	"github.com/suportenet-io/suportenet/pkg/protocol"
)

// MemoryStore keeps tickets in process memory. It is the default backend:
// tickets live exactly as long as the process, which is all the bot promises.
type MemoryStore struct {
	mu      sync.RWMutex
	tickets map[string]*protocol.Ticket
	order   []string // protocol IDs in insertion order
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tickets: make(map[string]*protocol.Ticket)}
}

func (s *MemoryStore) Save(t *protocol.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tickets[t.Protocolo]; !exists {
		s.order = append(s.order, t.Protocolo)
	}
	cp := *t
	s.tickets[t.Protocolo] = &cp
	return nil
}

func (s *MemoryStore) Get(protocolo string) (*protocol.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tickets[protocolo]
	if !ok {
		return nil, fmt.Errorf("ticket %q not found", protocolo)
	}
	cp := *t
	return &cp, nil
}

// FindByContact scans newest-first so a customer with several tickets gets
// the latest one.
func (s *MemoryStore) FindByContact(contact string) (*protocol.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.order) - 1; i >= 0; i-- {
		t := s.tickets[s.order[i]]
		if t.PreferenciaContato == contact {
			cp := *t
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("no ticket for contact %q", contact)
}

func (s *MemoryStore) List(filter Filter) ([]*protocol.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var tickets []*protocol.Ticket
	for i := len(s.order) - 1; i >= 0; i-- {
		t := s.tickets[s.order[i]]
		if !matches(t, filter) {
			continue
		}
		cp := *t
		tickets = append(tickets, &cp)
		if filter.Limit > 0 && len(tickets) == filter.Limit {
			break
		}
	}
	return tickets, nil
}

func (s *MemoryStore) Count(filter Filter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, t := range s.tickets {
		if matches(t, filter) {
			count++
		}
	}
	return count, nil
}

func matches(t *protocol.Ticket, filter Filter) bool {
	if filter.Contact != "" && t.PreferenciaContato != filter.Contact {
		return false
	}
	if !filter.WindowFrom.IsZero() || !filter.WindowTo.IsZero() {
		w, err := time.Parse(time.RFC3339, t.WhenISO)
		if err != nil {
			return false
		}
		if !filter.WindowFrom.IsZero() && w.Before(filter.WindowFrom) {
			return false
		}
		if !filter.WindowTo.IsZero() && !w.Before(filter.WindowTo) {
			return false
		}
	}
	return true
}
