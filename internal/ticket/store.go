// Package ticket stores service-visit tickets keyed by protocol ID.
package ticket

import (
	"time"

	"github.com/suportenet-io/suportenet/pkg/protocol"
)

// Store is the persistence interface for tickets. The store owns every
// ticket for the life of the process.
type Store interface {
	// Save inserts a ticket, silently overwriting any existing ticket with
	// the same protocol ID.
	Save(t *protocol.Ticket) error
	// Get retrieves a ticket by protocol ID.
	Get(protocolo string) (*protocol.Ticket, error)
	// FindByContact returns the most recently created ticket whose preferred
	// contact equals contact.
	FindByContact(contact string) (*protocol.Ticket, error)
	// List returns tickets matching the filter, newest first.
	List(filter Filter) ([]*protocol.Ticket, error)
	// Count returns the number of tickets matching the filter.
	Count(filter Filter) (int, error)
}

// Filter constrains ticket list queries.
type Filter struct {
	Contact    string    // exact match on preferencia_contato
	WindowFrom time.Time // inclusive lower bound on the service window
	WindowTo   time.Time // exclusive upper bound on the service window
	Limit      int       // 0 = no limit
}
