// Package store persists parking tickets across restarts. The lifecycle
// manager owns ticket state in memory and writes through to a Store; an
// empty database is empty state, never an error.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/parkhaus/parking-cli/internal/model"
)

// ErrTicketNotFound is returned by GetTicket for unknown ids.
var ErrTicketNotFound = eris.New("store: ticket not found")

// Store is the persistence interface for tickets.
type Store interface {
	// SaveTicket inserts a newly created ticket.
	SaveTicket(ctx context.Context, t model.Ticket) error

	// UpdateTicket rewrites an existing ticket (status transitions).
	UpdateTicket(ctx context.Context, t model.Ticket) error

	// GetTicket returns one ticket by id, or ErrTicketNotFound.
	GetTicket(ctx context.Context, id string) (*model.Ticket, error)

	// ActiveTickets returns all tickets currently in the active state.
	ActiveTickets(ctx context.Context) ([]model.Ticket, error)

	// TicketsByPlate returns every ticket for a plate, newest first.
	TicketsByPlate(ctx context.Context, plate string) ([]model.Ticket, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
