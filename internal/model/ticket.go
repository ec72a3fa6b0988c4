package model

import "time"

// TicketStatus is the lifecycle state of a parking ticket.
type TicketStatus string

const (
	TicketStatusActive    TicketStatus = "active"
	TicketStatusExpired   TicketStatus = "expired"
	TicketStatusCancelled TicketStatus = "cancelled"
)

// Ticket is a time-bounded parking session for one vehicle in one zone.
// ZoneCode and ZoneName are denormalized at creation time and immune to
// later catalog edits; TotalCost is computed once at creation and never
// recomputed. Tickets are owned exclusively by the lifecycle manager and
// handed out by value as read-only snapshots.
type Ticket struct {
	ID                string       `json:"id"`
	Plate             string       `json:"plate"`
	ZoneCode          string       `json:"zone_code"`
	ZoneName          string       `json:"zone_name"`
	StartTime         time.Time    `json:"start_time"`
	EndTime           time.Time    `json:"end_time"`
	DurationHours     int          `json:"duration_hours"`
	TotalCost         float64      `json:"total_cost"`
	ActivationMessage string       `json:"activation_message"`
	Status            TicketStatus `json:"status"`
	CreatedAt         time.Time    `json:"created_at"`
}

// Remaining returns the time left until EndTime, negative once expired.
func (t Ticket) Remaining(now time.Time) time.Duration {
	return t.EndTime.Sub(now)
}
