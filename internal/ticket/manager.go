// Package ticket owns the lifecycle of parking sessions: creation with an
// activation dispatch, a periodic expiration sweep with callbacks, and
// explicit cancellation. At most one ticket per plate is active at any
// instant.
package ticket

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/parkhaus/parking-cli/internal/clock"
	"github.com/parkhaus/parking-cli/internal/model"
	"github.com/parkhaus/parking-cli/internal/store"
	"github.com/parkhaus/parking-cli/pkg/sms"
)

const (
	defaultMaxDurationHours = 24
	defaultSweepInterval    = 60 * time.Second
)

// ExpirationCallback is invoked with a snapshot of each ticket the sweep
// expires, exactly once per ticket.
type ExpirationCallback func(model.Ticket)

type subscription struct {
	id int
	fn ExpirationCallback
}

// Manager owns all ticket state. The ticket collection is a single shared
// resource guarded by one mutex covering every read-modify-write
// transition; the sweep and foreground calls are mutually exclusive.
// Consumers only ever receive value copies.
type Manager struct {
	mu            sync.Mutex
	tickets       map[string]*model.Ticket
	activeByPlate map[string]string // plate → ticket id
	order         []string          // ticket ids in creation order

	subs   []subscription
	nextID int

	store         store.Store
	transport     sms.Transport
	clock         clock.Clock
	maxDuration   int
	sweepInterval time.Duration
}

// Option configures the Manager.
type Option func(*Manager)

// WithMaxDurationHours caps the session duration.
func WithMaxDurationHours(h int) Option {
	return func(m *Manager) {
		if h > 0 {
			m.maxDuration = h
		}
	}
}

// WithSweepInterval sets the expiration sweep period.
func WithSweepInterval(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.sweepInterval = d
		}
	}
}

// WithClock injects a time source (tests).
func WithClock(c clock.Clock) Option {
	return func(m *Manager) {
		m.clock = c
	}
}

// NewManager creates a Manager dispatching activations through transport
// and persisting tickets to st. st may be nil for purely in-memory
// operation.
func NewManager(st store.Store, transport sms.Transport, opts ...Option) *Manager {
	m := &Manager{
		tickets:       make(map[string]*model.Ticket),
		activeByPlate: make(map[string]string),
		store:         st,
		transport:     transport,
		clock:         clock.NewSystem(),
		maxDuration:   defaultMaxDurationHours,
		sweepInterval: defaultSweepInterval,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Restore loads previously active tickets from the store. A load failure
// degrades to empty in-memory state.
func (m *Manager) Restore(ctx context.Context) {
	if m.store == nil {
		return
	}
	active, err := m.store.ActiveTickets(ctx)
	if err != nil {
		zap.L().Warn("ticket: restore failed, starting empty", zap.Error(err))
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range active {
		t := active[i]
		m.tickets[t.ID] = &t
		m.activeByPlate[t.Plate] = t.ID
		m.order = append(m.order, t.ID)
	}
	if len(active) > 0 {
		zap.L().Info("ticket: restored active sessions", zap.Int("count", len(active)))
	}
}

// StartSession creates a new active ticket for plate in zone. The
// activation message is dispatched first; if dispatch fails no ticket is
// created. Cost is computed once here and never recomputed.
func (m *Manager) StartSession(ctx context.Context, plate string, zone model.Zone, durationHours int) (model.Ticket, error) {
	plate = normalizePlate(plate)
	if plate == "" {
		return model.Ticket{}, eris.New("ticket: empty plate")
	}
	if durationHours <= 0 || durationHours > m.maxDuration {
		return model.Ticket{}, ErrInvalidDuration
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.activeByPlate[plate]; exists {
		return model.Ticket{}, ErrAlreadyActive
	}

	message := fmt.Sprintf("PARK %s %s %dH", zone.Code, plate, durationHours)
	if err := m.transport.Send(ctx, zone.ActivationAddress, message); err != nil {
		zap.L().Warn("ticket: activation dispatch failed",
			zap.String("plate", plate),
			zap.String("zone", zone.Code),
			zap.Error(err),
		)
		return model.Ticket{}, ErrActivationFailed
	}

	now := m.clock.Now()
	t := &model.Ticket{
		ID:                uuid.New().String(),
		Plate:             plate,
		ZoneCode:          zone.Code,
		ZoneName:          zone.Name,
		StartTime:         now,
		EndTime:           now.Add(time.Duration(durationHours) * time.Hour),
		DurationHours:     durationHours,
		TotalCost:         zone.HourlyRate * float64(durationHours),
		ActivationMessage: message,
		Status:            model.TicketStatusActive,
		CreatedAt:         now,
	}

	m.tickets[t.ID] = t
	m.activeByPlate[plate] = t.ID
	m.order = append(m.order, t.ID)
	m.persistSave(ctx, *t)

	zap.L().Info("ticket: session started",
		zap.String("id", t.ID),
		zap.String("plate", plate),
		zap.String("zone", zone.Code),
		zap.Int("hours", durationHours),
		zap.Float64("cost", t.TotalCost),
	)
	return *t, nil
}

// Cancel transitions an active ticket to cancelled.
func (m *Manager) Cancel(ctx context.Context, ticketID string) (model.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tickets[ticketID]
	if !ok {
		if m.store != nil {
			if st, err := m.store.GetTicket(ctx, ticketID); err == nil {
				if st.Status != model.TicketStatusActive {
					return model.Ticket{}, ErrNotActive
				}
			}
		}
		return model.Ticket{}, ErrNotFound
	}
	if t.Status != model.TicketStatusActive {
		return model.Ticket{}, ErrNotActive
	}

	t.Status = model.TicketStatusCancelled
	delete(m.activeByPlate, t.Plate)
	m.persistUpdate(ctx, *t)

	zap.L().Info("ticket: session cancelled",
		zap.String("id", t.ID),
		zap.String("plate", t.Plate),
	)
	return *t, nil
}

// ActiveTicketFor returns a copy of the plate's active ticket, or nil.
func (m *Manager) ActiveTicketFor(plate string) *model.Ticket {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.activeByPlate[normalizePlate(plate)]
	if !ok {
		return nil
	}
	cp := *m.tickets[id]
	return &cp
}

// HistoryFor returns every ticket for a plate, newest first. The store is
// authoritative across restarts; on store failure the in-memory view is
// returned for this call.
func (m *Manager) HistoryFor(ctx context.Context, plate string) []model.Ticket {
	plate = normalizePlate(plate)

	if m.store != nil {
		out, err := m.store.TicketsByPlate(ctx, plate)
		if err == nil {
			return out
		}
		zap.L().Warn("ticket: history load failed, using in-memory view",
			zap.String("plate", plate),
			zap.Error(err),
		)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Ticket
	for _, id := range m.order {
		if m.tickets[id].Plate == plate {
			out = append(out, *m.tickets[id])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// ExpiringWithin returns active tickets whose remaining time is ≤ window
// and > 0, in creation order.
func (m *Manager) ExpiringWithin(window time.Duration) []model.Ticket {
	now := m.clock.Now()

	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Ticket
	for _, id := range m.order {
		t := m.tickets[id]
		if t.Status != model.TicketStatusActive {
			continue
		}
		remaining := t.Remaining(now)
		if remaining > 0 && remaining <= window {
			out = append(out, *t)
		}
	}
	return out
}

// Subscribe registers an expiration callback and returns its handle.
func (m *Manager) Subscribe(fn ExpirationCallback) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.subs = append(m.subs, subscription{id: m.nextID, fn: fn})
	return m.nextID
}

// Unsubscribe removes a previously registered callback.
func (m *Manager) Unsubscribe(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.subs {
		if m.subs[i].id == id {
			m.subs = append(m.subs[:i], m.subs[i+1:]...)
			return
		}
	}
}

// Sweep expires every active ticket whose end time has passed and fires
// the registered callbacks once per expired ticket, synchronously, in
// creation order. Safe to call directly; Run calls it on a timer.
func (m *Manager) Sweep(ctx context.Context) int {
	now := m.clock.Now()

	m.mu.Lock()
	var expired []model.Ticket
	for _, id := range m.order {
		t := m.tickets[id]
		if t.Status != model.TicketStatusActive || now.Before(t.EndTime) {
			continue
		}
		t.Status = model.TicketStatusExpired
		delete(m.activeByPlate, t.Plate)
		m.persistUpdate(ctx, *t)
		expired = append(expired, *t)
	}
	subs := make([]subscription, len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()

	// Callbacks run outside the lock so they may call back into the
	// manager, still synchronously with respect to the sweep.
	for _, t := range expired {
		zap.L().Info("ticket: session expired",
			zap.String("id", t.ID),
			zap.String("plate", t.Plate),
			zap.Time("end_time", t.EndTime),
		)
		for _, s := range subs {
			s.fn(t)
		}
	}
	return len(expired)
}

// Run drives the expiration sweep on a fixed interval until ctx is
// cancelled.
func (m *Manager) Run(ctx context.Context) {
	log := zap.L().With(zap.String("component", "ticket.sweeper"))
	log.Info("starting expiration sweeper", zap.Duration("interval", m.sweepInterval))

	ticker := time.NewTicker(m.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("expiration sweeper stopped")
			return
		case <-ticker.C:
			if n := m.Sweep(ctx); n > 0 {
				log.Debug("sweep expired sessions", zap.Int("count", n))
			}
		}
	}
}

// persistSave writes a new ticket through to the store. Failures degrade
// to in-memory operation.
func (m *Manager) persistSave(ctx context.Context, t model.Ticket) {
	if m.store == nil {
		return
	}
	if err := m.store.SaveTicket(ctx, t); err != nil {
		zap.L().Warn("ticket: persist failed, continuing in-memory",
			zap.String("id", t.ID),
			zap.Error(err),
		)
	}
}

func (m *Manager) persistUpdate(ctx context.Context, t model.Ticket) {
	if m.store == nil {
		return
	}
	if err := m.store.UpdateTicket(ctx, t); err != nil {
		zap.L().Warn("ticket: persist update failed, continuing in-memory",
			zap.String("id", t.ID),
			zap.Error(err),
		)
	}
}

func normalizePlate(plate string) string {
	return strings.ToUpper(strings.Join(strings.Fields(plate), ""))
}
