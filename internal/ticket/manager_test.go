package ticket

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parkhaus/parking-cli/internal/clock"
	"github.com/parkhaus/parking-cli/internal/model"
	"github.com/parkhaus/parking-cli/internal/store"
)

// recordingTransport captures dispatched activation messages.
type recordingTransport struct {
	sent []string
	err  error
}

func (r *recordingTransport) Send(_ context.Context, destination, message string) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, destination+"|"+message)
	return nil
}

var testZone = model.Zone{
	ID:                "cc",
	Name:              "City Center",
	Code:              "CC",
	HourlyRate:        2.50,
	ActivationAddress: "1980",
}

func newTestManager(t *testing.T) (*Manager, *recordingTransport, *clock.Fixed) {
	t.Helper()
	fixed := clock.NewFixed(time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC))
	transport := &recordingTransport{}
	m := NewManager(store.NewMemory(), transport, WithClock(fixed))
	return m, transport, fixed
}

func TestStartSession(t *testing.T) {
	m, transport, fixed := newTestManager(t)

	ticket, err := m.StartSession(context.Background(), "ab123cd", testZone, 2)
	require.NoError(t, err)

	assert.Equal(t, "AB123CD", ticket.Plate)
	assert.Equal(t, "CC", ticket.ZoneCode)
	assert.Equal(t, "City Center", ticket.ZoneName)
	assert.Equal(t, model.TicketStatusActive, ticket.Status)
	assert.Equal(t, 2, ticket.DurationHours)
	assert.Equal(t, 5.00, ticket.TotalCost) // 2.50/h × 2h
	assert.True(t, ticket.EndTime.Equal(fixed.Now().Add(2*time.Hour)))
	assert.Equal(t, "PARK CC AB123CD 2H", ticket.ActivationMessage)

	require.Len(t, transport.sent, 1)
	assert.Equal(t, "1980|PARK CC AB123CD 2H", transport.sent[0])
}

func TestStartSession_AlreadyActive(t *testing.T) {
	m, _, _ := newTestManager(t)

	_, err := m.StartSession(context.Background(), "AB123CD", testZone, 2)
	require.NoError(t, err)

	_, err = m.StartSession(context.Background(), "AB123CD", testZone, 1)
	assert.ErrorIs(t, err, ErrAlreadyActive)

	// Plate normalization: spacing and case do not evade the invariant.
	_, err = m.StartSession(context.Background(), "ab 123 cd", testZone, 1)
	assert.ErrorIs(t, err, ErrAlreadyActive)
}

func TestStartSession_InvalidDuration(t *testing.T) {
	m, transport, _ := newTestManager(t)

	_, err := m.StartSession(context.Background(), "AB123CD", testZone, 0)
	assert.ErrorIs(t, err, ErrInvalidDuration)

	_, err = m.StartSession(context.Background(), "AB123CD", testZone, 25)
	assert.ErrorIs(t, err, ErrInvalidDuration)

	// No dispatch happens for rejected requests.
	assert.Empty(t, transport.sent)
}

func TestStartSession_ActivationFailure(t *testing.T) {
	fixed := clock.NewFixed(time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC))
	transport := &recordingTransport{err: eris.New("gateway down")}
	m := NewManager(store.NewMemory(), transport, WithClock(fixed))

	_, err := m.StartSession(context.Background(), "AB123CD", testZone, 2)
	assert.ErrorIs(t, err, ErrActivationFailed)

	// No partial state: the plate can start a session once dispatch works.
	assert.Nil(t, m.ActiveTicketFor("AB123CD"))
	transport.err = nil
	_, err = m.StartSession(context.Background(), "AB123CD", testZone, 2)
	assert.NoError(t, err)
}

func TestStartSession_CostSnapshotImmuneToRateChanges(t *testing.T) {
	m, _, _ := newTestManager(t)

	zone := testZone
	ticket, err := m.StartSession(context.Background(), "AB123CD", zone, 2)
	require.NoError(t, err)
	require.Equal(t, 5.00, ticket.TotalCost)

	// A later rate change does not touch the created ticket.
	zone.HourlyRate = 9.99
	got := m.ActiveTicketFor("AB123CD")
	require.NotNil(t, got)
	assert.Equal(t, 5.00, got.TotalCost)
}

func TestCancel(t *testing.T) {
	m, _, _ := newTestManager(t)

	ticket, err := m.StartSession(context.Background(), "AB123CD", testZone, 2)
	require.NoError(t, err)

	cancelled, err := m.Cancel(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TicketStatusCancelled, cancelled.Status)
	assert.Nil(t, m.ActiveTicketFor("AB123CD"))

	// Cancelled is terminal.
	_, err = m.Cancel(context.Background(), ticket.ID)
	assert.ErrorIs(t, err, ErrNotActive)
}

func TestCancel_NotFound(t *testing.T) {
	m, _, _ := newTestManager(t)
	_, err := m.Cancel(context.Background(), "no-such-ticket")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSweep_ExpiresAndFiresCallbacks(t *testing.T) {
	m, _, fixed := newTestManager(t)

	ticket, err := m.StartSession(context.Background(), "AB123CD", testZone, 1)
	require.NoError(t, err)

	var fired []model.Ticket
	m.Subscribe(func(t model.Ticket) { fired = append(fired, t) })

	// T+59min: still active.
	fixed.Advance(59 * time.Minute)
	assert.Zero(t, m.Sweep(context.Background()))
	require.NotNil(t, m.ActiveTicketFor("AB123CD"))
	assert.Empty(t, fired)

	// T+61min: expired after one sweep.
	fixed.Advance(2 * time.Minute)
	assert.Equal(t, 1, m.Sweep(context.Background()))
	assert.Nil(t, m.ActiveTicketFor("AB123CD"))
	require.Len(t, fired, 1)
	assert.Equal(t, ticket.ID, fired[0].ID)
	assert.Equal(t, model.TicketStatusExpired, fired[0].Status)

	// Callbacks fire exactly once per ticket: a second sweep is a no-op.
	assert.Zero(t, m.Sweep(context.Background()))
	assert.Len(t, fired, 1)
}

func TestSweep_CallbackOrderAndUnsubscribe(t *testing.T) {
	m, _, fixed := newTestManager(t)

	_, err := m.StartSession(context.Background(), "AAA111", testZone, 1)
	require.NoError(t, err)
	fixed.Advance(time.Minute)
	_, err = m.StartSession(context.Background(), "BBB222", testZone, 1)
	require.NoError(t, err)

	var first, second []string
	id := m.Subscribe(func(t model.Ticket) { first = append(first, t.Plate) })
	m.Subscribe(func(t model.Ticket) { second = append(second, t.Plate) })

	fixed.Advance(2 * time.Hour)
	assert.Equal(t, 2, m.Sweep(context.Background()))

	// Sweep order is creation order.
	assert.Equal(t, []string{"AAA111", "BBB222"}, first)
	assert.Equal(t, []string{"AAA111", "BBB222"}, second)

	// Unsubscribed callbacks stop firing.
	m.Unsubscribe(id)
	_, err = m.StartSession(context.Background(), "CCC333", testZone, 1)
	require.NoError(t, err)
	fixed.Advance(2 * time.Hour)
	m.Sweep(context.Background())
	assert.Len(t, first, 2)
	assert.Len(t, second, 3)
}

func TestCancel_ExpiredTicket(t *testing.T) {
	m, _, fixed := newTestManager(t)

	ticket, err := m.StartSession(context.Background(), "AB123CD", testZone, 1)
	require.NoError(t, err)

	fixed.Advance(2 * time.Hour)
	m.Sweep(context.Background())

	_, err = m.Cancel(context.Background(), ticket.ID)
	assert.ErrorIs(t, err, ErrNotActive)
}

func TestHistoryFor(t *testing.T) {
	m, _, fixed := newTestManager(t)
	ctx := context.Background()

	t1, err := m.StartSession(ctx, "AB123CD", testZone, 1)
	require.NoError(t, err)
	fixed.Advance(2 * time.Hour)
	m.Sweep(ctx)

	fixed.Advance(time.Hour)
	t2, err := m.StartSession(ctx, "AB123CD", testZone, 3)
	require.NoError(t, err)

	_, err = m.StartSession(ctx, "ZZ999XX", testZone, 1)
	require.NoError(t, err)

	history := m.HistoryFor(ctx, "AB123CD")
	require.Len(t, history, 2)
	assert.Equal(t, t2.ID, history[0].ID)
	assert.Equal(t, t1.ID, history[1].ID)
	assert.Equal(t, model.TicketStatusExpired, history[1].Status)
}

func TestExpiringWithin(t *testing.T) {
	m, _, fixed := newTestManager(t)
	ctx := context.Background()

	_, err := m.StartSession(ctx, "AAA111", testZone, 1) // ends T+1h
	require.NoError(t, err)
	_, err = m.StartSession(ctx, "BBB222", testZone, 3) // ends T+3h
	require.NoError(t, err)

	fixed.Advance(45 * time.Minute)

	soon := m.ExpiringWithin(30 * time.Minute)
	require.Len(t, soon, 1)
	assert.Equal(t, "AAA111", soon[0].Plate)

	// An already-expired ticket (remaining ≤ 0) is not "expiring".
	fixed.Advance(20 * time.Minute)
	soon = m.ExpiringWithin(30 * time.Minute)
	assert.Empty(t, soon)
}

func TestRestore(t *testing.T) {
	st := store.NewMemory()
	fixed := clock.NewFixed(time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC))

	m1 := NewManager(st, &recordingTransport{}, WithClock(fixed))
	ticket, err := m1.StartSession(context.Background(), "AB123CD", testZone, 4)
	require.NoError(t, err)

	// A fresh manager over the same store sees the active session.
	m2 := NewManager(st, &recordingTransport{}, WithClock(fixed))
	m2.Restore(context.Background())

	got := m2.ActiveTicketFor("AB123CD")
	require.NotNil(t, got)
	assert.Equal(t, ticket.ID, got.ID)

	_, err = m2.StartSession(context.Background(), "AB123CD", testZone, 1)
	assert.ErrorIs(t, err, ErrAlreadyActive)
}

func TestManager_NilStoreDegradesGracefully(t *testing.T) {
	fixed := clock.NewFixed(time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC))
	m := NewManager(nil, &recordingTransport{}, WithClock(fixed))
	m.Restore(context.Background())

	ticket, err := m.StartSession(context.Background(), "AB123CD", testZone, 2)
	require.NoError(t, err)

	history := m.HistoryFor(context.Background(), "AB123CD")
	require.Len(t, history, 1)
	assert.Equal(t, ticket.ID, history[0].ID)
}

func TestRun_SweepsOnTimer(t *testing.T) {
	fixed := clock.NewFixed(time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC))
	m := NewManager(store.NewMemory(), &recordingTransport{},
		WithClock(fixed),
		WithSweepInterval(10*time.Millisecond),
	)

	_, err := m.StartSession(context.Background(), "AB123CD", testZone, 1)
	require.NoError(t, err)

	expired := make(chan model.Ticket, 1)
	m.Subscribe(func(t model.Ticket) { expired <- t })

	fixed.Advance(2 * time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	select {
	case t2 := <-expired:
		assert.Equal(t, "AB123CD", t2.Plate)
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not expire the ticket in time")
	}
}
