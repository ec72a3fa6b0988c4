package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/parkhaus/parking-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS tickets (
	id                 TEXT PRIMARY KEY,
	plate              TEXT NOT NULL,
	zone_code          TEXT NOT NULL,
	zone_name          TEXT NOT NULL,
	start_time         DATETIME NOT NULL,
	end_time           DATETIME NOT NULL,
	duration_hours     INTEGER NOT NULL,
	total_cost         REAL NOT NULL,
	activation_message TEXT NOT NULL,
	status             TEXT NOT NULL,
	created_at         DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tickets_plate ON tickets(plate);
CREATE INDEX IF NOT EXISTS idx_tickets_status ON tickets(status);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveTicket(ctx context.Context, t model.Ticket) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tickets (id, plate, zone_code, zone_name, start_time, end_time, duration_hours, total_cost, activation_message, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Plate, t.ZoneCode, t.ZoneName, t.StartTime.UTC(), t.EndTime.UTC(),
		t.DurationHours, t.TotalCost, t.ActivationMessage, string(t.Status), t.CreatedAt.UTC(),
	)
	return eris.Wrapf(err, "sqlite: insert ticket %s", t.ID)
}

func (s *SQLiteStore) UpdateTicket(ctx context.Context, t model.Ticket) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tickets SET status = ?, end_time = ? WHERE id = ?`,
		string(t.Status), t.EndTime.UTC(), t.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update ticket %s", t.ID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return ErrTicketNotFound
	}
	return nil
}

func (s *SQLiteStore) GetTicket(ctx context.Context, id string) (*model.Ticket, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, plate, zone_code, zone_name, start_time, end_time, duration_hours, total_cost, activation_message, status, created_at
		 FROM tickets WHERE id = ?`, id)
	t, err := scanTicket(row)
	if err != nil {
		if eris.Is(err, sql.ErrNoRows) {
			return nil, ErrTicketNotFound
		}
		return nil, eris.Wrapf(err, "sqlite: get ticket %s", id)
	}
	return t, nil
}

func (s *SQLiteStore) ActiveTickets(ctx context.Context) ([]model.Ticket, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, plate, zone_code, zone_name, start_time, end_time, duration_hours, total_cost, activation_message, status, created_at
		 FROM tickets WHERE status = ? ORDER BY created_at ASC`, string(model.TicketStatusActive))
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: active tickets")
	}
	defer rows.Close() //nolint:errcheck
	return collectTickets(rows)
}

func (s *SQLiteStore) TicketsByPlate(ctx context.Context, plate string) ([]model.Ticket, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, plate, zone_code, zone_name, start_time, end_time, duration_hours, total_cost, activation_message, status, created_at
		 FROM tickets WHERE plate = ? ORDER BY created_at DESC`, plate)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: tickets for plate %s", plate)
	}
	defer rows.Close() //nolint:errcheck
	return collectTickets(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTicket(row rowScanner) (*model.Ticket, error) {
	var t model.Ticket
	var status string
	var start, end, created time.Time
	if err := row.Scan(&t.ID, &t.Plate, &t.ZoneCode, &t.ZoneName, &start, &end,
		&t.DurationHours, &t.TotalCost, &t.ActivationMessage, &status, &created); err != nil {
		return nil, err
	}
	t.Status = model.TicketStatus(status)
	t.StartTime = start.UTC()
	t.EndTime = end.UTC()
	t.CreatedAt = created.UTC()
	return &t, nil
}

func collectTickets(rows *sql.Rows) ([]model.Ticket, error) {
	var out []model.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan ticket")
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate tickets")
	}
	return out, nil
}
