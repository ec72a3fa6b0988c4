package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/parkhaus/parking-cli/internal/db"
	"github.com/parkhaus/parking-cli/internal/model"
)

// PostgresStore implements Store using a pgx connection pool.
type PostgresStore struct {
	pool db.Pool
}

// NewPostgres connects to the given database URL and returns a PostgresStore.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool (tests use pgxmock here).
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS tickets (
	id                 TEXT PRIMARY KEY,
	plate              TEXT NOT NULL,
	zone_code          TEXT NOT NULL,
	zone_name          TEXT NOT NULL,
	start_time         TIMESTAMPTZ NOT NULL,
	end_time           TIMESTAMPTZ NOT NULL,
	duration_hours     INT NOT NULL,
	total_cost         DOUBLE PRECISION NOT NULL,
	activation_message TEXT NOT NULL,
	status             TEXT NOT NULL,
	created_at         TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tickets_plate ON tickets(plate);
CREATE INDEX IF NOT EXISTS idx_tickets_status ON tickets(status);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) SaveTicket(ctx context.Context, t model.Ticket) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO tickets (id, plate, zone_code, zone_name, start_time, end_time, duration_hours, total_cost, activation_message, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		t.ID, t.Plate, t.ZoneCode, t.ZoneName, t.StartTime.UTC(), t.EndTime.UTC(),
		t.DurationHours, t.TotalCost, t.ActivationMessage, string(t.Status), t.CreatedAt.UTC(),
	)
	return eris.Wrapf(err, "postgres: insert ticket %s", t.ID)
}

func (s *PostgresStore) UpdateTicket(ctx context.Context, t model.Ticket) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE tickets SET status = $1, end_time = $2 WHERE id = $3`,
		string(t.Status), t.EndTime.UTC(), t.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update ticket %s", t.ID)
	}
	if tag.RowsAffected() == 0 {
		return ErrTicketNotFound
	}
	return nil
}

func (s *PostgresStore) GetTicket(ctx context.Context, id string) (*model.Ticket, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, plate, zone_code, zone_name, start_time, end_time, duration_hours, total_cost, activation_message, status, created_at
		 FROM tickets WHERE id = $1`, id)
	t, err := scanTicket(row)
	if err != nil {
		if eris.Is(err, pgx.ErrNoRows) {
			return nil, ErrTicketNotFound
		}
		return nil, eris.Wrapf(err, "postgres: get ticket %s", id)
	}
	return t, nil
}

func (s *PostgresStore) ActiveTickets(ctx context.Context) ([]model.Ticket, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, plate, zone_code, zone_name, start_time, end_time, duration_hours, total_cost, activation_message, status, created_at
		 FROM tickets WHERE status = $1 ORDER BY created_at ASC`, string(model.TicketStatusActive))
	if err != nil {
		return nil, eris.Wrap(err, "postgres: active tickets")
	}
	defer rows.Close()
	return collectPgxTickets(rows)
}

func (s *PostgresStore) TicketsByPlate(ctx context.Context, plate string) ([]model.Ticket, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, plate, zone_code, zone_name, start_time, end_time, duration_hours, total_cost, activation_message, status, created_at
		 FROM tickets WHERE plate = $1 ORDER BY created_at DESC`, plate)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: tickets for plate %s", plate)
	}
	defer rows.Close()
	return collectPgxTickets(rows)
}

func collectPgxTickets(rows pgx.Rows) ([]model.Ticket, error) {
	var out []model.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan ticket")
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate tickets")
	}
	return out, nil
}
