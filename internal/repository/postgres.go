package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hookrelay-systems/hookrelay/internal/models"
)

// PostgresRepository implements EventRepository on PostgreSQL.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository connects to PostgreSQL and verifies the connection.
func NewPostgresRepository(ctx context.Context, connString string) (*PostgresRepository, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

// Close releases the connection pool.
func (r *PostgresRepository) Close() {
	r.pool.Close()
}

// Ping verifies the database is reachable.
func (r *PostgresRepository) Ping(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return storageErr("ping database", err)
	}
	return nil
}

// Insert stores the event as a single row. The identifier is assigned here
// and created_at by the database, so the timestamp order follows the store's
// clock regardless of caller skew.
func (r *PostgresRepository) Insert(ctx context.Context, event *models.WebhookEvent) (*models.WebhookEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	headers, err := json.Marshal(event.Headers)
	if err != nil {
		return nil, fmt.Errorf("failed to encode headers: %w", err)
	}

	var attachments []byte
	if len(event.Attachments) > 0 {
		attachments, err = json.Marshal(event.Attachments)
		if err != nil {
			return nil, fmt.Errorf("failed to encode attachments: %w", err)
		}
	}

	stored := *event
	stored.ID = uuid.New().String()

	query := `
		INSERT INTO webhook_events (id, host, path, body, headers, attachments, source_ip)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	err = r.pool.QueryRow(ctx, query,
		stored.ID, stored.Host, stored.Path, stored.Body,
		headers, attachments, stored.SourceIP,
	).Scan(&stored.CreatedAt)
	if err != nil {
		return nil, storageErr("insert webhook event", err)
	}

	return &stored, nil
}

// CountByHost returns the exact number of events stored for the host.
func (r *PostgresRepository) CountByHost(ctx context.Context, host string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var count int64
	query := `SELECT COUNT(*) FROM webhook_events WHERE host = $1`
	if err := r.pool.QueryRow(ctx, query, host).Scan(&count); err != nil {
		return 0, storageErr("count webhook events", err)
	}

	return count, nil
}

// CountsByHost returns per-host counts ordered by host so repeated calls
// over unchanged data return the same sequence.
func (r *PostgresRepository) CountsByHost(ctx context.Context) ([]models.HostCount, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	query := `
		SELECT host, COUNT(*)
		FROM webhook_events
		GROUP BY host
		ORDER BY host
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, storageErr("group webhook events by host", err)
	}
	defer rows.Close()

	counts := []models.HostCount{}
	for rows.Next() {
		var hc models.HostCount
		if err := rows.Scan(&hc.Host, &hc.Count); err != nil {
			return nil, storageErr("scan host count", err)
		}
		counts = append(counts, hc)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate host counts", err)
	}

	return counts, nil
}

// DeleteByHost removes every event for the host in one statement.
func (r *PostgresRepository) DeleteByHost(ctx context.Context, host string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, `DELETE FROM webhook_events WHERE host = $1`, host)
	if err != nil {
		return 0, storageErr("delete webhook events by host", err)
	}

	return result.RowsAffected(), nil
}

// DeleteAll removes every event across all hosts in one statement.
func (r *PostgresRepository) DeleteAll(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, `DELETE FROM webhook_events`)
	if err != nil {
		return 0, storageErr("delete all webhook events", err)
	}

	return result.RowsAffected(), nil
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(ErrStorageFailure, err))
}
