package repository

import (
	"context"
	"embed"
	"fmt"
	"net/url"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/moneytag/moneytag/internal/config"
	"github.com/moneytag/moneytag/internal/model"
)

//go:embed migrations/*.sql
var migrations embed.FS

// ConnectPostgres opens a pool and pings it
func ConnectPostgres(ctx context.Context, cfg config.Postgres) (*pgxpool.Pool, error) {
	uri := fmt.Sprintf("postgresql://%s@%s", url.UserPassword(cfg.User, cfg.Secret).String(), cfg.Endpoint)
	logrus.Infof("establishing postgres connection to %s", cfg.Endpoint)
	pool, err := pgxpool.Connect(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("%w: postgres couldn't Connect: %w", ErrConnection, err)
	}
	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: postgres ping failed: %w", ErrConnection, err)
	}
	logrus.Info("ping was successful, postgres is available")
	return pool, nil
}

// Migrate applies the schema files in name order. They are written with IF NOT EXISTS, so running them on every start is safe.
func Migrate(ctx context.Context, conn *pgxpool.Pool) error {
	entries, err := migrations.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("repository.Postgres, reading migrations error: %v", err)
	}
	for _, entry := range entries {
		query, err := migrations.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("repository.Postgres, reading migration %s error: %v", entry.Name(), err)
		}
		if _, err = conn.Exec(ctx, string(query)); err != nil {
			return fmt.Errorf("%w: repository.Postgres, migration %s error: %w", ErrWrite, entry.Name(), err)
		}
		logrus.Infof("applied migration %s", entry.Name())
	}
	return nil
}

type Postgres struct {
	conn *pgxpool.Pool
}

func NewPostgres(conn *pgxpool.Pool) *Postgres {
	return &Postgres{
		conn: conn,
	}
}

func (p *Postgres) AddRecord(ctx context.Context, record *model.Record) error {
	query := `INSERT INTO moneytag.records (owner, title, amount, tags) VALUES ($1, $2, $3, $4)`
	_, err := p.conn.Exec(ctx, query, record.Owner, record.Title, record.Amount, tagsOrEmpty(record.Tags))
	if err != nil {
		return fmt.Errorf("%w: repository.Postgres, add record error: %w", ErrWrite, err)
	}
	return nil
}

func (p *Postgres) AddRecords(ctx context.Context, records []*model.Record) error {
	records = nonNil(records)
	if len(records) == 0 {
		return nil
	}
	_, err := p.conn.CopyFrom(ctx,
		pgx.Identifier{"moneytag", "records"},
		[]string{"owner", "title", "amount", "tags"},
		pgx.CopyFromSlice(len(records), func(i int) ([]interface{}, error) {
			r := records[i]
			return []interface{}{r.Owner, r.Title, r.Amount, tagsOrEmpty(r.Tags)}, nil
		}))
	if err != nil {
		return fmt.Errorf("%w: repository.Postgres, add records error: %w", ErrWrite, err)
	}
	return nil
}

func (p *Postgres) Records(ctx context.Context, owner string) ([]*model.Record, error) {
	query := `SELECT owner, title, amount, tags FROM moneytag.records WHERE owner=$1`
	rows, err := p.conn.Query(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("%w: repository.Postgres, query records error: %w", ErrRead, err)
	}
	defer rows.Close()

	records := make([]*model.Record, 0)
	for rows.Next() {
		var record model.Record
		if err = rows.Scan(&record.Owner, &record.Title, &record.Amount, &record.Tags); err != nil {
			return nil, fmt.Errorf("%w: repository.Postgres, scan record error: %w", ErrRead, err)
		}
		records = append(records, &record)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: repository.Postgres, rows error: %w", ErrRead, err)
	}
	return records, nil
}

// the column is NOT NULL, nil would be sent as NULL
func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
