package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/subscriberhub/internal/domain/subscriber"
	"github.com/geocoder89/subscriberhub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createSubscriberTable = `
CREATE TABLE IF NOT EXISTS subscriber (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	email      TEXT NOT NULL,
	password   TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
)`

type SubscribersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

// constructor function; prom may be nil when metrics are disabled.

func NewSubscribersRepo(pool *pgxpool.Pool, prom *observability.Prom) *SubscribersRepo {
	return &SubscribersRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *SubscribersRepo) observe(op string, fn func() error) error {
	if r.prom == nil {
		return fn()
	}
	return r.prom.ObserveDB(op, fn)
}

// EnsureSchema creates the subscriber table when it does not exist yet.
func (r *SubscribersRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, createSubscriberTable)
	return err
}

func (r *SubscribersRepo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *SubscribersRepo) List(ctx context.Context) ([]subscriber.Summary, error) {
	output := make([]subscriber.Summary, 0)

	err := r.observe("subscribers.list", func() error {
		rows, err := r.pool.Query(ctx, `SELECT id, name FROM subscriber ORDER BY created_at ASC, id ASC`)
		if err != nil {
			return err
		}

		defer rows.Close()

		for rows.Next() {
			var s subscriber.Summary

			if err := rows.Scan(&s.ID, &s.Name); err != nil {
				return err
			}

			output = append(output, s)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, subscriber.RepositoryFailure("list", err)
	}

	return output, nil
}

func (r *SubscribersRepo) GetByID(ctx context.Context, id string) (subscriber.Summary, error) {
	var s subscriber.Summary
	found := false

	err := r.observe("subscribers.get", func() error {
		err := r.pool.QueryRow(ctx, `SELECT id, name FROM subscriber WHERE id = $1`, id).Scan(&s.ID, &s.Name)

		// absence is not a db error
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}

		if err != nil {
			return err
		}

		found = true
		return nil
	})

	if err != nil {
		return subscriber.Summary{}, subscriber.RepositoryFailure("get", err)
	}

	if !found {
		return subscriber.Summary{}, subscriber.ErrNotFound
	}

	return s, nil
}

func (r *SubscribersRepo) Insert(ctx context.Context, s subscriber.Subscriber) error {
	err := r.observe("subscribers.insert", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO subscriber (id, name, email, password, created_at) VALUES ($1,$2,$3,$4,$5)`,
			s.ID, s.Name, s.Email, s.PasswordHash, s.CreatedAt,
		)
		return err
	})

	if err != nil {
		return subscriber.RepositoryFailure("insert", err)
	}

	return nil
}
