// Package sqlite stores subscribers in a single sqlite file through gorm.
package sqlite

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/subscriberhub/internal/domain/subscriber"
	"github.com/geocoder89/subscriberhub/internal/observability"
	gsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// created_at is stored as an ISO-8601 UTC string with millisecond precision.
const isoMillis = "2006-01-02T15:04:05.000Z"

type subscriberModel struct {
	ID           string `gorm:"column:id;primaryKey"`
	Name         string `gorm:"column:name;not null"`
	Email        string `gorm:"column:email;not null"`
	Password     string `gorm:"column:password;not null"`
	CreatedAtISO string `gorm:"column:created_at;not null"`
}

func (subscriberModel) TableName() string {
	return "subscriber"
}

func toModel(s subscriber.Subscriber) subscriberModel {
	return subscriberModel{
		ID:           s.ID,
		Name:         s.Name,
		Email:        s.Email,
		Password:     s.PasswordHash,
		CreatedAtISO: s.CreatedAt.UTC().Format(isoMillis),
	}
}

func (m subscriberModel) toEntity() (subscriber.Subscriber, error) {
	createdAt, err := time.Parse(isoMillis, m.CreatedAtISO)
	if err != nil {
		return subscriber.Subscriber{}, err
	}

	return subscriber.Subscriber{
		ID:           m.ID,
		Name:         m.Name,
		Email:        m.Email,
		PasswordHash: m.Password,
		CreatedAt:    createdAt,
	}, nil
}

// Open connects to the sqlite file at path, creating it if needed.
func Open(path string) (*gorm.DB, error) {
	return gorm.Open(gsqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
}

type SubscribersRepo struct {
	db   *gorm.DB
	prom *observability.Prom
}

// prom may be nil when metrics are disabled.
func NewSubscribersRepo(db *gorm.DB, prom *observability.Prom) *SubscribersRepo {
	return &SubscribersRepo{db: db, prom: prom}
}

func (r *SubscribersRepo) observe(op string, fn func() error) error {
	if r.prom == nil {
		return fn()
	}
	return r.prom.ObserveDB(op, fn)
}

// EnsureSchema creates the subscriber table when it does not exist yet.
func (r *SubscribersRepo) EnsureSchema(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&subscriberModel{})
}

func (r *SubscribersRepo) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *SubscribersRepo) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (r *SubscribersRepo) List(ctx context.Context) ([]subscriber.Summary, error) {
	out := make([]subscriber.Summary, 0)

	err := r.observe("subscribers.list", func() error {
		return r.db.WithContext(ctx).
			Model(&subscriberModel{}).
			Select("id", "name").
			Order("rowid ASC").
			Scan(&out).Error
	})

	if err != nil {
		return nil, subscriber.RepositoryFailure("list", err)
	}

	return out, nil
}

func (r *SubscribersRepo) GetByID(ctx context.Context, id string) (subscriber.Summary, error) {
	var rows []subscriber.Summary

	err := r.observe("subscribers.get", func() error {
		return r.db.WithContext(ctx).
			Model(&subscriberModel{}).
			Select("id", "name").
			Where("id = ?", id).
			Limit(1).
			Scan(&rows).Error
	})

	if err != nil {
		return subscriber.Summary{}, subscriber.RepositoryFailure("get", err)
	}

	if len(rows) == 0 {
		return subscriber.Summary{}, subscriber.ErrNotFound
	}

	return rows[0], nil
}

func (r *SubscribersRepo) Insert(ctx context.Context, s subscriber.Subscriber) error {
	m := toModel(s)

	err := r.observe("subscribers.insert", func() error {
		return r.db.WithContext(ctx).Create(&m).Error
	})
	if err != nil {
		return subscriber.RepositoryFailure("insert", err)
	}

	return nil
}

// Load returns the full stored record, hash included.
func (r *SubscribersRepo) Load(ctx context.Context, id string) (subscriber.Subscriber, error) {
	var m subscriberModel

	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return subscriber.Subscriber{}, subscriber.ErrNotFound
		}
		return subscriber.Subscriber{}, subscriber.RepositoryFailure("load", err)
	}

	return m.toEntity()
}
