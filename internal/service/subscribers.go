package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/geocoder89/subscriberhub/internal/domain/subscriber"
	"github.com/geocoder89/subscriberhub/internal/security"
	"github.com/google/uuid"
)

const (
	msgListFailed   = "Failed to get subscribers!"
	msgGetFailed    = "Failed to get subscriber!"
	msgCreateFailed = "Failed to create subscriber!"
)

// SubscriberRepository is the persistence contract. Reads only ever project
// {id, name}; GetByID returns subscriber.ErrNotFound when nothing matches.
type SubscriberRepository interface {
	List(ctx context.Context) ([]subscriber.Summary, error)
	GetByID(ctx context.Context, id string) (subscriber.Summary, error)
	Insert(ctx context.Context, s subscriber.Subscriber) error
}

type SubscriberService struct {
	repo   SubscriberRepository
	hasher security.Hasher
	log    *slog.Logger
	now    func() time.Time
	newID  func() (string, error)
}

type Option func(*SubscriberService)

func WithClock(now func() time.Time) Option {
	return func(s *SubscriberService) { s.now = now }
}

func WithIDGenerator(fn func() (string, error)) Option {
	return func(s *SubscriberService) { s.newID = fn }
}

func NewSubscriberService(repo SubscriberRepository, hasher security.Hasher, log *slog.Logger, opts ...Option) *SubscriberService {
	if log == nil {
		log = slog.Default()
	}

	s := &SubscriberService{
		repo:   repo,
		hasher: hasher,
		log:    log,
		now:    time.Now,
		newID:  newTimeOrderedID,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func newTimeOrderedID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// List never returns a nil slice on success.
func (s *SubscriberService) List(ctx context.Context) ([]subscriber.Summary, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, s.fail(ctx, msgListFailed, err)
	}

	if items == nil {
		items = []subscriber.Summary{}
	}

	return items, nil
}

// Get returns nil without error when no subscriber has the id.
func (s *SubscriberService) Get(ctx context.Context, id string) (*subscriber.Summary, error) {
	if id == "" {
		return nil, subscriber.ErrInvalidID
	}

	found, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, subscriber.ErrNotFound) {
			return nil, nil
		}
		return nil, s.fail(ctx, msgGetFailed, err)
	}

	return &found, nil
}

// Create validates, hashes and stores a new subscriber. Validation and hashing
// errors are returned as-is and not logged: they are caused by the input.
func (s *SubscriberService) Create(ctx context.Context, req subscriber.CreateSubscriberRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(*req.Password)
	if err != nil {
		if subscriber.KindOf(err) == "" {
			err = subscriber.HashingFailure(err)
		}
		return err
	}

	id, err := s.newID()
	if err != nil {
		return s.fail(ctx, msgCreateFailed, err)
	}

	sub := subscriber.NewFromCreateRequest(req, id, hash, s.now())

	if err := s.repo.Insert(ctx, sub); err != nil {
		return s.fail(ctx, msgCreateFailed, err)
	}

	return nil
}

// fail logs the detailed cause once and hands back an opaque failure.
func (s *SubscriberService) fail(ctx context.Context, msg string, cause error) error {
	s.log.ErrorContext(ctx, msg, "err", cause)
	return subscriber.ServiceFailure(msg)
}
