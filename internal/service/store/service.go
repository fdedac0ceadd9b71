package store

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"

	"storefront/internal/domain"
)

var (
	ErrNotFound      = domain.NotFound("store not found")
	ErrTitleRequired = domain.Invalid("store title is required")
)

type storeRepo interface {
	List(ctx context.Context, ids []string) ([]domain.Store, error)
	GetByID(ctx context.Context, id string) (*domain.Store, error)
	Create(ctx context.Context, s domain.Store) (*domain.Store, error)
	Update(ctx context.Context, s domain.Store) (*domain.Store, error)
	Delete(ctx context.Context, id string) error
}

type storeIndex interface {
	IndexStores(stores []domain.Store) error
	UpsertStore(s domain.Store) error
	DeleteStore(id string) error
	SearchStores(term string, limit int) ([]string, error)
}

type Service struct {
	repo   storeRepo
	index  storeIndex
	logger *log.Logger
}

func New(repo storeRepo, index storeIndex, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, index: index, logger: logger}
}

type Input struct {
	ID          string `json:"storeId,omitempty"`
	Title       string `json:"storeTitle"`
	Address     string `json:"storeAddress"`
	Description string `json:"storeDescription"`
}

// Reindex rebuilds the store search index from storage.
func (s *Service) Reindex(ctx context.Context) error {
	all, err := s.repo.List(ctx, nil)
	if err != nil {
		return err
	}
	return s.index.IndexStores(all)
}

func (s *Service) List(ctx context.Context) ([]domain.Store, error) {
	return s.repo.List(ctx, nil)
}

func (s *Service) Filter(ctx context.Context, term string) ([]domain.Store, error) {
	ids, err := s.index.SearchStores(term, 0)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, ids)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Store, error) {
	st, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, ErrNotFound
	}
	return st, err
}

func (s *Service) Insert(ctx context.Context, in Input) (*domain.Store, error) {
	st, err := build(in)
	if err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, st)
	if err != nil {
		return nil, domain.Persistence("error inserting store", err)
	}
	s.reindexOne(*created)
	return created, nil
}

func (s *Service) Update(ctx context.Context, in Input) (*domain.Store, error) {
	st, err := build(in)
	if err != nil {
		return nil, err
	}
	st.ID = strings.TrimSpace(in.ID)
	updated, err := s.repo.Update(ctx, st)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, domain.Persistence("failed to save, please try again", err)
	}
	s.reindexOne(*updated)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrNotFound
		}
		return domain.Persistence("error deleting store", err)
	}
	if err := s.index.DeleteStore(id); err != nil {
		s.logger.Printf("store service: unindex id=%s error=%v", id, err)
	}
	return nil
}

func build(in Input) (domain.Store, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return domain.Store{}, ErrTitleRequired
	}
	return domain.Store{
		Title:       title,
		Address:     strings.TrimSpace(in.Address),
		Description: strings.TrimSpace(in.Description),
	}, nil
}

func (s *Service) reindexOne(st domain.Store) {
	if err := s.index.UpsertStore(st); err != nil {
		s.logger.Printf("store service: index id=%s error=%v", st.ID, err)
	}
}
