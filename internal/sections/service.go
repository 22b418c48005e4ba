package section

import (
	"context"
	"errors"
	"fmt"
	"strings"

	pkgerrors "github.com/futamarket/market-backend/pkg/errors"
	"github.com/futamarket/market-backend/pkg/logger"
)

// Service exposes section management.
type Service interface {
	List(ctx context.Context) ([]Section, error)
	Create(ctx context.Context, title string) (*Section, error)
	Update(ctx context.Context, id, title string) (*Section, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService constructs a section service instance.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("section repository required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) List(ctx context.Context) ([]Section, error) {
	sections, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Cause(pkgerrors.CodePersistence, err)
	}
	return sections, nil
}

func (s *service) Create(ctx context.Context, title string) (*Section, error) {
	clean, err := validateTitle(title)
	if err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, clean)
	if err != nil {
		return nil, pkgerrors.Cause(pkgerrors.CodePersistence, err)
	}
	s.info(ctx, created.ID, "section.created")
	return created, nil
}

func (s *service) Update(ctx context.Context, id, title string) (*Section, error) {
	clean, err := validateTitle(title)
	if err != nil {
		return nil, err
	}
	updated, err := s.repo.Update(ctx, id, clean)
	if errors.Is(err, ErrNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, fmt.Sprintf("section %s not found", id))
	}
	if err != nil {
		return nil, pkgerrors.Cause(pkgerrors.CodePersistence, err)
	}
	s.info(ctx, updated.ID, "section.updated")
	return updated, nil
}

// Delete does not touch products referencing the section.
func (s *service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Cause(pkgerrors.CodePersistence, err)
	}
	s.info(ctx, id, "section.deleted")
	return nil
}

func (s *service) info(ctx context.Context, id, msg string) {
	if s.logg == nil {
		return
	}
	s.logg.Info(s.logg.WithResource(ctx, "section", id), msg)
}

func validateTitle(title string) (string, error) {
	clean := strings.TrimSpace(title)
	if clean == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "Title required")
	}
	return clean, nil
}
