package product

import (
	"context"
	"errors"
	"fmt"

	"github.com/futamarket/market-backend/internal/media"
	section "github.com/futamarket/market-backend/internal/sections"
	"github.com/futamarket/market-backend/pkg/auth"
	pkgerrors "github.com/futamarket/market-backend/pkg/errors"
	"github.com/futamarket/market-backend/pkg/logger"
)

// Stage names a step of the mutation workflow. Failures carry the stage they
// happened in under the "stage" detail key.
type Stage string

const (
	StageAuthorizing     Stage = "authorizing"
	StageValidatingInput Stage = "validating_input"
	StageUploadingMedia  Stage = "uploading_media"
	StagePersisting      Stage = "persisting"
	StageDone            Stage = "done"
)

// MutationInput is the typed body of a create or update request.
type MutationInput struct {
	Fields Fields
	Images []media.Blob
	Video  *media.Blob
}

// SectionResolver resolves section references for read paths.
type SectionResolver interface {
	FindByIDs(ctx context.Context, ids []string) (map[string]section.Section, error)
}

// Service exposes product reads and the upload-then-persist mutations.
type Service interface {
	List(ctx context.Context) ([]ProductDetail, error)
	Get(ctx context.Context, id string) (*ProductDetail, error)
	Create(ctx context.Context, input MutationInput) (*Product, error)
	Update(ctx context.Context, id string, input MutationInput) (*Product, error)
	Delete(ctx context.Context, id string) error
}

type ServiceParams struct {
	Repo     Repository
	Sections SectionResolver
	Media    media.Store
	Logger   *logger.Logger
}

type service struct {
	repo     Repository
	sections SectionResolver
	media    media.Store
	logg     *logger.Logger
}

// NewService constructs a product service instance.
func NewService(p ServiceParams) (Service, error) {
	if p.Repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if p.Sections == nil {
		return nil, fmt.Errorf("section resolver required")
	}
	if p.Media == nil {
		return nil, fmt.Errorf("media store required")
	}
	return &service{repo: p.Repo, sections: p.Sections, media: p.Media, logg: p.Logger}, nil
}

func (s *service) List(ctx context.Context) ([]ProductDetail, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Cause(pkgerrors.CodePersistence, err)
	}
	return s.resolve(ctx, products)
}

func (s *service) Get(ctx context.Context, id string) (*ProductDetail, error) {
	p, err := s.repo.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, fmt.Sprintf("product %s not found", id))
	}
	if err != nil {
		return nil, pkgerrors.Cause(pkgerrors.CodePersistence, err)
	}
	details, err := s.resolve(ctx, []Product{*p})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

// resolve joins section records onto products. Dangling references resolve to nil.
func (s *service) resolve(ctx context.Context, products []Product) ([]ProductDetail, error) {
	seen := map[string]struct{}{}
	ids := []string{}
	for _, p := range products {
		if p.Section == nil {
			continue
		}
		if _, ok := seen[*p.Section]; ok {
			continue
		}
		seen[*p.Section] = struct{}{}
		ids = append(ids, *p.Section)
	}

	var found map[string]section.Section
	if len(ids) > 0 {
		var err error
		found, err = s.sections.FindByIDs(ctx, ids)
		if err != nil {
			return nil, pkgerrors.Cause(pkgerrors.CodePersistence, err)
		}
	}

	out := make([]ProductDetail, 0, len(products))
	for _, p := range products {
		detail := ProductDetail{Product: p}
		if p.Section != nil {
			if sec, ok := found[*p.Section]; ok {
				detail.Section = &sec
			}
		}
		out = append(out, detail)
	}
	return out, nil
}

func (s *service) Create(ctx context.Context, input MutationInput) (*Product, error) {
	ctx = s.withResource(ctx, "")
	return s.mutate(ctx, "product.created", input, func(ctx context.Context, up uploaded) (*Product, error) {
		images := up.images
		if images == nil {
			images = []string{}
		}
		return s.repo.Create(ctx, input.Fields, images, up.video)
	})
}

func (s *service) Update(ctx context.Context, id string, input MutationInput) (*Product, error) {
	ctx = s.withResource(ctx, id)
	return s.mutate(ctx, "product.updated", input, func(ctx context.Context, up uploaded) (*Product, error) {
		return s.repo.Update(ctx, id, input.Fields, MediaUpdate{Images: up.images, Video: up.video})
	})
}

func (s *service) Delete(ctx context.Context, id string) error {
	ctx = s.withResource(ctx, id)
	if !auth.IsAdmin(ctx) {
		return stageError(pkgerrors.New(pkgerrors.CodeForbidden, "admin credential required"), StageAuthorizing)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return stageError(pkgerrors.Cause(pkgerrors.CodePersistence, err), StagePersisting)
	}
	s.info(ctx, "product.deleted")
	return nil
}

// uploaded holds the URLs produced by one workflow run. A nil images slice
// means no image was attached.
type uploaded struct {
	images []string
	video  *string
}

func (u uploaded) urls() []string {
	out := append([]string{}, u.images...)
	if u.video != nil {
		out = append(out, *u.video)
	}
	return out
}

type persistFunc func(ctx context.Context, up uploaded) (*Product, error)

func (s *service) mutate(ctx context.Context, doneMsg string, input MutationInput, persist persistFunc) (*Product, error) {
	s.stage(ctx, StageAuthorizing)
	if !auth.IsAdmin(ctx) {
		return nil, stageError(pkgerrors.New(pkgerrors.CodeForbidden, "admin credential required"), StageAuthorizing)
	}

	s.stage(ctx, StageValidatingInput)
	if err := media.ValidateAll(input.Images, input.Video); err != nil {
		return nil, err
	}

	s.stage(ctx, StageUploadingMedia)
	up, err := s.upload(ctx, input)
	if err != nil {
		s.orphaned(ctx, up.urls())
		return nil, stageError(asUploadError(err), StageUploadingMedia)
	}

	s.stage(ctx, StagePersisting)
	p, err := persist(ctx, up)
	if err != nil {
		s.orphaned(ctx, up.urls())
		if errors.Is(err, ErrNotFound) {
			return nil, stageError(pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found"), StagePersisting)
		}
		return nil, stageError(pkgerrors.Cause(pkgerrors.CodePersistence, err), StagePersisting)
	}

	s.stage(ctx, StageDone)
	s.info(s.withResource(ctx, p.ID), doneMsg)
	return p, nil
}

// upload stores images in submission order, then the video. It stops at the
// first failure and returns what was already stored.
func (s *service) upload(ctx context.Context, input MutationInput) (uploaded, error) {
	var up uploaded
	if len(input.Images) > 0 {
		up.images = make([]string, 0, len(input.Images))
	}
	for _, blob := range input.Images {
		url, err := s.media.Store(ctx, blob, media.KindImage)
		if err != nil {
			return up, err
		}
		up.images = append(up.images, url)
	}
	if input.Video != nil {
		url, err := s.media.Store(ctx, *input.Video, media.KindVideo)
		if err != nil {
			return up, err
		}
		up.video = &url
	}
	return up, nil
}

func asUploadError(err error) *pkgerrors.Error {
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Cause(pkgerrors.CodeUpload, err)
}

func stageError(err *pkgerrors.Error, stage Stage) *pkgerrors.Error {
	details, _ := err.Details().(map[string]any)
	if details == nil {
		details = map[string]any{}
	}
	details["stage"] = string(stage)
	return err.WithDetails(details)
}

func (s *service) withResource(ctx context.Context, id string) context.Context {
	if s.logg == nil {
		return ctx
	}
	return s.logg.WithResource(ctx, "product", id)
}

func (s *service) stage(ctx context.Context, stage Stage) {
	if s.logg == nil {
		return
	}
	s.logg.Debug(s.logg.WithField(ctx, "stage", string(stage)), "product.stage")
}

// orphaned records media left in the store by an aborted mutation. Nothing is
// deleted.
func (s *service) orphaned(ctx context.Context, urls []string) {
	if s.logg == nil || len(urls) == 0 {
		return
	}
	s.logg.Warn(s.logg.WithField(ctx, "orphaned_urls", urls), "product.media_orphaned")
}

func (s *service) info(ctx context.Context, msg string) {
	if s.logg == nil {
		return
	}
	s.logg.Info(ctx, msg)
}
