package template

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/jwalitptl/ward-api/internal/model"
	"github.com/jwalitptl/ward-api/internal/repository"
	"github.com/jwalitptl/ward-api/internal/service/activity"
	apperrors "github.com/jwalitptl/ward-api/pkg/errors"
)

const (
	cacheTTL     = 5 * time.Minute
	cacheCleanup = 10 * time.Minute
)

// Service manages message templates. Templates are read on every
// completed delivery, so resolved active templates are cached briefly.
type Service struct {
	repo     repository.TemplateRepository
	recorder *activity.Service
	cache    *gocache.Cache
}

func NewService(repo repository.TemplateRepository, recorder *activity.Service) *Service {
	return &Service{
		repo:     repo,
		recorder: recorder,
		cache:    gocache.New(cacheTTL, cacheCleanup),
	}
}

func (s *Service) Create(ctx context.Context, req *model.CreateTemplateRequest, actor model.Actor) (*model.MessageTemplate, error) {
	if req.Name == "" || req.Content == "" {
		return nil, apperrors.NewValidation("template name and content are required")
	}

	now := time.Now()
	template := &model.MessageTemplate{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:      req.Name,
		Content:   req.Content,
		IsActive:  true,
		CreatedBy: actor.ID,
	}

	if err := s.repo.Create(ctx, template); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, model.ActivityTemplateCreated,
		fmt.Sprintf("Template %q created", template.Name), actor, nil)

	return template, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateTemplateRequest, actor model.Actor) (*model.MessageTemplate, error) {
	template, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		template.Name = *req.Name
	}
	if req.Content != nil {
		template.Content = *req.Content
	}
	if req.IsActive != nil {
		template.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, template); err != nil {
		return nil, err
	}
	s.cache.Delete(id.String())

	s.recorder.Record(ctx, model.ActivityTemplateUpdated,
		fmt.Sprintf("Template %q updated", template.Name), actor, nil)

	return template, nil
}

func (s *Service) List(ctx context.Context) ([]*model.MessageTemplate, error) {
	return s.repo.List(ctx)
}

// GetActive resolves an active template by id. Deactivated templates
// resolve the same as missing ones.
func (s *Service) GetActive(ctx context.Context, id uuid.UUID) (*model.MessageTemplate, error) {
	if cached, ok := s.cache.Get(id.String()); ok {
		return cached.(*model.MessageTemplate), nil
	}

	template, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !template.IsActive {
		return nil, apperrors.NewTemplateNotFound(nil)
	}

	s.cache.Set(id.String(), template, gocache.DefaultExpiration)
	return template, nil
}
