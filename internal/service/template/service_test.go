package template

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/ward-api/internal/model"
	"github.com/jwalitptl/ward-api/internal/service/activity"
	apperrors "github.com/jwalitptl/ward-api/pkg/errors"
)

type fakeTemplateRepo struct {
	templates map[uuid.UUID]*model.MessageTemplate
	getCalls  int
}

func (r *fakeTemplateRepo) Create(_ context.Context, t *model.MessageTemplate) error {
	r.templates[t.ID] = t
	return nil
}

func (r *fakeTemplateRepo) Get(_ context.Context, id uuid.UUID) (*model.MessageTemplate, error) {
	r.getCalls++
	t, ok := r.templates[id]
	if !ok {
		return nil, apperrors.NewTemplateNotFound(nil)
	}
	return t, nil
}

func (r *fakeTemplateRepo) Update(_ context.Context, t *model.MessageTemplate) error {
	r.templates[t.ID] = t
	return nil
}

func (r *fakeTemplateRepo) List(_ context.Context) ([]*model.MessageTemplate, error) {
	out := make([]*model.MessageTemplate, 0, len(r.templates))
	for _, t := range r.templates {
		out = append(out, t)
	}
	return out, nil
}

type fakeActivityRepo struct {
	entries []*model.ActivityLog
}

func (r *fakeActivityRepo) Create(_ context.Context, e *model.ActivityLog) error {
	r.entries = append(r.entries, e)
	return nil
}

func (r *fakeActivityRepo) List(_ context.Context, limit int) ([]*model.ActivityLog, error) {
	return r.entries, nil
}

func (r *fakeActivityRepo) DeleteBefore(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

func newTestService() (*Service, *fakeTemplateRepo) {
	repo := &fakeTemplateRepo{templates: make(map[uuid.UUID]*model.MessageTemplate)}
	return NewService(repo, activity.NewService(&fakeActivityRepo{})), repo
}

func adminActor() model.Actor {
	return model.Actor{ID: uuid.New(), Name: "Admin", Role: model.RoleAdmin}
}

func TestCreateTemplate(t *testing.T) {
	svc, _ := newTestService()

	created, err := svc.Create(context.Background(), &model.CreateTemplateRequest{
		Name:    "Delivery",
		Content: "Hello {{nextOfKinName}}",
	}, adminActor())
	require.NoError(t, err)
	assert.True(t, created.IsActive)
}

func TestCreateTemplateValidation(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Create(context.Background(), &model.CreateTemplateRequest{Name: "Delivery"}, adminActor())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrValidation, apperrors.CodeOf(err))
}

func TestGetActiveCachesReads(t *testing.T) {
	svc, repo := newTestService()
	created, err := svc.Create(context.Background(), &model.CreateTemplateRequest{
		Name:    "Delivery",
		Content: "Hello",
	}, adminActor())
	require.NoError(t, err)

	_, err = svc.GetActive(context.Background(), created.ID)
	require.NoError(t, err)
	_, err = svc.GetActive(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.getCalls)
}

func TestGetActiveRejectsDeactivated(t *testing.T) {
	svc, _ := newTestService()
	created, err := svc.Create(context.Background(), &model.CreateTemplateRequest{
		Name:    "Delivery",
		Content: "Hello",
	}, adminActor())
	require.NoError(t, err)

	inactive := false
	_, err = svc.Update(context.Background(), created.ID, &model.UpdateTemplateRequest{
		IsActive: &inactive,
	}, adminActor())
	require.NoError(t, err)

	_, err = svc.GetActive(context.Background(), created.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrTemplateNotFound, apperrors.CodeOf(err))
}

func TestUpdateInvalidatesCache(t *testing.T) {
	svc, _ := newTestService()
	created, err := svc.Create(context.Background(), &model.CreateTemplateRequest{
		Name:    "Delivery",
		Content: "Old content",
	}, adminActor())
	require.NoError(t, err)

	_, err = svc.GetActive(context.Background(), created.ID)
	require.NoError(t, err)

	newContent := "New content"
	_, err = svc.Update(context.Background(), created.ID, &model.UpdateTemplateRequest{
		Content: &newContent,
	}, adminActor())
	require.NoError(t, err)

	fresh, err := svc.GetActive(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, newContent, fresh.Content)
}
