package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/ward-api/internal/model"
	"github.com/jwalitptl/ward-api/internal/repository"
	apperrors "github.com/jwalitptl/ward-api/pkg/errors"
)

type templateRepository struct {
	db *sqlx.DB
}

func NewTemplateRepository(db *sqlx.DB) repository.TemplateRepository {
	return &templateRepository{db: db}
}

func (r *templateRepository) Create(ctx context.Context, template *model.MessageTemplate) error {
	query := `
		INSERT INTO message_templates (id, name, content, is_active, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		template.ID,
		template.Name,
		template.Content,
		template.IsActive,
		template.CreatedBy,
		template.CreatedAt,
		template.UpdatedAt,
	)
	if err != nil {
		return apperrors.NewStore("create template", err)
	}
	return nil
}

func (r *templateRepository) Get(ctx context.Context, id uuid.UUID) (*model.MessageTemplate, error) {
	query := `SELECT * FROM message_templates WHERE id = $1`
	var template model.MessageTemplate
	err := r.db.GetContext(ctx, &template, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewTemplateNotFound(err)
	}
	if err != nil {
		return nil, apperrors.NewStore("get template", err)
	}
	return &template, nil
}

func (r *templateRepository) Update(ctx context.Context, template *model.MessageTemplate) error {
	query := `
		UPDATE message_templates SET
			name = $1, content = $2, is_active = $3, updated_at = NOW()
		WHERE id = $4
	`
	_, err := r.db.ExecContext(ctx, query,
		template.Name,
		template.Content,
		template.IsActive,
		template.ID,
	)
	if err != nil {
		return apperrors.NewStore("update template", err)
	}
	return nil
}

func (r *templateRepository) List(ctx context.Context) ([]*model.MessageTemplate, error) {
	query := `SELECT * FROM message_templates ORDER BY created_at DESC`
	var templates []*model.MessageTemplate
	if err := r.db.SelectContext(ctx, &templates, query); err != nil {
		return nil, apperrors.NewStore("list templates", err)
	}
	return templates, nil
}
