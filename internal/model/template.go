package model

import (
	"github.com/google/uuid"
)

// MessageTemplate is parametrized text used to generate the delivery
// notification. Templates are soft-deactivated, never hard-deleted.
type MessageTemplate struct {
	Base
	Name      string    `db:"name" json:"name"`
	Content   string    `db:"content" json:"content"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedBy uuid.UUID `db:"created_by" json:"created_by"`
}

type CreateTemplateRequest struct {
	Name    string `json:"name" binding:"required"`
	Content string `json:"content" binding:"required"`
}

type UpdateTemplateRequest struct {
	Name     *string `json:"name"`
	Content  *string `json:"content"`
	IsActive *bool   `json:"is_active"`
}
