package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/ward-api/internal/model"
	apperrors "github.com/jwalitptl/ward-api/pkg/errors"
)

// ContextActor is the gin context key holding the authenticated actor.
const ContextActor = "actor"

type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

// ActorFromContext returns the authenticated actor set by the auth
// middleware.
func ActorFromContext(c *gin.Context) (model.Actor, bool) {
	value, exists := c.Get(ContextActor)
	if !exists {
		return model.Actor{}, false
	}
	actor, ok := value.(model.Actor)
	return actor, ok
}

// RespondError maps application error codes to HTTP statuses.
func RespondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch apperrors.CodeOf(err) {
	case apperrors.ErrValidation:
		status = http.StatusBadRequest
	case apperrors.ErrInvalidTransition, apperrors.ErrRoomUnavailable:
		status = http.StatusConflict
	case apperrors.ErrNotFound, apperrors.ErrTemplateNotFound:
		status = http.StatusNotFound
	case apperrors.ErrUnauthorized:
		status = http.StatusUnauthorized
	case apperrors.ErrForbidden:
		status = http.StatusForbidden
	}
	c.JSON(status, NewErrorResponse(err.Error()))
}
