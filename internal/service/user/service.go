package user

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/ward-api/internal/email"
	"github.com/jwalitptl/ward-api/internal/model"
	"github.com/jwalitptl/ward-api/internal/repository"
	"github.com/jwalitptl/ward-api/internal/service/activity"
	apperrors "github.com/jwalitptl/ward-api/pkg/errors"
	"github.com/jwalitptl/ward-api/pkg/logger"
)

const bcryptCost = 12

// Service manages staff accounts. Accounts are deactivated rather than
// deleted so activity log references stay resolvable.
type Service struct {
	repo     repository.UserRepository
	emailSvc email.Service
	recorder *activity.Service
	logger   *logger.Logger
}

func NewService(repo repository.UserRepository, emailSvc email.Service, recorder *activity.Service, log *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		emailSvc: emailSvc,
		recorder: recorder,
		logger:   log,
	}
}

func (s *Service) Create(ctx context.Context, req *model.CreateUserRequest, actor model.Actor) (*model.User, error) {
	role := model.Role(req.Role)
	if !role.Valid() {
		return nil, apperrors.NewValidation("invalid role")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}

	now := time.Now()
	user := &model.User{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
	}

	if req.LaborRoomID != nil && *req.LaborRoomID != "" {
		roomID, err := uuid.Parse(*req.LaborRoomID)
		if err != nil {
			return nil, apperrors.NewValidation("invalid labor room ID")
		}
		user.LaborRoomID = &roomID
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	// Onboarding mail is best effort; account creation already committed.
	if err := s.emailSvc.SendWelcome(ctx, user.Email, user.Name, req.Password); err != nil {
		s.logger.Error(err, "failed to send welcome email")
	}

	s.recorder.Record(ctx, model.ActivityUserCreated,
		fmt.Sprintf("Staff account for %s (%s) created", user.Name, user.Role), actor, nil)

	return user, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*model.User, error) {
	return s.repo.List(ctx)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateUserRequest, actor model.Actor) (*model.User, error) {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Role != nil {
		role := model.Role(*req.Role)
		if !role.Valid() {
			return nil, apperrors.NewValidation("invalid role")
		}
		user.Role = role
	}
	if req.LaborRoomID != nil {
		if *req.LaborRoomID == "" {
			user.LaborRoomID = nil
		} else {
			roomID, err := uuid.Parse(*req.LaborRoomID)
			if err != nil {
				return nil, apperrors.NewValidation("invalid labor room ID")
			}
			user.LaborRoomID = &roomID
		}
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, model.ActivityUserUpdated,
		fmt.Sprintf("Staff account for %s updated", user.Name), actor, nil)

	return user, nil
}

// Deactivate disables login without removing the account.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID, actor model.Actor) error {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	user.IsActive = false
	if err := s.repo.Update(ctx, user); err != nil {
		return err
	}

	s.recorder.Record(ctx, model.ActivityUserUpdated,
		fmt.Sprintf("Staff account for %s deactivated", user.Name), actor, nil)

	return nil
}
