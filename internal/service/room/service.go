package room

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/ward-api/internal/model"
	"github.com/jwalitptl/ward-api/internal/repository"
	"github.com/jwalitptl/ward-api/internal/service/activity"
	apperrors "github.com/jwalitptl/ward-api/pkg/errors"
)

// Service is the room allocator. It enforces the one-patient-per-room
// invariant and handles administrative room changes.
type Service struct {
	repo     repository.RoomRepository
	recorder *activity.Service
}

func NewService(repo repository.RoomRepository, recorder *activity.Service) *Service {
	return &Service{repo: repo, recorder: recorder}
}

func (s *Service) Create(ctx context.Context, name string, actor model.Actor) (*model.LaborRoom, error) {
	if name == "" {
		return nil, apperrors.NewValidation("room name is required")
	}

	now := time.Now()
	room := &model.LaborRoom{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:       name,
		IsOccupied: false,
	}

	if err := s.repo.Create(ctx, room); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, model.ActivityRoomCreated,
		fmt.Sprintf("Labor room %q created", room.Name), actor, nil)

	return room, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.LaborRoom, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*model.LaborRoom, error) {
	return s.repo.List(ctx)
}

// Occupy places a patient in the room. Fails with RoomUnavailable when
// the room already holds a patient.
func (s *Service) Occupy(ctx context.Context, roomID, patientID, nurseID uuid.UUID) error {
	room, err := s.repo.Get(ctx, roomID)
	if err != nil {
		return err
	}
	if room.IsOccupied {
		return apperrors.NewRoomUnavailable(room.Name)
	}
	return s.repo.Occupy(ctx, roomID, patientID, nurseID)
}

// Release frees whichever room holds the patient. At most one room does;
// none is a no-op, not an error.
func (s *Service) Release(ctx context.Context, patientID uuid.UUID) error {
	return s.repo.ReleaseByPatient(ctx, patientID)
}

// Update covers rename and nurse reassignment. Nurse reassignment is an
// administrative action permitted regardless of occupancy.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateLaborRoomRequest, actor model.Actor) (*model.LaborRoom, error) {
	room, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, apperrors.NewValidation("room name is required")
		}
		room.Name = *req.Name
	}
	if req.AssignedNurseID != nil {
		if *req.AssignedNurseID == "" {
			room.AssignedNurseID = nil
		} else {
			nurseID, err := uuid.Parse(*req.AssignedNurseID)
			if err != nil {
				return nil, apperrors.NewValidation("invalid nurse ID")
			}
			room.AssignedNurseID = &nurseID
		}
	}

	if err := s.repo.Update(ctx, room); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, model.ActivityRoomUpdated,
		fmt.Sprintf("Labor room %q updated", room.Name), actor, nil)

	return room, nil
}

// ToggleAvailability flips a room in or out of service. A room that still
// holds a patient cannot be taken out of service.
func (s *Service) ToggleAvailability(ctx context.Context, id uuid.UUID, actor model.Actor) (*model.LaborRoom, error) {
	room, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !room.IsOccupied && room.CurrentPatientID != nil {
		return nil, apperrors.NewValidation("cannot change availability while the room has a current patient")
	}
	if room.IsOccupied && room.CurrentPatientID != nil {
		return nil, apperrors.NewRoomUnavailable(room.Name)
	}

	room.IsOccupied = !room.IsOccupied
	if !room.IsOccupied {
		room.AssignedNurseID = nil
		room.CurrentPatientID = nil
	}

	if err := s.repo.Update(ctx, room); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, model.ActivityRoomUpdated,
		fmt.Sprintf("Labor room %q availability changed", room.Name), actor, nil)

	return room, nil
}
