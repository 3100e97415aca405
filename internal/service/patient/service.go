package patient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/ward-api/internal/model"
	"github.com/jwalitptl/ward-api/internal/repository"
	"github.com/jwalitptl/ward-api/internal/service/activity"
	"github.com/jwalitptl/ward-api/internal/service/notification"
	templatesvc "github.com/jwalitptl/ward-api/internal/service/template"
	apperrors "github.com/jwalitptl/ward-api/pkg/errors"
)

// Service drives the patient lifecycle: registered -> in_labor ->
// delivered. Transitions validate against the current stored row, move
// the patient, its room and the outbox event in one transaction, notify
// next of kin on delivery and record an activity entry.
type Service struct {
	patients  repository.PatientRepository
	rooms     repository.RoomRepository
	ward      repository.WardStore
	templates *templatesvc.Service
	notifier  notification.Service
	recorder  *activity.Service
}

func NewService(
	patients repository.PatientRepository,
	rooms repository.RoomRepository,
	ward repository.WardStore,
	templates *templatesvc.Service,
	notifier notification.Service,
	recorder *activity.Service,
) *Service {
	return &Service{
		patients:  patients,
		rooms:     rooms,
		ward:      ward,
		templates: templates,
		notifier:  notifier,
		recorder:  recorder,
	}
}

// Register creates a patient in the registered state.
func (s *Service) Register(ctx context.Context, req *model.RegisterPatientRequest, actor model.Actor) (*model.Patient, error) {
	if req.FullName == "" {
		return nil, apperrors.NewValidation("full name is required")
	}
	if req.NextOfKinName == "" {
		return nil, apperrors.NewValidation("next of kin name is required")
	}
	if req.NextOfKinPhone == "" {
		return nil, apperrors.NewValidation("next of kin phone is required")
	}

	patient := &model.Patient{
		ID:             uuid.New(),
		FullName:       req.FullName,
		DeliveryDate:   req.DeliveryDate,
		NextOfKinName:  req.NextOfKinName,
		NextOfKinPhone: req.NextOfKinPhone,
		Status:         model.PatientStatusRegistered,
		RegisteredBy:   actor.ID,
		RegisteredAt:   time.Now(),
	}

	event, err := lifecycleEvent(model.EventPatientRegistered, patient)
	if err != nil {
		return nil, err
	}
	if err := s.ward.RegisterPatient(ctx, patient, event); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, model.ActivityPatientRegistered,
		fmt.Sprintf("New patient %s registered", patient.FullName), actor, &patient.ID)

	return patient, nil
}

// Accept moves a registered patient into an unoccupied labor room,
// assigning the accepting nurse. The patient row, the room row and the
// outbox event commit together.
func (s *Service) Accept(ctx context.Context, patientID, roomID uuid.UUID, actor model.Actor) (*model.Patient, error) {
	patient, err := s.patients.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if patient.Status != model.PatientStatusRegistered {
		return nil, apperrors.NewInvalidTransition(
			fmt.Sprintf("patient %s is %s, not awaiting labor", patient.FullName, patient.Status))
	}

	room, err := s.rooms.Get(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.IsOccupied {
		return nil, apperrors.NewRoomUnavailable(room.Name)
	}

	patient.Status = model.PatientStatusInLabor
	patient.LaborRoomID = &room.ID
	patient.AssignedNurseID = &actor.ID

	event, err := lifecycleEvent(model.EventPatientAccepted, patient)
	if err != nil {
		return nil, err
	}
	if err := s.ward.AcceptPatientIntoRoom(ctx, patient.ID, room.ID, actor.ID, event); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, model.ActivityPatientAccepted,
		fmt.Sprintf("Patient %s accepted into %s", patient.FullName, room.Name), actor, &patient.ID)

	return patient, nil
}

// CompleteDelivery finishes the lifecycle for a patient in labor. The
// template is resolved before anything mutates, so a bad template id
// leaves patient and room state untouched. The notification goes out
// before the transition commits; a failed send aborts the whole
// operation.
func (s *Service) CompleteDelivery(ctx context.Context, patientID uuid.UUID, req *model.CompleteDeliveryRequest, actor model.Actor) (*model.Patient, error) {
	patient, err := s.patients.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if patient.Status != model.PatientStatusInLabor {
		return nil, apperrors.NewInvalidTransition(
			fmt.Sprintf("patient %s is %s, not in labor", patient.FullName, patient.Status))
	}

	templateID, err := uuid.Parse(req.TemplateID)
	if err != nil {
		return nil, apperrors.NewValidation("invalid template ID")
	}
	template, err := s.templates.GetActive(ctx, templateID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	message := templatesvc.Render(template.Content, templatesvc.RenderData{
		PatientName:    patient.FullName,
		NextOfKinName:  patient.NextOfKinName,
		NextOfKinPhone: patient.NextOfKinPhone,
		BabyGender:     req.BabyGender,
		DeliveryTime:   now,
	})

	if err := s.notifier.Send(ctx, patient.NextOfKinPhone, message, patient.ID); err != nil {
		return nil, err
	}

	gender := model.BabyGender(req.BabyGender)
	patient.Status = model.PatientStatusDelivered
	patient.DeliveredAt = &now
	patient.BabyGender = &gender
	if req.DeliveryNotes != "" {
		patient.DeliveryNotes = &req.DeliveryNotes
	}
	patient.AssignedNurseID = nil
	patient.LaborRoomID = nil

	event, err := lifecycleEvent(model.EventDeliveryCompleted, patient)
	if err != nil {
		return nil, err
	}
	if err := s.ward.CompleteDelivery(ctx, patient, event); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, model.ActivityDeliveryCompleted,
		fmt.Sprintf("%s delivered a %s baby. SMS sent to next of kin.", patient.FullName, req.BabyGender),
		actor, &patient.ID)

	return patient, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	return s.patients.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*model.Patient, error) {
	return s.patients.List(ctx)
}

// lifecycleEvent snapshots the patient into an outbox event. The event
// commits in the same transaction as the transition it describes.
func lifecycleEvent(eventType string, patient *model.Patient) (*model.OutboxEvent, error) {
	payload, err := json.Marshal(patient)
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}
	return &model.OutboxEvent{
		EventType: eventType,
		Payload:   payload,
	}, nil
}
